package mappings

import (
	"math"

	"github.com/srcmaptools/mappings/internal/vlq"
)

// absMapping is an absolute-position mapping used to build test fixtures.
// The encoder below turns a list of these into a delta-encoded mappings
// string, the same way a source map generator would.
type absMapping struct {
	generatedLine   uint32
	generatedColumn uint32

	hasOriginal    bool
	source         uint32
	originalLine   uint32
	originalColumn uint32

	hasName bool
	name    uint32
}

func gen(line uint32, column uint32) absMapping {
	return absMapping{generatedLine: line, generatedColumn: column}
}

func orig(line uint32, column uint32, source uint32, originalLine uint32, originalColumn uint32) absMapping {
	return absMapping{
		generatedLine:   line,
		generatedColumn: column,
		hasOriginal:     true,
		source:          source,
		originalLine:    originalLine,
		originalColumn:  originalColumn,
	}
}

func named(line uint32, column uint32, source uint32, originalLine uint32, originalColumn uint32, name uint32) absMapping {
	m := orig(line, column, source, originalLine, originalColumn)
	m.hasName = true
	m.name = name
	return m
}

// encodeMappings renders absolute mappings (in input order) as a mappings
// string. Only the generated column delta resets at a line boundary.
func encodeMappings(abs []absMapping) []byte {
	var out []byte
	var generatedLine, generatedColumn, source, originalLine, originalColumn, name uint32
	needsComma := false

	for _, m := range abs {
		for generatedLine < m.generatedLine {
			out = append(out, ';')
			generatedLine++
			generatedColumn = 0
			needsComma = false
		}
		if needsComma {
			out = append(out, ',')
		}

		out = vlq.Encode(out, int64(m.generatedColumn)-int64(generatedColumn))
		generatedColumn = m.generatedColumn

		if m.hasOriginal {
			out = vlq.Encode(out, int64(m.source)-int64(source))
			source = m.source
			out = vlq.Encode(out, int64(m.originalLine)-int64(originalLine))
			originalLine = m.originalLine
			out = vlq.Encode(out, int64(m.originalColumn)-int64(originalColumn))
			originalColumn = m.originalColumn

			if m.hasName {
				out = vlq.Encode(out, int64(m.name)-int64(name))
				name = m.name
			}
		}

		needsComma = true
	}
	return out
}

// testFixture is shared across the query tests. Line 2 has no mappings on
// purpose, and the three mappings of source 1 share one original location
// (one of them carrying a name) to exercise runs of ties.
var testFixture = []absMapping{
	orig(0, 1, 0, 0, 1),
	named(0, 5, 0, 0, 5, 0),
	gen(0, 9),
	orig(1, 0, 0, 1, 0),
	orig(1, 4, 1, 0, 2),
	orig(1, 7, 1, 0, 2),
	named(2, 3, 1, 0, 2, 2),
	orig(3, 1, 0, 4, 4),
}

func parseFixture() *Mappings {
	m, err := Parse(encodeMappings(testFixture))
	if err != nil {
		panic(err)
	}
	return m
}

// clampDelta keeps fuzzed deltas inside the range the encoder can
// round-trip.
func clampDelta(d int64) int64 {
	if d == math.MinInt64 {
		return math.MinInt64 + 1
	}
	return d
}
