package exports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	generatedLine          uint32
	generatedColumn        uint32
	hasLastGeneratedColumn bool
	lastGeneratedColumn    uint32
	hasOriginal            bool
	source                 uint32
	originalLine           uint32
	originalColumn         uint32
	hasName                bool
	name                   uint32
}

func collect(into *[]record) Callback {
	return func(generatedLine, generatedColumn uint32, hasLastGeneratedColumn bool, lastGeneratedColumn uint32,
		hasOriginal bool, source, originalLine, originalColumn uint32, hasName bool, name uint32) {
		*into = append(*into, record{
			generatedLine:          generatedLine,
			generatedColumn:        generatedColumn,
			hasLastGeneratedColumn: hasLastGeneratedColumn,
			lastGeneratedColumn:    lastGeneratedColumn,
			hasOriginal:            hasOriginal,
			source:                 source,
			originalLine:           originalLine,
			originalColumn:         originalColumn,
			hasName:                hasName,
			name:                   name,
		})
	}
}

func parseString(t *testing.T, input string) MappingsID {
	t.Helper()
	buffer := AllocBuffer(uint32(len(input)))
	copy(BufferBytes(buffer), input)
	id := ParseBuffer(buffer)
	require.NotZero(t, id)
	require.Equal(t, ErrCodeNone, LastError())
	return id
}

func TestParseBufferAndQuery(t *testing.T) {
	// Two segments on line 0: column 0 mapped to source 0 at 0:0 with name
	// 0, and column 1 unmapped; one segment on line 1.
	id := parseString(t, "AAAAA,C;AACA")
	defer FreeMappings(id)

	var records []record
	ByGeneratedLocation(id, collect(&records))
	require.Len(t, records, 3)

	assert.Equal(t, record{
		generatedLine: 0, generatedColumn: 0,
		hasOriginal: true, hasName: true,
	}, records[0])
	assert.Equal(t, record{generatedLine: 0, generatedColumn: 1}, records[1])
	assert.Equal(t, record{
		generatedLine: 1, generatedColumn: 0,
		hasOriginal: true, originalLine: 1,
	}, records[2])
}

func TestBufferIsReclaimedByParse(t *testing.T) {
	buffer := AllocBuffer(1)
	copy(BufferBytes(buffer), "A")
	id := ParseBuffer(buffer)
	require.NotZero(t, id)
	defer FreeMappings(id)

	assert.Panics(t, func() { BufferBytes(buffer) })
}

func TestParseBufferFailureSetsLastError(t *testing.T) {
	buffer := AllocBuffer(3)
	copy(BufferBytes(buffer), "...")
	id := ParseBuffer(buffer)
	assert.Zero(t, id)
	assert.Equal(t, ErrCodeVLQInvalidDigit, LastError())

	// The buffer is gone even though parsing failed
	assert.Panics(t, func() { BufferBytes(buffer) })

	// A successful parse clears the error slot
	parseString(t, "A")
	assert.Equal(t, ErrCodeNone, LastError())
}

func TestColumnSpansCrossTheBoundary(t *testing.T) {
	// Deltas accumulate within the line: columns 0, 1, and 3
	id := parseString(t, "A,C,E")
	defer FreeMappings(id)
	ComputeColumnSpans(id)

	var records []record
	ByGeneratedLocation(id, collect(&records))
	require.Len(t, records, 3)
	assert.True(t, records[0].hasLastGeneratedColumn)
	assert.Equal(t, uint32(1), records[0].lastGeneratedColumn)
	assert.True(t, records[1].hasLastGeneratedColumn)
	assert.Equal(t, uint32(3), records[1].lastGeneratedColumn)
	assert.False(t, records[2].hasLastGeneratedColumn)
}

func TestOriginalLocationForBoundary(t *testing.T) {
	id := parseString(t, "C,E")
	defer FreeMappings(id)

	// No mapping before generated 0:0 under the greatest lower bound
	var records []record
	OriginalLocationFor(id, 0, 0, BiasGreatestLowerBound, collect(&records))
	assert.Empty(t, records)

	OriginalLocationFor(id, 0, 0, BiasLeastUpperBound, collect(&records))
	require.Len(t, records, 1)
	assert.Equal(t, uint32(1), records[0].generatedColumn)
}

func TestGeneratedLocationForBoundary(t *testing.T) {
	id := parseString(t, "AAAA,CAAC")
	defer FreeMappings(id)

	var records []record
	GeneratedLocationFor(id, 0, 0, 1, BiasGreatestLowerBound, collect(&records))
	require.Len(t, records, 1)
	assert.Equal(t, uint32(1), records[0].generatedColumn)
	assert.Equal(t, uint32(1), records[0].originalColumn)
}

func TestAllGeneratedLocationsForBoundary(t *testing.T) {
	// Three mappings sharing source 0, original line 0
	id := parseString(t, "AAAA,CAAC;AAAD")
	defer FreeMappings(id)

	var records []record
	AllGeneratedLocationsFor(id, 0, 0, false, 0, collect(&records))
	assert.Len(t, records, 3)

	records = nil
	AllGeneratedLocationsFor(id, 0, 0, true, 1, collect(&records))
	require.Len(t, records, 1)
	assert.Equal(t, uint32(1), records[0].originalColumn)
}

func TestInvalidBiasPanics(t *testing.T) {
	id := parseString(t, "A")
	defer FreeMappings(id)

	assert.Panics(t, func() {
		OriginalLocationFor(id, 0, 0, 3, collect(&[]record{}))
	})
	assert.Panics(t, func() {
		GeneratedLocationFor(id, 0, 0, 0, 0, collect(&[]record{}))
	})
}

func TestFreedMappingsPanic(t *testing.T) {
	id := parseString(t, "A")
	FreeMappings(id)
	assert.Panics(t, func() { ByGeneratedLocation(id, collect(&[]record{})) })
}
