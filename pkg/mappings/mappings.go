package mappings

// This package decodes the delta-encoded "mappings" string of a source map
// and builds an index over it that answers position queries in both
// directions. It deliberately knows nothing about the surrounding JSON
// document: sources and names are opaque indices into tables owned by the
// caller.

// Index32 is an optional 32-bit index. It's smaller than a pointer and
// doesn't need a separate boolean. The zero value is the invalid index,
// which is why the bits are stored flipped.
type Index32 struct {
	flippedBits uint32
}

func MakeIndex32(index uint32) Index32 {
	return Index32{flippedBits: ^index}
}

func (i Index32) IsValid() bool {
	return i.flippedBits != 0
}

func (i Index32) GetIndex() uint32 {
	return ^i.flippedBits
}

// OriginalLocation is a position in the original, pre-compilation source.
// Source and Name index into tables owned by the caller.
type OriginalLocation struct {
	Source uint32
	Line   uint32 // 0-based
	Column uint32 // 0-based
	Name   Index32
}

type Mapping struct {
	GeneratedLine   uint32 // 0-based
	GeneratedColumn uint32 // 0-based

	// Absent until ComputeColumnSpans has run. Afterwards, absent means the
	// mapping extends to the end of its generated line.
	LastGeneratedColumn Index32

	Original    OriginalLocation
	HasOriginal bool
}

// Bias picks the direction a binary search resolves toward when the queried
// location has no exact match.
type Bias uint8

const (
	// GreatestLowerBound resolves to the closest element that sorts before
	// the queried location.
	GreatestLowerBound Bias = iota + 1

	// LeastUpperBound resolves to the closest element that sorts after the
	// queried location.
	LeastUpperBound
)

// Hook receives begin/end notifications around each phase of the engine
// (parsing, sorting, span derivation). It's pure instrumentation: entirely
// optional and forbidden from affecting results. A nil *helpers.Timer
// satisfies it with no-ops.
type Hook interface {
	Begin(name string)
	End(name string)
}

// Mappings is the parsed index. The by-generated slice is sorted once,
// immediately after parsing, and never re-sorted. The by-original view and
// the column spans are derived lazily, at most once each, and are never
// invalidated.
//
// The engine does no internal locking. Calls that may populate a lazy cache
// (ComputeColumnSpans, ByOriginalLocation and the queries built on it) need
// exclusive access; once every cache is populated all calls are pure reads
// and the value can be shared across goroutines.
type Mappings struct {
	byGenerated []Mapping
	byOriginal  []Mapping

	computedColumnSpans bool

	hook Hook
}

// ByGeneratedLocation returns every mapping, sorted by generated location.
func (m *Mappings) ByGeneratedLocation() []Mapping {
	return m.byGenerated
}

// ComputeColumnSpans fills in the LastGeneratedColumn of every mapping from
// the generated column of the next mapping on the same generated line. The
// last mapping on each line keeps an absent LastGeneratedColumn, meaning it
// spans to the end of the line. Idempotent; a no-op after the first call.
func (m *Mappings) ComputeColumnSpans() {
	if m.computedColumnSpans {
		return
	}
	begin(m.hook, "computeColumnSpans")

	byGenerated := m.byGenerated
	for i := 1; i < len(byGenerated); i++ {
		mapping := &byGenerated[i-1]
		next := &byGenerated[i]
		if mapping.GeneratedLine == next.GeneratedLine {
			mapping.LastGeneratedColumn = MakeIndex32(next.GeneratedColumn)
		}
	}

	m.computedColumnSpans = true
	end(m.hook, "computeColumnSpans")
}

// ByOriginalLocation returns the mappings that carry original location
// information, sorted by original location. The view is built on first use
// and cached. Building it derives column spans first; downstream consumers
// observe span fields through every original-keyed query, so that ordering
// is part of the contract here.
func (m *Mappings) ByOriginalLocation() []Mapping {
	if m.byOriginal != nil {
		return m.byOriginal
	}
	m.ComputeColumnSpans()
	begin(m.hook, "sortByOriginal")

	byOriginal := make([]Mapping, 0, len(m.byGenerated))
	for _, mapping := range m.byGenerated {
		if mapping.HasOriginal {
			byOriginal = append(byOriginal, mapping)
		}
	}
	quickSort(byOriginal, compareByOriginalLocation)

	m.byOriginal = byOriginal
	end(m.hook, "sortByOriginal")
	return byOriginal
}

// OriginalLocationFor finds the mapping for the given generated location. If
// nothing maps that exact location, the bias picks a neighbor; nil means no
// mapping satisfies the query.
func (m *Mappings) OriginalLocationFor(generatedLine uint32, generatedColumn uint32, bias Bias) *Mapping {
	byGenerated := m.byGenerated
	i := searchGenerated(byGenerated, generatedLine, generatedColumn)

	if i < len(byGenerated) {
		mapping := &byGenerated[i]
		if mapping.GeneratedLine == generatedLine && mapping.GeneratedColumn == generatedColumn {
			return mapping
		}
	}

	switch bias {
	case LeastUpperBound:
		if i < len(byGenerated) {
			return &byGenerated[i]
		}
	case GreatestLowerBound:
		if i > 0 {
			return &byGenerated[i-1]
		}
	}
	return nil
}

// GeneratedLocationFor finds the mapping for the given original location,
// with the same bias behavior as OriginalLocationFor.
func (m *Mappings) GeneratedLocationFor(source uint32, originalLine uint32, originalColumn uint32, bias Bias) *Mapping {
	byOriginal := m.ByOriginalLocation()
	i := searchOriginal(byOriginal, source, originalLine, originalColumn)

	if i < len(byOriginal) {
		original := &byOriginal[i].Original
		if original.Source == source && original.Line == originalLine && original.Column == originalColumn {
			return &byOriginal[i]
		}
	}

	switch bias {
	case LeastUpperBound:
		if i < len(byOriginal) {
			return &byOriginal[i]
		}
	case GreatestLowerBound:
		if i > 0 {
			return &byOriginal[i-1]
		}
	}
	return nil
}

// AllGeneratedLocationsFor finds every mapping for the given original
// location. When originalColumn is absent the match is fuzzy over the whole
// line: if nothing maps the queried line, the results are anchored to the
// line of the nearest mapping at or after it instead. Results always agree
// exactly on source and line (and column, when one was supplied).
func (m *Mappings) AllGeneratedLocationsFor(source uint32, originalLine uint32, originalColumn Index32) *GeneratedLocations {
	queryColumn := uint32(0)
	if originalColumn.IsValid() {
		queryColumn = originalColumn.GetIndex()
	}

	byOriginal := m.ByOriginalLocation()
	i := searchOriginal(byOriginal, source, originalLine, queryColumn)

	// Land on the first of any run of mappings that tie under the requested
	// key, so the scan below doesn't miss earlier results.
	for i > 0 {
		prev := &byOriginal[i-1].Original
		if prev.Source != source || prev.Line != originalLine {
			break
		}
		if originalColumn.IsValid() && prev.Column != queryColumn {
			break
		}
		i--
	}

	anchorLine := originalLine
	if !originalColumn.IsValid() && i < len(byOriginal) {
		// Fuzzy whole-line matching: anchor to the line actually found
		anchorLine = byOriginal[i].Original.Line
	}

	return &GeneratedLocations{
		rest:           byOriginal[i:],
		source:         source,
		originalLine:   anchorLine,
		originalColumn: originalColumn,
	}
}

// GeneratedLocations is a forward-only cursor over the results of
// AllGeneratedLocationsFor. It cannot be restarted.
type GeneratedLocations struct {
	rest           []Mapping
	source         uint32
	originalLine   uint32
	originalColumn Index32
}

// Next returns the next matching mapping, or nil when the results are
// exhausted.
func (g *GeneratedLocations) Next() *Mapping {
	if len(g.rest) == 0 {
		return nil
	}

	mapping := &g.rest[0]
	original := &mapping.Original
	if original.Source != g.source || original.Line != g.originalLine {
		g.rest = nil
		return nil
	}
	if g.originalColumn.IsValid() && original.Column != g.originalColumn.GetIndex() {
		g.rest = nil
		return nil
	}

	g.rest = g.rest[1:]
	return mapping
}

// searchGenerated returns the index of the first mapping at or after the
// given generated location.
func searchGenerated(byGenerated []Mapping, line uint32, column uint32) int {
	count := len(byGenerated)
	index := 0
	for count > 0 {
		step := count / 2
		i := index + step
		mapping := &byGenerated[i]
		if mapping.GeneratedLine < line || (mapping.GeneratedLine == line && mapping.GeneratedColumn < column) {
			index = i + 1
			count -= step + 1
		} else {
			count = step
		}
	}
	return index
}

// searchOriginal returns the index of the first mapping whose original
// location is at or after the given one. Only mappings with original
// information may be searched this way.
func searchOriginal(byOriginal []Mapping, source uint32, line uint32, column uint32) int {
	count := len(byOriginal)
	index := 0
	for count > 0 {
		step := count / 2
		i := index + step
		original := &byOriginal[i].Original
		if original.Source < source || (original.Source == source &&
			(original.Line < line || (original.Line == line && original.Column < column))) {
			index = i + 1
			count -= step + 1
		} else {
			count = step
		}
	}
	return index
}
