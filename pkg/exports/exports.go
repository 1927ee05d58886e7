// Package exports is the foreign-call surface of the engine. Environments
// at this boundary can only pass primitives, so every function takes integer
// handles and plain words, optional fields cross as (has, value) pairs, and
// multi-result queries drive a callback once per result.
//
// The raw pointer-prefixed buffers of a C boundary are replaced with a
// handle table of engine-owned, length-checked buffers: the caller asks for
// a buffer, writes the mappings string into it, and the engine reclaims the
// buffer when it parses it. The contract is the same; the bookkeeping is
// memory safe.
//
// Like the engine itself, this surface is single-threaded: nothing here
// locks, and the process-local last-error slot follows the usual
// errno-style discipline.
package exports

import (
	"fmt"

	"github.com/srcmaptools/mappings/pkg/mappings"
)

// Error codes reported by LastError.
const (
	ErrCodeNone                     = uint32(mappings.ErrCodeNone)
	ErrCodeUnexpectedNegativeNumber = uint32(mappings.ErrCodeUnexpectedNegativeNumber)
	ErrCodeUnexpectedlyBigNumber    = uint32(mappings.ErrCodeUnexpectedlyBigNumber)
	ErrCodeVLQUnexpectedEOF         = uint32(mappings.ErrCodeVLQUnexpectedEOF)
	ErrCodeVLQInvalidDigit          = uint32(mappings.ErrCodeVLQInvalidDigit)
	ErrCodeVLQOverflow              = uint32(mappings.ErrCodeVLQOverflow)
)

// Bias discriminants. Passing anything else to a query is a contract
// violation and panics; it is not a recoverable query outcome.
const (
	BiasGreatestLowerBound uint32 = 1
	BiasLeastUpperBound    uint32 = 2
)

// BufferID and MappingsID are opaque handles. 0 is never a valid handle.
type (
	BufferID   uint32
	MappingsID uint32
)

var (
	buffers      = map[BufferID][]byte{}
	indexes      = map[MappingsID]*mappings.Mappings{}
	nextBuffer   BufferID
	nextMappings MappingsID
	lastError    uint32
)

// LastError returns the error code of the most recent failed ParseBuffer,
// or 0. It is cleared by the next successful call.
func LastError() uint32 {
	return lastError
}

// AllocBuffer allocates an engine-owned buffer of the given size and
// returns its handle.
func AllocBuffer(size uint32) BufferID {
	nextBuffer++
	buffers[nextBuffer] = make([]byte, size)
	return nextBuffer
}

// BufferBytes returns the buffer's storage for the caller to fill in.
// Invalid handles panic: they are programmer errors, not query misses.
func BufferBytes(id BufferID) []byte {
	buf, ok := buffers[id]
	if !ok {
		panic(fmt.Sprintf("no such buffer: %d", id))
	}
	return buf
}

// FreeBuffer releases a buffer that will not be parsed after all.
func FreeBuffer(id BufferID) {
	delete(buffers, id)
}

// ParseBuffer parses the mappings string in the given buffer and returns a
// handle to the built index. The buffer is reclaimed either way. On failure
// the returned handle is 0 and LastError reports what went wrong.
func ParseBuffer(id BufferID) MappingsID {
	input := BufferBytes(id)
	delete(buffers, id)

	parsed, err := mappings.Parse(input)
	if err != nil {
		lastError = uint32(err.(*mappings.Error).Code)
		return 0
	}

	lastError = ErrCodeNone
	nextMappings++
	indexes[nextMappings] = parsed
	return nextMappings
}

// FreeMappings releases a parsed index.
func FreeMappings(id MappingsID) {
	delete(indexes, id)
}

// Callback receives one result record with its optional fields flattened
// into (has, value) pairs: the column span, the original location group as a
// whole, and the name.
type Callback func(
	generatedLine uint32,
	generatedColumn uint32,
	hasLastGeneratedColumn bool,
	lastGeneratedColumn uint32,
	hasOriginal bool,
	source uint32,
	originalLine uint32,
	originalColumn uint32,
	hasName bool,
	name uint32,
)

// ByGeneratedLocation invokes the callback once per mapping, in generated
// order.
func ByGeneratedLocation(id MappingsID, callback Callback) {
	m := mappingsFor(id)
	byGenerated := m.ByGeneratedLocation()
	for i := range byGenerated {
		emit(&byGenerated[i], callback)
	}
}

// ComputeColumnSpans derives the column spans eagerly.
func ComputeColumnSpans(id MappingsID) {
	mappingsFor(id).ComputeColumnSpans()
}

// OriginalLocationFor invokes the callback at most once, with the mapping
// found for the generated location.
func OriginalLocationFor(id MappingsID, generatedLine uint32, generatedColumn uint32, bias uint32, callback Callback) {
	m := mappingsFor(id)
	if mapping := m.OriginalLocationFor(generatedLine, generatedColumn, decodeBias(bias)); mapping != nil {
		emit(mapping, callback)
	}
}

// GeneratedLocationFor invokes the callback at most once, with the mapping
// found for the original location.
func GeneratedLocationFor(id MappingsID, source uint32, originalLine uint32, originalColumn uint32, bias uint32, callback Callback) {
	m := mappingsFor(id)
	if mapping := m.GeneratedLocationFor(source, originalLine, originalColumn, decodeBias(bias)); mapping != nil {
		emit(mapping, callback)
	}
}

// AllGeneratedLocationsFor invokes the callback once per matching mapping.
func AllGeneratedLocationsFor(id MappingsID, source uint32, originalLine uint32, hasColumn bool, originalColumn uint32, callback Callback) {
	m := mappingsFor(id)
	var column mappings.Index32
	if hasColumn {
		column = mappings.MakeIndex32(originalColumn)
	}
	results := m.AllGeneratedLocationsFor(source, originalLine, column)
	for mapping := results.Next(); mapping != nil; mapping = results.Next() {
		emit(mapping, callback)
	}
}

func mappingsFor(id MappingsID) *mappings.Mappings {
	m, ok := indexes[id]
	if !ok {
		panic(fmt.Sprintf("no such mappings: %d", id))
	}
	return m
}

func decodeBias(bias uint32) mappings.Bias {
	switch bias {
	case BiasGreatestLowerBound:
		return mappings.GreatestLowerBound
	case BiasLeastUpperBound:
		return mappings.LeastUpperBound
	}
	panic(fmt.Sprintf("invalid bias: %d", bias))
}

func emit(mapping *mappings.Mapping, callback Callback) {
	var (
		lastGeneratedColumn uint32
		source              uint32
		originalLine        uint32
		originalColumn      uint32
		name                uint32
		hasName             bool
	)
	if mapping.LastGeneratedColumn.IsValid() {
		lastGeneratedColumn = mapping.LastGeneratedColumn.GetIndex()
	}
	if mapping.HasOriginal {
		source = mapping.Original.Source
		originalLine = mapping.Original.Line
		originalColumn = mapping.Original.Column
		if mapping.Original.Name.IsValid() {
			hasName = true
			name = mapping.Original.Name.GetIndex()
		}
	}
	callback(
		mapping.GeneratedLine,
		mapping.GeneratedColumn,
		mapping.LastGeneratedColumn.IsValid(),
		lastGeneratedColumn,
		mapping.HasOriginal,
		source,
		originalLine,
		originalColumn,
		hasName,
		name,
	)
}
