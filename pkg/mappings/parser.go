package mappings

import (
	"fmt"
	"math"

	"github.com/srcmaptools/mappings/internal/vlq"
)

// ErrorCode classifies parse failures. The values double as the error codes
// of the foreign export boundary, so they must not be reordered.
type ErrorCode uint8

const (
	ErrCodeNone ErrorCode = iota
	ErrCodeUnexpectedNegativeNumber
	ErrCodeUnexpectedlyBigNumber
	ErrCodeVLQUnexpectedEOF
	ErrCodeVLQInvalidDigit
	ErrCodeVLQOverflow
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "no error"
	case ErrCodeUnexpectedNegativeNumber:
		return "unexpected negative number"
	case ErrCodeUnexpectedlyBigNumber:
		return "unexpectedly big number"
	case ErrCodeVLQUnexpectedEOF:
		return "unexpected end of VLQ input"
	case ErrCodeVLQInvalidDigit:
		return "invalid base64 VLQ digit"
	case ErrCodeVLQOverflow:
		return "VLQ value overflow"
	}
	return "unknown error"
}

// Error is a parse failure. Parsing is all-or-nothing: when an Error is
// returned there is no partial index to recover.
type Error struct {
	Code   ErrorCode
	Offset int // byte offset into the mappings string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bad \"mappings\" data at character %d: %s", e.Offset, e.Code)
}

// Parse decodes a source map "mappings" string and builds the index over it.
func Parse(input []byte) (*Mappings, error) {
	return ParseWithHook(input, nil)
}

// ParseWithHook is Parse with an instrumentation hook attached. The hook is
// kept by the returned index and also wraps its lazy derivations. A nil hook
// is fine.
func ParseWithHook(input []byte, hook Hook) (*Mappings, error) {
	begin(hook, "parse")

	// Five running totals, accumulated across the entire input. Only the
	// generated column resets at a line boundary; the other four persist
	// across lines. The generated line is not delta-encoded at all: it just
	// counts semicolons.
	var (
		generatedLine   uint32
		generatedColumn uint32
		source          uint32
		originalLine    uint32
		originalColumn  uint32
		name            uint32
	)

	byGenerated := []Mapping{}
	current := 0

	for current < len(input) {
		switch input[current] {
		case ';':
			generatedLine++
			generatedColumn = 0
			current++

		case ',':
			current++

		default:
			mapping := Mapping{GeneratedLine: generatedLine}

			// First is a generated column that is always present
			next, err := readRelativeVLQ(&generatedColumn, input, current)
			if err != nil {
				end(hook, "parse")
				return nil, err
			}
			current = next
			mapping.GeneratedColumn = generatedColumn

			// The optional source, original line, and original column come as
			// a group. Presence is detected by peeking for a separator, not
			// by counting fields.
			if !atSegmentEnd(input, current) {
				if current, err = readRelativeVLQ(&source, input, current); err != nil {
					end(hook, "parse")
					return nil, err
				}
				if current, err = readRelativeVLQ(&originalLine, input, current); err != nil {
					end(hook, "parse")
					return nil, err
				}
				if current, err = readRelativeVLQ(&originalColumn, input, current); err != nil {
					end(hook, "parse")
					return nil, err
				}

				mapping.HasOriginal = true
				mapping.Original = OriginalLocation{
					Source: source,
					Line:   originalLine,
					Column: originalColumn,
				}

				// The name is optional too, detected the same way
				if !atSegmentEnd(input, current) {
					if current, err = readRelativeVLQ(&name, input, current); err != nil {
						end(hook, "parse")
						return nil, err
					}
					mapping.Original.Name = MakeIndex32(name)
				}
			}

			byGenerated = append(byGenerated, mapping)
		}
	}
	end(hook, "parse")

	begin(hook, "sortByGenerated")
	quickSort(byGenerated, compareByGeneratedLocation)
	end(hook, "sortByGenerated")

	return &Mappings{byGenerated: byGenerated, hook: hook}, nil
}

// atSegmentEnd reports whether the byte at "current" ends the fields of the
// current segment: a separator or the end of the input.
func atSegmentEnd(input []byte, current int) bool {
	if current >= len(input) {
		return true
	}
	c := input[current]
	return c == ',' || c == ';'
}

// readRelativeVLQ decodes one delta and folds it into the running total.
// The sum is computed in 64 bits so that going negative or past the 32-bit
// maximum is detected before truncation, never after.
func readRelativeVLQ(previous *uint32, input []byte, current int) (int, error) {
	delta, next, err := vlq.Decode(input, current)
	if err != nil {
		return current, &Error{Code: vlqErrorCode(err), Offset: current}
	}

	sum := int64(*previous) + delta
	if delta > 0 && sum < int64(*previous) {
		// The 64-bit addition itself wrapped around
		return current, &Error{Code: ErrCodeUnexpectedlyBigNumber, Offset: current}
	}
	if sum > math.MaxUint32 {
		return current, &Error{Code: ErrCodeUnexpectedlyBigNumber, Offset: current}
	}
	if sum < 0 {
		return current, &Error{Code: ErrCodeUnexpectedNegativeNumber, Offset: current}
	}

	*previous = uint32(sum)
	return next, nil
}

func vlqErrorCode(err error) ErrorCode {
	switch err {
	case vlq.ErrUnexpectedEOF:
		return ErrCodeVLQUnexpectedEOF
	case vlq.ErrInvalidDigit:
		return ErrCodeVLQInvalidDigit
	case vlq.ErrOverflow:
		return ErrCodeVLQOverflow
	}
	return ErrCodeNone
}

func begin(hook Hook, name string) {
	if hook != nil {
		hook.Begin(name)
	}
}

func end(hook Hook, name string) {
	if hook != nil {
		hook.End(name)
	}
}
