package vlq

import (
	"errors"
)

// This package implements the base64 VLQ encoding used by the "mappings"
// field of source maps. A single base 64 digit holds 6 bits of data. For the
// decoded quantity, the first bit is the sign, and the 6th bit of each digit
// is the continuation bit, which tells us whether there are more digits in
// this value following this digit.
//
//	Continuation
//	|    Sign
//	|    |
//	V    V
//	101011

var (
	// ErrUnexpectedEOF means the input ended in the middle of a value (or
	// a value was requested at the end of the input).
	ErrUnexpectedEOF = errors.New("unexpected end of VLQ input")

	// ErrInvalidDigit means a byte was not part of the base64 alphabet.
	ErrInvalidDigit = errors.New("invalid base64 VLQ digit")

	// ErrOverflow means the decoded value does not fit in an int64.
	ErrOverflow = errors.New("VLQ value overflow")
)

var base64 = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/")

// Use a reverse table to decode base64 characters so that each input byte is
// a single table load instead of a scan over the alphabet.
var reverse [256]byte

const invalidDigit = 0xFF

func init() {
	for i := range reverse {
		reverse[i] = invalidDigit
	}
	for i, c := range base64 {
		reverse[c] = byte(i)
	}
}

// Decode reads one signed value from "encoded" starting at "start" and
// returns the value along with the offset just past its last digit.
func Decode(encoded []byte, start int) (int64, int, error) {
	var vlq uint64
	shift := uint(0)

	for {
		if start >= len(encoded) {
			return 0, start, ErrUnexpectedEOF
		}
		digit := reverse[encoded[start]]
		if digit == invalidDigit {
			return 0, start, ErrInvalidDigit
		}
		start++

		// Decode a single digit. The digits are arranged least significant
		// first in the stream, so each one lands 5 bits higher than the last.
		chunk := uint64(digit & 31)
		if shift >= 64 || (shift > 59 && chunk>>(64-shift) != 0) {
			if chunk != 0 {
				return 0, start, ErrOverflow
			}
		} else {
			vlq |= chunk << shift
		}
		shift += 5

		// Stop if there's no continuation bit
		if (digit & 32) == 0 {
			break
		}
	}

	// Recover the value from the sign bit
	value := int64(vlq >> 1)
	if (vlq & 1) != 0 {
		value = -value
	}
	return value, start, nil
}

// Encode appends the encoding of "value" to "buf" and returns the result.
func Encode(buf []byte, value int64) []byte {
	// Fold the sign into the first bit. Going through a uint64 magnitude
	// keeps this correct for the most negative value.
	var vlq uint64
	if value < 0 {
		vlq = ((-uint64(value)) << 1) | 1
	} else {
		vlq = uint64(value) << 1
	}

	// Handle the common case
	if (vlq >> 5) == 0 {
		return append(buf, base64[vlq&31])
	}

	for {
		digit := vlq & 31
		vlq >>= 5

		// If there are still more digits in this value, we must make sure the
		// continuation bit is marked
		if vlq != 0 {
			digit |= 32
		}

		buf = append(buf, base64[digit])

		if vlq == 0 {
			break
		}
	}

	return buf
}
