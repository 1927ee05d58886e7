package vlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleDigits(t *testing.T) {
	// One base64 digit holds the sign bit plus four bits of magnitude
	cases := map[byte]int64{
		'A': 0,
		'C': 1,
		'D': -1,
		'E': 2,
		'F': -2,
		'K': 5,
		'U': 10,
		'e': 15,
		'f': -15,
	}
	for digit, want := range cases {
		value, next, err := Decode([]byte{digit}, 0)
		require.NoError(t, err)
		assert.Equal(t, want, value, "digit %q", string(digit))
		assert.Equal(t, 1, next)
	}
}

func TestDecodeContinuation(t *testing.T) {
	// "gB" = 100000 000001 -> continuation digit 0, then 1 -> vlq 32 -> 16
	value, next, err := Decode([]byte("gB"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(16), value)
	assert.Equal(t, 2, next)
}

func TestDecodeStartsMidSlice(t *testing.T) {
	value, next, err := Decode([]byte("AC"), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)
	assert.Equal(t, 2, next)
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode(nil, 0)
	assert.Equal(t, ErrUnexpectedEOF, err)

	_, _, err = Decode([]byte("A"), 1)
	assert.Equal(t, ErrUnexpectedEOF, err)

	// Continuation bit set on the final digit
	_, _, err = Decode([]byte("g"), 0)
	assert.Equal(t, ErrUnexpectedEOF, err)

	_, _, err = Decode([]byte("."), 0)
	assert.Equal(t, ErrInvalidDigit, err)

	// 14 digits of all-ones is far past what an int64 can hold
	_, _, err = Decode([]byte("//////////////"), 0)
	assert.Equal(t, ErrOverflow, err)
}

func TestRoundTrip(t *testing.T) {
	values := []int64{
		0, 1, -1, 15, -15, 16, -16, 31, -31, 32, -32,
		1000, -1000, 1 << 20, -(1 << 20), 1 << 31, -(1 << 31),
		1<<53 - 1, -(1<<53 - 1), 1<<62 + 37,
	}
	for _, want := range values {
		encoded := Encode(nil, want)
		value, next, err := Decode(encoded, 0)
		require.NoError(t, err, "value %d", want)
		assert.Equal(t, want, value)
		assert.Equal(t, len(encoded), next)
	}
}
