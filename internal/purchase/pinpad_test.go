package purchase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPadCompletesAtExactlyFour(t *testing.T) {
	var pad Pad

	for i, digit := range []byte{'1', '2', '3'} {
		pin, complete := pad.Press(digit)
		require.False(t, complete)
		require.Empty(t, pin)
		require.Equal(t, i+1, pad.Len())
	}

	pin, complete := pad.Press('4')
	require.True(t, complete)
	require.Equal(t, "1234", pin)

	// Full buffer rejects further input until reset.
	pin, complete = pad.Press('5')
	require.False(t, complete)
	require.Empty(t, pin)
	require.Equal(t, PinLength, pad.Len())

	pad.Reset()
	require.Equal(t, 0, pad.Len())
}

func TestPadIgnoresNonDigits(t *testing.T) {
	var pad Pad
	_, complete := pad.Press('x')
	require.False(t, complete)
	require.Equal(t, 0, pad.Len())
}

func TestPadDelete(t *testing.T) {
	var pad Pad
	pad.Press('9')
	pad.Press('9')
	pad.Delete()
	require.Equal(t, 1, pad.Len())
	pad.Delete()
	pad.Delete() // empty delete is a no-op
	require.Equal(t, 0, pad.Len())
}
