package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "ABC123", "abc123"},
		{"device prefix", "device_ABC123", "abc123"},
		{"rmwhub prefix", "rmwhub_abc123", "abc123"},
		{"rmw prefix", "rmw_abc123", "abc123"},
		{"e prefix", "e_abc123", "abc123"},
		{"edgetech prefix", "edgetech_SN42", "sn42"},
		{"stacked prefixes", "e_rmwhub_abc123", "abc123"},
		{"device under e", "e_device_abc123", "abc123"},
		{"uppercase prefix", "RMWHUB_ABC", "abc"},
		{"trailing pad", "abc123######", "abc123"},
		{"padded and prefixed", "rmwhub_abc123##", "abc123"},
		{"surrounding space", "  abc123 ", "abc123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"ABC123",
		"device_abc",
		"rmwhub_abc",
		"rmw_abc",
		"e_abc",
		"edgetech_abc",
		"e_rmwhub_device_abc",
		"rmwhub_rmwhub_abc",
		"device_EDGETECH_SN1##",
	}

	for _, in := range inputs {
		once, err := Normalize(in)
		require.NoError(t, err, in)

		twice, err := Normalize(once)
		require.NoError(t, err, in)
		assert.Equal(t, once, twice, "normalize not idempotent for %q", in)
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "####", "\n\t"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrEmptyID, "input %q", in)
	}
}

func TestPadToMinimum(t *testing.T) {
	padded := PadToMinimum("abc", MinHubIDLength, PadChar)
	assert.Len(t, padded, MinHubIDLength)
	assert.Equal(t, "abc", padded[:3])

	long := PadToMinimum("0123456789012345678901234567890123", MinHubIDLength, PadChar)
	assert.Equal(t, "0123456789012345678901234567890123", long)
}

func TestPadding_RoundTrip(t *testing.T) {
	for _, in := range []string{"abc", "rmwhub_TRAP9", "e_x"} {
		norm, err := Normalize(in)
		require.NoError(t, err)

		back, err := Normalize(PadToMinimum(norm, MinHubIDLength, PadChar))
		require.NoError(t, err)
		assert.Equal(t, norm, back)
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "trap 1", Clean("  trap\n'1'\t"))
	assert.Equal(t, "a b", Clean(`a    "b"`))
}

func TestSame(t *testing.T) {
	assert.True(t, Same("rmwhub_ABC", "abc"))
	assert.True(t, Same("e_abc##", "ABC"))
	assert.False(t, Same("abc", "abd"))
	assert.True(t, Same("", ""))
	assert.False(t, Same("", "abc"))
}
