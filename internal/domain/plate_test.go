package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"uppercase passthrough", "ABC123", "ABC123"},
		{"lowercase", "abc123", "ABC123"},
		{"internal space", "abc 123", "ABC123"},
		{"surrounding space", "  abc123  ", "ABC123"},
		{"tabs and doubles", "a\tbc  12 3", "ABC123"},
		{"hyphenated", "b7k-204", "B7K-204"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePlate(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizePlateRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "A", "ABCDEFGHIJKLM", "ABC_123", "ÑQR123"} {
		_, err := NormalizePlate(in)
		assert.ErrorIs(t, err, ErrValidation, "input %q", in)
	}
}
