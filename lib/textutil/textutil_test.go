package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{in: "Kamisato Ayaka", expected: "kamisatoayaka"},
		{in: " 西风剑\n", expected: "西风剑"},
		{in: "原神 ·　印象", expected: "原神·印象"},
		{in: "", expected: ""},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, NormalizeName(c.in), c.in)
	}
}

func TestSameName(t *testing.T) {
	require.True(t, SameName("Raiden Shogun", "raiden  shogun"))
	require.False(t, SameName("西风剑", "西风大剑"))
}
