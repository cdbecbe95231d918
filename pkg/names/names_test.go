package names

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Robert  ", "robert"},
		{"strips diacritics", "José", "jose"},
		{"diacritics equal plain", "RENÉE", "renee"},
		{"collapses whitespace", "mary   jane", "mary jane"},
		{"keeps hyphen and apostrophe", "Mary-Jane O'Brien", "mary-jane o'brien"},
		{"removes punctuation and digits", "j.r. smith 3rd!", "jr smith rd"},
		{"empty after cleaning", "123 !!!", ""},
		{"whitespace only", "   \t ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeDiacriticInsensitiveEquality(t *testing.T) {
	require.Equal(t, Normalize("José"), Normalize("jose"))
	require.Equal(t, Normalize("Zoë"), Normalize("ZOE"))
}

func TestCapitalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"robert", "Robert"},
		{"mary-jane o'brien", "Mary-Jane O'Brien"},
		{"JEAN-LUC", "Jean-Luc"},
		{"  anna  ", "Anna"},
		{"", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Capitalize(tc.in))
	}
}

func TestNormalizeCapitalizeRoundTrip(t *testing.T) {
	require.Equal(t, "Mary-Jane O'Brien", Capitalize(Normalize("MARY-JANE O'BRIEN")))
}

func TestSanitizeText(t *testing.T) {
	require.Equal(t, "", SanitizeText("", 0))
	require.Equal(t, "", SanitizeText("   ", 0))
	require.Equal(t, "no nuts please", SanitizeText("  no nuts please ", 0))
	require.Equal(t, "ab", SanitizeText("a\x00\x1b\x7fb", 0))

	long := strings.Repeat("x", 600)
	require.Len(t, SanitizeText(long, 0), DefaultMaxTextLength)
	require.Len(t, SanitizeText(long, 100), 100)
}
