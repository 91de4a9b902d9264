package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Green Valley Villas", "green-valley-villas"},
		{"  Sky   Heights  ", "sky-heights"},
		{"Plot #12, Phase-II!", "plot-12-phase-ii"},
		{"Café Résidence", "cafe-residence"},
		{"a -- b", "a-b"},
		{"---", ""},
		{"2 BHK / 3 BHK @ Wakad", "2-bhk-3-bhk-wakad"},
		{"Already-a-slug", "already-a-slug"},
		{"Tab\tand\nnewline", "tab-and-newline"},
		{"UPPER lower MiXeD", "upper-lower-mixed"},
		{"Ünïcödé ñame", "unicode-name"},
		{"emoji 🏠 house", "emoji-house"},
		{"trailing hyphen -", "trailing-hyphen"},
		{"-leading", "leading"},
		{"multiple!!!special***chars", "multiplespecialchars"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Slugify(c.in), "Slugify(%q)", c.in)
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	inputs := []string{
		"Green Valley Villas",
		"Plot #12, Phase-II!",
		"Café Résidence",
		"  --weird-- spacing  ",
		"",
		"🏠",
	}

	for _, in := range inputs {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "input %q", in)
	}
}
