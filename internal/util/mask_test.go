package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"ada.lovelace@example.com": "a…@e….com",
		"  Ada@Example.COM ":       "a…@e….com",
		"a@b.io":                   "a@b.io",
		"x@mail.example.org":       "x@m….example.org",
		"":                         "",
		"abc":                      "***",
		"not-an-email":             "n…l",
		"@example.com":             "@…m",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
