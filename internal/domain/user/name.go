package user

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinNameLength = 2
	MaxNameLength = 50
)

// Name es el nombre visible del usuario (2..50 caracteres).
type Name struct {
	value string
}

// ParseName valida un nombre; la longitud se mide en runas.
func ParseName(s string) (Name, error) {
	v := strings.TrimSpace(s)
	n := utf8.RuneCountInString(v)
	switch {
	case n == 0:
		return Name{}, invalid("name", s, "must not be empty")
	case n < MinNameLength:
		return Name{}, invalid("name", s, "too short")
	case n > MaxNameLength:
		return Name{}, invalid("name", s, "too long")
	}
	return Name{value: v}, nil
}

func (n Name) String() string { return n.value }

// DisplayName devuelve el nombre en title case ("ada lovelace" -> "Ada Lovelace").
func (n Name) DisplayName() string {
	return cases.Title(language.Und).String(n.value)
}
