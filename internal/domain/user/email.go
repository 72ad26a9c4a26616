package user

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email es la clave secundaria única del usuario.
// Se guarda en minúsculas y sin espacios alrededor.
type Email struct {
	value string
}

// ParseEmail valida y normaliza una dirección de correo.
func ParseEmail(s string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return Email{}, invalid("email", s, "must not be empty")
	}
	if !emailPattern.MatchString(v) {
		return Email{}, invalid("email", s, "malformed address")
	}
	return Email{value: v}, nil
}

func (e Email) String() string { return e.value }

// IsZero reporta si el email está vacío.
func (e Email) IsZero() bool { return e.value == "" }
