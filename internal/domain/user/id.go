package user

import "github.com/google/uuid"

// ID es la identidad estructurada de un usuario.
type ID uuid.UUID

// NewID genera una identidad aleatoria (UUID v4).
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parsea la representación canónica de un UUID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, invalid("id", s, "must be a UUID")
	}
	if u == uuid.Nil {
		return ID{}, invalid("id", s, "must not be the nil UUID")
	}
	return ID(u), nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reporta si la identidad no fue asignada.
func (id ID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}
