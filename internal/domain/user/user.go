// Package user contiene la entidad User y sus value objects.
//
// User es un snapshot inmutable: cualquier cambio produce un nuevo valor con
// la misma identidad. Dos snapshots representan al mismo usuario si comparten
// ID, sin importar sus atributos.
package user

import "time"

// User es el aggregate root del sistema.
type User struct {
	id        ID
	name      Name
	email     Email
	createdAt time.Time
	updatedAt time.Time
}

// Register crea un usuario nuevo con identidad aleatoria.
// CreatedAt y UpdatedAt quedan iguales a now.
func Register(name, email string, now time.Time) (User, error) {
	n, err := ParseName(name)
	if err != nil {
		return User{}, err
	}
	e, err := ParseEmail(email)
	if err != nil {
		return User{}, err
	}
	ts := Timestamp(now)
	return User{id: NewID(), name: n, email: e, createdAt: ts, updatedAt: ts}, nil
}

// Rehydrate reconstruye un usuario a partir de datos ya persistidos.
func Rehydrate(id ID, name Name, email Email, createdAt, updatedAt time.Time) (User, error) {
	if id.IsZero() {
		return User{}, invalid("id", id.String(), "must not be empty")
	}
	if name.value == "" {
		return User{}, invalid("name", "", "must not be empty")
	}
	if email.IsZero() {
		return User{}, invalid("email", "", "must not be empty")
	}
	return User{
		id:        id,
		name:      name,
		email:     email,
		createdAt: Timestamp(createdAt),
		updatedAt: Timestamp(updatedAt),
	}, nil
}

func (u User) ID() ID               { return u.id }
func (u User) Name() Name           { return u.name }
func (u User) Email() Email         { return u.email }
func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }

// EntityID y SecondaryKey permiten guardar User en un IdentityMap.
func (u User) EntityID() ID        { return u.id }
func (u User) SecondaryKey() Email { return u.email }

// IsZero reporta si u es el valor cero (sin identidad).
func (u User) IsZero() bool { return u.id.IsZero() }

// SameIdentity compara por identidad.
func (u User) SameIdentity(other User) bool {
	return u.id == other.id
}

// Rename devuelve un nuevo snapshot con otro nombre.
func (u User) Rename(name string, now time.Time) (User, error) {
	n, err := ParseName(name)
	if err != nil {
		return User{}, err
	}
	next := u
	next.name = n
	next.updatedAt = Timestamp(now)
	return next, nil
}

// ChangeEmail devuelve un nuevo snapshot con otro email.
func (u User) ChangeEmail(email string, now time.Time) (User, error) {
	e, err := ParseEmail(email)
	if err != nil {
		return User{}, err
	}
	next := u
	next.email = e
	next.updatedAt = Timestamp(now)
	return next, nil
}

// Timestamp normaliza un instante a UTC con precisión de microsegundos,
// la mayor que conservan todos los stores soportados.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
