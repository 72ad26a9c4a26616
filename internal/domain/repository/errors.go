package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: email duplicado, identidad repetida).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence indica que una operación del backing store falló
	// (insert, update, commit). Nunca se ignora: se propaga tras el rollback.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvariant indica un error de programación, por ejemplo usar el
	// WriteRepository fuera de un UnitOfWork abierto. No se reintenta.
	ErrInvariant = errors.New("invariant violation")

	// ErrNoDatabase indica que no hay base de datos configurada.
	ErrNoDatabase = errors.New("no database configured")
)

// PersistenceError envuelve el error de un driver junto con la operación que
// lo produjo. errors.Is funciona tanto con ErrPersistence como con la causa.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// Persistence construye un *PersistenceError. Si err ya es un error de
// persistencia se devuelve sin volver a envolver.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Invariant construye un error que envuelve ErrInvariant con contexto.
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsPersistence verifica si el error proviene del backing store.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsInvariant verifica si el error es una violación de invariante.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// IsNoDatabase verifica si el error es ErrNoDatabase.
func IsNoDatabase(err error) bool {
	return errors.Is(err, ErrNoDatabase)
}
