package repository

import (
	"context"

	"github.com/dropDatabas3/hellouser/internal/domain/user"
)

// UserReader resuelve usuarios consultando primero el identity map de la sesión.
// No requiere una transacción abierta.
type UserReader interface {
	// FindByID retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id user.ID) (user.User, error)

	// FindBySecondaryKey busca por email. Retorna ErrNotFound si no existe.
	FindBySecondaryKey(ctx context.Context, email user.Email) (user.User, error)

	// ExistsBySecondaryKey no carga el registro completo.
	ExistsBySecondaryKey(ctx context.Context, email user.Email) (bool, error)
}

// UserWriter acumula snapshots dentro de una unidad de trabajo abierta.
// Nada se escribe hasta que la unidad de trabajo hace flush.
type UserWriter interface {
	// Save deja el snapshot pendiente y lo refleja en el identity map.
	Save(u user.User) (user.User, error)

	// FindByID carga a través de la transacción activa.
	FindByID(ctx context.Context, id user.ID) (user.User, error)

	// Pending retorna cuántos snapshots esperan flush.
	Pending() int
}

// UserSession agrupa lo necesario para una operación lógica: un identity map
// compartido, el lado de lectura y la unidad de trabajo.
type UserSession interface {
	Reader() UserReader

	// Do abre una unidad de trabajo. Si fn retorna nil se hace flush y commit;
	// si falla, entra en pánico o el ctx se cancela, se hace rollback.
	Do(ctx context.Context, fn func(ctx context.Context, w UserWriter) error) error
}

// UserSessionFactory crea una sesión nueva por operación.
type UserSessionFactory interface {
	NewSession() UserSession
}
