package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/metrics"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
	"go.uber.org/zap"
)

// State es el estado del ciclo de vida de una unidad de trabajo.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateCommitting
	StateRollingBack
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateCommitting:
		return "committing"
	case StateRollingBack:
		return "rolling_back"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stager es lo que la unidad de trabajo necesita de su repositorio de escritura.
type Stager interface {
	Flush(ctx context.Context) error
	Pending() int
	Clear()
	Close()
}

// Binder abre una transacción y le ata un repositorio de escritura nuevo.
type Binder[W Stager] func(ctx context.Context) (Transaction, W, error)

// UnitOfWork es dueña del límite transaccional. Cada Do es un scope; una
// misma unidad puede correr varios scopes en secuencia pero nunca anidados.
type UnitOfWork[W Stager] struct {
	name  string
	bind  Binder[W]
	state State
}

func NewUnitOfWork[W Stager](name string, bind Binder[W]) *UnitOfWork[W] {
	return &UnitOfWork[W]{name: name, bind: bind, state: StateIdle}
}

func (u *UnitOfWork[W]) State() State { return u.state }

// Do abre un scope, ejecuta fn y lo cierra:
//
//   - fn retorna nil y ctx sigue vivo: flush + commit. Si el flush falla se
//     hace rollback y se retorna ese error.
//   - fn retorna error, entra en pánico o ctx se cancela: rollback sin flush.
//     Los pánicos se relanzan después de la limpieza.
//
// En todos los casos el repositorio se limpia y se suelta la transacción
// exactamente una vez.
func (u *UnitOfWork[W]) Do(ctx context.Context, fn func(ctx context.Context, w W) error) error {
	if u.state != StateIdle && u.state != StateClosed {
		return repository.Invariant("unit of work %q is %s", u.name, u.state)
	}
	log := logger.From(ctx).With(logger.Component("uow"), logger.UoW(u.name))

	if err := ctx.Err(); err != nil {
		metrics.UoWScopes.WithLabelValues(metrics.OutcomeCancelled).Inc()
		return err
	}

	tx, w, err := u.bind(ctx)
	if err != nil {
		u.state = StateClosed
		metrics.UoWScopes.WithLabelValues(metrics.OutcomeBeginFailed).Inc()
		log.Warn("begin failed", logger.Err(err))
		return repository.Persistence("begin", err)
	}
	u.transition(log, StateOpen)

	defer func() {
		w.Clear()
		w.Close()
		u.transition(log, StateClosed)
	}()
	defer func() {
		if p := recover(); p != nil {
			rbErr := u.rollback(ctx, log, tx, fmt.Errorf("panic: %v", p), metrics.OutcomePanic)
			log.Error("unit of work panicked", logger.Any("panic", p), logger.Err(rbErr))
			panic(p)
		}
	}()

	if err := fn(ctx, w); err != nil {
		return u.rollback(ctx, log, tx, err, metrics.OutcomeRolledBack)
	}
	if err := ctx.Err(); err != nil {
		return u.rollback(ctx, log, tx, err, metrics.OutcomeCancelled)
	}

	u.transition(log, StateCommitting)
	pending := w.Pending()
	start := time.Now()
	ferr := w.Flush(ctx)
	metrics.UoWFlushDuration.Observe(time.Since(start).Seconds())
	if ferr != nil {
		return u.rollback(ctx, log, tx, ferr, metrics.OutcomeFlushFailed)
	}
	if cerr := tx.Commit(ctx); cerr != nil {
		return u.rollback(ctx, log, tx, repository.Persistence("commit", cerr), metrics.OutcomeCommitFailed)
	}

	metrics.UoWScopes.WithLabelValues(metrics.OutcomeCommitted).Inc()
	log.Debug("committed", logger.Pending(pending))
	return nil
}

// rollback termina la transacción aunque ctx esté cancelado y retorna cause,
// unido al error de rollback si lo hubo.
func (u *UnitOfWork[W]) rollback(ctx context.Context, log *zap.Logger, tx Transaction, cause error, outcome string) error {
	u.transition(log, StateRollingBack)
	metrics.UoWScopes.WithLabelValues(outcome).Inc()
	log.Warn("rolling back", logger.Outcome(outcome), logger.Err(cause))

	if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
		log.Error("rollback failed", logger.Err(rbErr))
		return errors.Join(cause, repository.Persistence("rollback", rbErr))
	}
	return cause
}

func (u *UnitOfWork[W]) transition(log *zap.Logger, next State) {
	log.Debug("uow transition", logger.State(next.String()), logger.String("from", u.state.String()))
	u.state = next
}
