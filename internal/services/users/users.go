// Package users contiene los casos de uso sobre usuarios. Cada operación abre
// su propia sesión (identity map + unidad de trabajo) y la descarta al terminar.
package users

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/domain/user"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
)

// Service define las operaciones sobre usuarios.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*UserOutput, error)
	GetByID(ctx context.Context, id string) (*UserOutput, error)
	GetByEmail(ctx context.Context, email string) (*UserOutput, error)
	Rename(ctx context.Context, id, name string) (*UserOutput, error)
	ChangeEmail(ctx context.Context, id, email string) (*UserOutput, error)
	Update(ctx context.Context, id string, in UpdateInput) (*UserOutput, error)
}

// Deps contiene las dependencias del service.
type Deps struct {
	Sessions repository.UserSessionFactory
	Now      func() time.Time // nil = time.Now
}

// CreateInput datos para registrar un usuario.
type CreateInput struct {
	Name  string
	Email string
}

// UpdateInput cambios parciales; nil deja el campo como está. Todos se
// aplican en una única unidad de trabajo.
type UpdateInput struct {
	Name  *string
	Email *string
}

// UserOutput es la vista de salida de un usuario.
type UserOutput struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToOutput convierte la entidad a su vista de salida.
func ToOutput(u user.User) *UserOutput {
	return &UserOutput{
		ID:          u.ID().String(),
		Name:        u.Name().String(),
		DisplayName: u.Name().DisplayName(),
		Email:       u.Email().String(),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
	}
}

type service struct {
	deps Deps
}

// NewService crea el service de usuarios.
func NewService(deps Deps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}
}

const component = "users"

func (s *service) Create(ctx context.Context, in CreateInput) (*UserOutput, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(component),
		logger.Op("Create"),
	)

	email, err := user.ParseEmail(in.Email)
	if err != nil {
		return nil, err
	}

	sess := s.deps.Sessions.NewSession()
	var created user.User
	err = sess.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
		taken, err := sess.Reader().ExistsBySecondaryKey(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: email %s already registered", repository.ErrConflict, email)
		}

		u, err := user.Register(in.Name, email.String(), s.deps.Now())
		if err != nil {
			return err
		}
		created, err = w.Save(u)
		return err
	})
	if err != nil {
		log.Debug("create failed", logger.Email(email.String()), logger.Err(err))
		return nil, err
	}

	log.Info("user created", logger.UserID(created.ID().String()))
	return ToOutput(created), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*UserOutput, error) {
	uid, err := user.ParseID(id)
	if err != nil {
		return nil, err
	}
	u, err := s.deps.Sessions.NewSession().Reader().FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return ToOutput(u), nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*UserOutput, error) {
	e, err := user.ParseEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.deps.Sessions.NewSession().Reader().FindBySecondaryKey(ctx, e)
	if err != nil {
		return nil, err
	}
	return ToOutput(u), nil
}

func (s *service) Rename(ctx context.Context, id, name string) (*UserOutput, error) {
	return s.patch(ctx, "Rename", id, UpdateInput{Name: &name})
}

func (s *service) ChangeEmail(ctx context.Context, id, email string) (*UserOutput, error) {
	return s.patch(ctx, "ChangeEmail", id, UpdateInput{Email: &email})
}

func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*UserOutput, error) {
	return s.patch(ctx, "Update", id, in)
}

// patch aplica nombre y después email sobre el mismo snapshot; si alguno
// falla no se guarda nada.
func (s *service) patch(ctx context.Context, op, id string, in UpdateInput) (*UserOutput, error) {
	if in.Name == nil && in.Email == nil {
		return nil, fmt.Errorf("%w: name or email is required", repository.ErrInvalidInput)
	}
	var target user.Email
	if in.Email != nil {
		e, err := user.ParseEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		target = e
	}

	return s.update(ctx, op, id, func(ctx context.Context, r repository.UserReader, cur user.User) (user.User, bool, error) {
		next, changed := cur, false
		if in.Name != nil {
			renamed, err := next.Rename(*in.Name, s.deps.Now())
			if err != nil {
				return user.User{}, false, err
			}
			next, changed = renamed, true
		}
		if in.Email != nil && next.Email() != target {
			taken, err := r.ExistsBySecondaryKey(ctx, target)
			if err != nil {
				return user.User{}, false, err
			}
			if taken {
				return user.User{}, false, fmt.Errorf("%w: email %s already registered", repository.ErrConflict, target)
			}
			moved, err := next.ChangeEmail(target.String(), s.deps.Now())
			if err != nil {
				return user.User{}, false, err
			}
			next, changed = moved, true
		}
		return next, changed, nil
	})
}

// mutation devuelve el nuevo snapshot y si hay algo que persistir.
type mutation func(ctx context.Context, r repository.UserReader, cur user.User) (user.User, bool, error)

// update carga el usuario por la transacción, aplica fn y lo deja pendiente.
// Tras el commit relee el estado persistido con una sesión nueva.
func (s *service) update(ctx context.Context, op, id string, fn mutation) (*UserOutput, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(component),
		logger.Op(op),
		logger.UserID(id),
	)

	uid, err := user.ParseID(id)
	if err != nil {
		return nil, err
	}

	sess := s.deps.Sessions.NewSession()
	err = sess.Do(ctx, func(ctx context.Context, w repository.UserWriter) error {
		cur, err := w.FindByID(ctx, uid)
		if err != nil {
			return err
		}
		next, changed, err := fn(ctx, sess.Reader(), cur)
		if err != nil || !changed {
			return err
		}
		_, err = w.Save(next)
		return err
	})
	if err != nil {
		log.Debug("update failed", logger.Err(err))
		return nil, err
	}

	u, err := s.deps.Sessions.NewSession().Reader().FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	log.Info("user updated")
	return ToOutput(u), nil
}
