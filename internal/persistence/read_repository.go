package persistence

import (
	"context"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/metrics"
)

// ReadRepository resuelve entidades consultando primero el identity map.
// Lee a través de la conexión sin transacción.
type ReadRepository[ID comparable, K comparable, E Entity[ID, K], R any] struct {
	im     *IdentityMap[ID, K, E]
	src    Source[ID, K, R]
	mapper Mapper[ID, K, E, R]
}

func NewReadRepository[ID comparable, K comparable, E Entity[ID, K], R any](
	im *IdentityMap[ID, K, E],
	src Source[ID, K, R],
	mapper Mapper[ID, K, E, R],
) *ReadRepository[ID, K, E, R] {
	return &ReadRepository[ID, K, E, R]{im: im, src: src, mapper: mapper}
}

// FindByID retorna repository.ErrNotFound si no hay registro.
func (r *ReadRepository[ID, K, E, R]) FindByID(ctx context.Context, id ID) (E, error) {
	return loadByID(ctx, r.im, r.src, r.mapper, id)
}

// FindBySecondaryKey busca por clave secundaria con el mismo patrón que FindByID.
// Si el identity map ya tiene esa identidad con otra clave (un snapshot de
// esta sesión la movió), la clave pedida no le pertenece: ErrNotFound.
func (r *ReadRepository[ID, K, E, R]) FindBySecondaryKey(ctx context.Context, key K) (E, error) {
	if e, ok := r.im.GetByKey(key); ok {
		lookup(true)
		return e, nil
	}
	lookup(false)
	var zero E
	e, err := r.loadByKey(ctx, key)
	if err != nil {
		return zero, err
	}
	if cur, ok := r.im.Get(e.EntityID()); ok {
		if cur.SecondaryKey() != key {
			return zero, repository.ErrNotFound
		}
		return cur, nil
	}
	r.im.Add(e)
	return e, nil
}

// ExistsBySecondaryKey responde desde el índice si puede. Con el identity map
// vacío usa el predicado de existencia del store sin cargar el registro; si
// no, carga el dueño de la clave para verificar que esta sesión no la movió.
func (r *ReadRepository[ID, K, E, R]) ExistsBySecondaryKey(ctx context.Context, key K) (bool, error) {
	if r.im.ContainsKey(key) {
		lookup(true)
		return true, nil
	}
	lookup(false)
	if r.im.Len() == 0 {
		return r.src.ExistsByKey(ctx, key)
	}

	e, err := r.loadByKey(ctx, key)
	switch {
	case repository.IsNotFound(err):
		return false, nil
	case err != nil:
		return false, err
	}
	if cur, ok := r.im.Get(e.EntityID()); ok && cur.SecondaryKey() != key {
		return false, nil
	}
	return true, nil
}

func (r *ReadRepository[ID, K, E, R]) loadByKey(ctx context.Context, key K) (E, error) {
	var zero E
	rec, err := r.src.GetByKey(ctx, key)
	if err != nil {
		return zero, err
	}
	return r.mapper.ToEntity(rec)
}

func loadByID[ID comparable, K comparable, E Entity[ID, K], R any](
	ctx context.Context,
	im *IdentityMap[ID, K, E],
	src Source[ID, K, R],
	mapper Mapper[ID, K, E, R],
	id ID,
) (E, error) {
	if e, ok := im.Get(id); ok {
		lookup(true)
		return e, nil
	}
	lookup(false)
	var zero E
	rec, err := src.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	e, err := mapper.ToEntity(rec)
	if err != nil {
		return zero, err
	}
	im.Add(e)
	return e, nil
}

func lookup(hit bool) {
	if hit {
		metrics.IdentityMapLookups.WithLabelValues("hit").Inc()
		return
	}
	metrics.IdentityMapLookups.WithLabelValues("miss").Inc()
}
