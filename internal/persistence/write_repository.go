package persistence

import (
	"context"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/metrics"
)

// WriteRepository acumula snapshots y los materializa en Flush dentro de la
// transacción a la que está atado. Comparte el identity map con el
// ReadRepository de la misma sesión.
type WriteRepository[ID comparable, K comparable, E Entity[ID, K], R any] struct {
	im     *IdentityMap[ID, K, E]
	tx     Tx[ID, K, R]
	mapper Mapper[ID, K, E, R]

	pending map[ID]E
	order   []ID // orden del primer Save de cada identidad
	closed  bool
}

func NewWriteRepository[ID comparable, K comparable, E Entity[ID, K], R any](
	im *IdentityMap[ID, K, E],
	tx Tx[ID, K, R],
	mapper Mapper[ID, K, E, R],
) *WriteRepository[ID, K, E, R] {
	return &WriteRepository[ID, K, E, R]{
		im:      im,
		tx:      tx,
		mapper:  mapper,
		pending: make(map[ID]E),
	}
}

// Save deja e pendiente (el último gana) y lo refleja en el identity map.
// No hace I/O.
func (w *WriteRepository[ID, K, E, R]) Save(e E) (E, error) {
	if w.closed {
		var zero E
		return zero, repository.Invariant("save on a closed unit of work")
	}
	id := e.EntityID()
	if _, ok := w.pending[id]; !ok {
		w.order = append(w.order, id)
	}
	w.pending[id] = e
	w.im.Add(e)
	return e, nil
}

// FindByID carga a través de la transacción, identity map primero.
func (w *WriteRepository[ID, K, E, R]) FindByID(ctx context.Context, id ID) (E, error) {
	if w.closed {
		var zero E
		return zero, repository.Invariant("find on a closed unit of work")
	}
	return loadByID(ctx, w.im, Source[ID, K, R](w.tx), w.mapper, id)
}

// Pending retorna la cantidad de snapshots pendientes.
func (w *WriteRepository[ID, K, E, R]) Pending() int {
	return len(w.order)
}

// Flush traduce cada snapshot pendiente, en orden de primer Save, y emite
// update o insert contra la transacción. El primer fallo corta el flush y los
// pendientes se conservan; el rollback de la transacción descarta lo escrito.
func (w *WriteRepository[ID, K, E, R]) Flush(ctx context.Context) error {
	if w.closed {
		return repository.Invariant("flush on a closed unit of work")
	}
	if len(w.order) == 0 {
		return nil
	}

	done := make([]R, 0, len(w.order))
	var inserts, updates int

	for _, id := range w.order {
		if err := ctx.Err(); err != nil {
			return repository.Persistence("flush", err)
		}
		e := w.pending[id]
		rec, exists, err := w.mapper.ToRecord(ctx, w.tx, e)
		if err != nil {
			return repository.Persistence("flush: map", err)
		}
		if exists {
			if err := w.tx.Update(ctx, id, rec); err != nil {
				return repository.Persistence("flush: update", err)
			}
			updates++
		} else {
			if err := w.tx.Insert(ctx, rec); err != nil {
				return repository.Persistence("flush: insert", err)
			}
			inserts++
		}
		done = append(done, rec)
	}

	// el identity map queda con lo que efectivamente se escribió
	for _, rec := range done {
		e, err := w.mapper.ToEntity(rec)
		if err != nil {
			return repository.Persistence("flush: refresh", err)
		}
		w.im.Add(e)
	}

	metrics.UoWFlushedRecords.WithLabelValues("insert").Add(float64(inserts))
	metrics.UoWFlushedRecords.WithLabelValues("update").Add(float64(updates))

	clear(w.pending)
	w.order = w.order[:0]
	return nil
}

// Clear vacía los pendientes y el identity map compartido.
func (w *WriteRepository[ID, K, E, R]) Clear() {
	clear(w.pending)
	w.order = nil
	w.im.Clear()
}

// Close desata el repositorio de su transacción. Toda llamada posterior
// falla con repository.ErrInvariant.
func (w *WriteRepository[ID, K, E, R]) Close() {
	w.closed = true
	w.tx = nil
}
