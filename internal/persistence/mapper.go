package persistence

import (
	"context"
	"time"
)

// Source es el lado de lectura del backing store, visto con identidades
// estructuradas. Get y GetByKey retornan repository.ErrNotFound si no hay registro.
type Source[ID comparable, K comparable, R any] interface {
	Get(ctx context.Context, id ID) (R, error)
	GetByKey(ctx context.Context, key K) (R, error)
	Exists(ctx context.Context, id ID) (bool, error)
	ExistsByKey(ctx context.Context, key K) (bool, error)
}

// Sink es el lado de escritura; solo se usa dentro de una transacción.
type Sink[ID comparable, R any] interface {
	Insert(ctx context.Context, rec R) error
	Update(ctx context.Context, id ID, rec R) error
}

// Transaction es el handle opaco que la unidad de trabajo termina.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Tx combina lecturas, escrituras y fin de transacción.
type Tx[ID comparable, K comparable, R any] interface {
	Source[ID, K, R]
	Sink[ID, R]
	Transaction
}

// Mapper traduce entre entidad y registro sin escribir nunca.
type Mapper[ID comparable, K comparable, E Entity[ID, K], R any] interface {
	// ToEntity es pura y no modifica rec. Falla si el registro viola las
	// reglas de los value objects.
	ToEntity(rec R) (E, error)

	// ToRecord consulta src por la identidad de e y decide insert o update:
	// exists=false implica un registro nuevo con los timestamps de la entidad;
	// exists=true preserva la fecha de creación guardada.
	ToRecord(ctx context.Context, src Source[ID, K, R], e E) (rec R, exists bool, err error)
}

// Clock abstrae time.Now para que los tests fijen el tiempo.
type Clock func() time.Time

// AdvanceUpdatedAt elige el timestamp de actualización de un registro
// existente: el de la entidad si es posterior al guardado, si no "now", y en
// el peor caso un microsegundo después del guardado. Siempre avanza.
func AdvanceUpdatedAt(stored, entity, now time.Time) time.Time {
	if entity.After(stored) {
		return entity
	}
	if now.After(stored) {
		return now
	}
	return stored.Add(time.Microsecond)
}
