package persistence

// Entity es lo mínimo que el identity map necesita de una entidad.
type Entity[ID comparable, K comparable] interface {
	EntityID() ID
	SecondaryKey() K
}
