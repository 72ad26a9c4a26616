package persistence

// IdentityMap mantiene un único snapshot por identidad y un índice por clave
// secundaria. Ninguna operación falla ni hace I/O; ids desconocidos son no-op.
type IdentityMap[ID comparable, K comparable, E Entity[ID, K]] struct {
	entities map[ID]E
	index    map[K]ID
}

func NewIdentityMap[ID comparable, K comparable, E Entity[ID, K]]() *IdentityMap[ID, K, E] {
	return &IdentityMap[ID, K, E]{
		entities: make(map[ID]E),
		index:    make(map[K]ID),
	}
}

// Add inserta o reemplaza el snapshot de e. Si el snapshot anterior tenía otra
// clave secundaria, esa entrada del índice se descarta.
func (m *IdentityMap[ID, K, E]) Add(e E) {
	id := e.EntityID()
	if prev, ok := m.entities[id]; ok {
		m.dropKey(prev.SecondaryKey(), id)
	}
	// si otra identidad tenía la misma clave, el índice pasa a la última agregada
	m.entities[id] = e
	m.index[e.SecondaryKey()] = id
}

// Get es una búsqueda pura por identidad.
func (m *IdentityMap[ID, K, E]) Get(id ID) (E, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// GetByKey es una búsqueda pura por clave secundaria.
func (m *IdentityMap[ID, K, E]) GetByKey(key K) (E, bool) {
	id, ok := m.index[key]
	if !ok {
		var zero E
		return zero, false
	}
	return m.Get(id)
}

// Remove lee la entrada actual, borra su clave del índice y después la entrada.
func (m *IdentityMap[ID, K, E]) Remove(id ID) {
	cur, ok := m.entities[id]
	if !ok {
		return
	}
	m.dropKey(cur.SecondaryKey(), id)
	delete(m.entities, id)
}

// Contains reporta si hay un snapshot para id.
func (m *IdentityMap[ID, K, E]) Contains(id ID) bool {
	_, ok := m.entities[id]
	return ok
}

// ContainsKey reporta si el índice secundario tiene key.
func (m *IdentityMap[ID, K, E]) ContainsKey(key K) bool {
	_, ok := m.index[key]
	return ok
}

func (m *IdentityMap[ID, K, E]) Len() int { return len(m.entities) }

// All retorna una copia de los snapshots (orden no especificado).
func (m *IdentityMap[ID, K, E]) All() []E {
	out := make([]E, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	return out
}

// Clear vacía ambas estructuras.
func (m *IdentityMap[ID, K, E]) Clear() {
	clear(m.entities)
	clear(m.index)
}

// dropKey borra key solo si todavía apunta a id.
func (m *IdentityMap[ID, K, E]) dropKey(key K, id ID) {
	if owner, ok := m.index[key]; ok && owner == id {
		delete(m.index, key)
	}
}
