package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
)

// widget es una entidad mínima para probar la capa sin depender de User.
type widget struct {
	id      int
	key     string
	label   string
	created time.Time
	updated time.Time
}

func (w widget) EntityID() int        { return w.id }
func (w widget) SecondaryKey() string { return w.key }

type widgetRec struct {
	ID      int
	Key     string
	Label   string
	Created time.Time
	Updated time.Time
}

type widgetMapper struct {
	now Clock
}

func (m widgetMapper) ToEntity(r widgetRec) (widget, error) {
	if r.Key == "" {
		return widget{}, errors.New("empty key")
	}
	return widget{id: r.ID, key: r.Key, label: r.Label, created: r.Created, updated: r.Updated}, nil
}

func (m widgetMapper) ToRecord(ctx context.Context, src Source[int, string, widgetRec], w widget) (widgetRec, bool, error) {
	stored, err := src.Get(ctx, w.id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return widgetRec{ID: w.id, Key: w.key, Label: w.label, Created: w.created, Updated: w.updated}, false, nil
	case err != nil:
		return widgetRec{}, false, err
	}
	return widgetRec{
		ID:      w.id,
		Key:     w.key,
		Label:   w.label,
		Created: stored.Created,
		Updated: AdvanceUpdatedAt(stored.Updated, w.updated, m.now()),
	}, true, nil
}

// fakeStore cuenta I/O y permite inyectar fallos.
type fakeStore struct {
	rows map[int]widgetRec

	gets        int
	existsCalls int
	ops         []string
	commits     int
	rollbacks   int

	failBegin    error
	failWriteID  int
	failWrite    error
	failCommit   error
	failRollback error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int]widgetRec)}
}

func (s *fakeStore) source() Source[int, string, widgetRec] {
	return &fakeReader{s: s, rows: func() map[int]widgetRec { return s.rows }}
}

func (s *fakeStore) begin() (*fakeTx, error) {
	if s.failBegin != nil {
		return nil, s.failBegin
	}
	staged := make(map[int]widgetRec, len(s.rows))
	for k, v := range s.rows {
		staged[k] = v
	}
	tx := &fakeTx{s: s, staged: staged}
	tx.fakeReader = fakeReader{s: s, rows: func() map[int]widgetRec { return tx.staged }}
	return tx, nil
}

type fakeReader struct {
	s    *fakeStore
	rows func() map[int]widgetRec
}

func (r *fakeReader) Get(_ context.Context, id int) (widgetRec, error) {
	r.s.gets++
	rec, ok := r.rows()[id]
	if !ok {
		return widgetRec{}, repository.ErrNotFound
	}
	return rec, nil
}

func (r *fakeReader) GetByKey(_ context.Context, key string) (widgetRec, error) {
	r.s.gets++
	for _, rec := range r.rows() {
		if rec.Key == key {
			return rec, nil
		}
	}
	return widgetRec{}, repository.ErrNotFound
}

func (r *fakeReader) Exists(_ context.Context, id int) (bool, error) {
	r.s.existsCalls++
	_, ok := r.rows()[id]
	return ok, nil
}

func (r *fakeReader) ExistsByKey(_ context.Context, key string) (bool, error) {
	r.s.existsCalls++
	for _, rec := range r.rows() {
		if rec.Key == key {
			return true, nil
		}
	}
	return false, nil
}

type fakeTx struct {
	fakeReader
	s      *fakeStore
	staged map[int]widgetRec
	done   bool
}

func (t *fakeTx) Insert(_ context.Context, rec widgetRec) error {
	if t.s.failWrite != nil && (t.s.failWriteID == 0 || t.s.failWriteID == rec.ID) {
		return t.s.failWrite
	}
	if _, ok := t.staged[rec.ID]; ok {
		return repository.ErrConflict
	}
	t.staged[rec.ID] = rec
	t.s.ops = append(t.s.ops, "insert", rec.Key)
	return nil
}

func (t *fakeTx) Update(_ context.Context, id int, rec widgetRec) error {
	if t.s.failWrite != nil && (t.s.failWriteID == 0 || t.s.failWriteID == id) {
		return t.s.failWrite
	}
	if _, ok := t.staged[id]; !ok {
		return repository.ErrNotFound
	}
	t.staged[id] = rec
	t.s.ops = append(t.s.ops, "update", rec.Key)
	return nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.s.failCommit != nil {
		return t.s.failCommit
	}
	t.s.rows = t.staged
	t.s.commits++
	t.done = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.rollbacks++
	return t.s.failRollback
}

type widgetWrites = WriteRepository[int, string, widget, widgetRec]

// session arma identity map + lecturas + unidad de trabajo sobre el fake.
type session struct {
	im    *IdentityMap[int, string, widget]
	reads *ReadRepository[int, string, widget, widgetRec]
	uow   *UnitOfWork[*widgetWrites]
}

func newSession(s *fakeStore, now Clock) *session {
	im := NewIdentityMap[int, string, widget]()
	mapper := widgetMapper{now: now}
	bind := func(ctx context.Context) (Transaction, *widgetWrites, error) {
		tx, err := s.begin()
		if err != nil {
			return nil, nil, err
		}
		return tx, NewWriteRepository[int, string, widget, widgetRec](im, tx, mapper), nil
	}
	return &session{
		im:    im,
		reads: NewReadRepository[int, string, widget, widgetRec](im, s.source(), mapper),
		uow:   NewUnitOfWork[*widgetWrites]("widgets", bind),
	}
}
