package mirror

import (
	"sync"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/notify"
)

// Store holds the current collection snapshot and folds notifications into
// it. It implements notify.Dispatcher so operations and feeds can deliver
// straight to it.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	reducers Reducers
}

// NewStore creates a store with an empty snapshot.
func NewStore(reducers Reducers) *Store {
	return &Store{reducers: reducers}
}

// Apply folds one notification into the current snapshot.
func (st *Store) Apply(n notify.Notification) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	next, err := st.reducers.Reduce(st.snapshot, n)
	if err != nil {
		return err
	}
	st.snapshot = next
	return nil
}

// Dispatch implements notify.Dispatcher. A reducer error is a programmer
// error on the emitting side; the store reports it as a diagnostic and keeps
// the previous snapshot.
func (st *Store) Dispatch(n notify.Notification) {
	if err := st.Apply(n); err != nil {
		diag.Notice(st.reducers.Diag, "drop notification %s: %v", n.Type, err)
	}
}

// Snapshot returns a copy of the current snapshot. Later reductions never
// affect a returned value.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot.Clone()
}

// Reset replaces the mirrored records wholesale, clearing in-flight deletes
// and errors. Used when bootstrapping from a full collection fetch.
func (st *Store) Reset(records []Record) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot = Snapshot{Records: cloneRecords(records)}
}
