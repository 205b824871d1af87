package core

// store.go implements the in-memory table store that mirrors the backing
// workbook. The store exclusively owns all table data: every read hands out
// deep copies, and every read-modify-write sequence runs under the single
// store lock so a sync load-and-swap can never interleave with a mutation.

import "sync"

// TableStore is a thread-safe mapping from logical table name to rows.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

// NewTableStore creates an empty TableStore.
func NewTableStore() *TableStore {
	return &TableStore{tables: make(map[string][]Row)}
}

// Get returns a copy of a table's rows.
// Absent tables yield an empty, non-nil collection; Get never fails.
func (s *TableStore) Get(table string) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.tables[table])
}

// ReplaceAll replaces a table's rows wholesale.
func (s *TableStore) ReplaceAll(table string, rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = cloneRows(rows)
}

// AppendRow appends a row to a table, creating the table if absent.
func (s *TableStore) AppendRow(table string, row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], cloneRow(row))
}

// UpsertRow overwrites the first row matching the predicate, in insertion
// order, or appends when no row matches. Duplicate matches are a pre-existing
// anomaly; only the first is touched.
func (s *TableStore) UpsertRow(table string, match func(Row) bool, row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.tables[table] {
		if match(existing) {
			s.tables[table][i] = cloneRow(row)
			return
		}
	}
	s.tables[table] = append(s.tables[table], cloneRow(row))
}

// Swap atomically replaces the contents of every given table in one step.
// Concurrent readers see either the old state or the new state, never a
// partially loaded mix. Tables not named in the map are left untouched.
func (s *TableStore) Swap(tables map[string][]Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for table, rows := range tables {
		s.tables[table] = cloneRows(rows)
	}
}

// Snapshot returns deep copies of the named tables in one consistent view.
func (s *TableStore) Snapshot(tables ...string) map[string][]Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]Row, len(tables))
	for _, table := range tables {
		out[table] = cloneRows(s.tables[table])
	}
	return out
}

// Update runs fn while holding the store's write lock. The Tx operates on
// live data, so a locate-check-modify sequence plus an audit append commits
// as one unit. Returning an error discards nothing automatically: fn must
// not mutate before its invariant checks pass.
func (s *TableStore) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{store: s})
}

// Tx is a view of the store used inside Update. It must not escape fn.
type Tx struct {
	store *TableStore
}

// Rows returns the live row slice for in-place modification.
func (tx *Tx) Rows(table string) []Row {
	return tx.store.tables[table]
}

// AppendRow appends a row to a table.
func (tx *Tx) AppendRow(table string, row Row) {
	tx.store.tables[table] = append(tx.store.tables[table], row)
}

// UpsertRow overwrites the first matching row in place, or appends.
func (tx *Tx) UpsertRow(table string, match func(Row) bool, row Row) {
	for i, existing := range tx.store.tables[table] {
		if match(existing) {
			tx.store.tables[table][i] = row
			return
		}
	}
	tx.store.tables[table] = append(tx.store.tables[table], row)
}

// Snapshot deep-copies the named tables while the lock is held, so the
// caller can persist them after releasing it.
func (tx *Tx) Snapshot(tables ...string) map[string][]Row {
	out := make(map[string][]Row, len(tables))
	for _, table := range tables {
		out[table] = cloneRows(tx.store.tables[table])
	}
	return out
}
