package fling

// Table is a typed handle on one table identifier. It carries no state
// beyond the identifier itself, so handles are freely copyable and any
// number of callers may hold handles on the same table; the identifier is
// resolved against the registry on every read.
type Table[K comparable, V any] struct {
	id TableID
}

// Of wraps id in a typed handle. It does not check that a table is live
// under id; reads report that via ErrNoSuchTable.
func Of[K comparable, V any](id TableID) Table[K, V] {
	return Table[K, V]{id: id}
}

// NewTable builds a table from entries and returns a typed handle on it,
// composing Create and Of.
func NewTable[E any, K comparable, V any](entries []E, keyFn func(E) K, valueFn func(E) V) (Table[K, V], error) {
	id, err := Create(entries, keyFn, valueFn)
	if err != nil {
		return Table[K, V]{}, err
	}
	return Of[K, V](id), nil
}

// ID returns the identifier the handle wraps.
func (t Table[K, V]) ID() TableID { return t.id }

// Get dispatches key through the table. Semantics match Lookup.
func (t Table[K, V]) Get(key K) (V, bool, error) {
	return Lookup[K, V](t.id, key)
}

// GetDefault dispatches key, substituting def for a missing key. Semantics
// match LookupDefault.
func (t Table[K, V]) GetDefault(key K, def V) (V, error) {
	return LookupDefault(t.id, key, def)
}

// Purge retires the table behind the handle. Semantics match Purge.
func (t Table[K, V]) Purge() bool {
	return Purge(t.id)
}
