// Package fling builds read-only lookup tables out of generated code.
//
// A fling table starts as an ordinary slice of entries plus two pure
// extractor functions. Create evaluates both extractors once per entry,
// synthesizes a dispatcher whose arms are the resulting literal key/value
// pairs, compiles it, and installs it in a process-wide registry under a
// unique identifier. From then on a lookup is a call into immutable code:
// no locks, no hashing, no copying of the data, and arbitrarily many
// concurrent readers.
//
// # Why compile a table?
//
// The table is write-once, read-many by construction. Once the entries are
// frozen into dispatch arms there is nothing left to synchronize: every
// reader holds the same immutable function, and "updating" the table means
// compiling a whole new unit and atomically swapping it in under the same
// identifier. Readers never observe a half-built table.
//
// # Lifecycle
//
//	id, err := fling.Create(entries, keyFn, valueFn) // allocate + synthesize + load
//	v, ok, err := fling.Lookup[K, V](id, key)        // hot path, any number of callers
//	fling.Purge(id)                                  // retire the table
//
// CreateNamed accepts a caller-chosen identifier, which is how a table is
// superseded: loading again under a live identifier atomically replaces it
// for all subsequent lookups, while in-flight lookups finish against the
// unit they already resolved.
//
// Keys and values must have Go literal forms (booleans, strings, integers,
// floats, complex numbers); anything else fails Create with
// ErrUnrepresentable wrapped in ErrCompile.
//
// For tables that accumulate writes before freezing, see the promote
// subpackage, which stages entries in a mutable map and compiles them into a
// table once the writes go quiet.
package fling
