package fling

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/HaotaoYang/fling/internal/codegen"
	"github.com/HaotaoYang/fling/internal/ident"
	"github.com/HaotaoYang/fling/internal/loader"
	"github.com/HaotaoYang/fling/internal/registry"
)

// TableID names one generated table in the process-wide registry.
type TableID string

var (
	// ErrEmptyInput is returned by Create and CreateNamed for an empty
	// entry list.
	ErrEmptyInput = errors.New("fling: empty entry list")

	// ErrNoSuchTable is returned by lookups on an identifier that was
	// never loaded or has been purged. It is never coerced into the
	// caller's default value.
	ErrNoSuchTable = errors.New("fling: no such table")

	// ErrValueType is returned by Lookup when the stored value does not
	// have the requested type. Like ErrNoSuchTable it is kept distinct
	// from a plain missing key.
	ErrValueType = errors.New("fling: value has unexpected type")

	// ErrCompile wraps failures to translate a synthesized unit into
	// executable form, typically extractor outputs with no literal form.
	ErrCompile = loader.ErrCompile

	// ErrLoadMismatch wraps internal-consistency failures where a compiled
	// unit does not carry the identity it was requested under.
	ErrLoadMismatch = loader.ErrLoadMismatch

	// ErrUnrepresentable marks the specific key or value that could not be
	// rendered as a Go literal; it arrives wrapped in ErrCompile-class
	// errors from Create.
	ErrUnrepresentable = codegen.ErrUnrepresentable
)

// tables is the process-wide table registry. It is the sole shared mutable
// state; every mutation is a whole-unit install or removal.
var tables registry.Registry

// logger is swapped atomically so SetLogger is safe to call at any time.
var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger replaces the package logger. The default is a no-op logger; pass
// zap.NewNop() to silence again.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// AllocateID returns a fresh identifier from the reserved fling_ namespace,
// with negligible collision probability over the process lifetime. Create
// calls it implicitly; it is exported for callers that want to hand out the
// identifier before building the table, or reserve one for CreateNamed.
func AllocateID() TableID {
	return TableID(ident.Allocate())
}

// Create builds a table from entries and installs it under a freshly
// allocated identifier, which it returns.
//
// Both extractors are invoked exactly once per entry, at creation time;
// neither entries nor the extractors are retained afterwards. Entries are
// processed in slice order and the first entry wins when two share a key.
//
// An empty entry list fails with ErrEmptyInput. A key or value with no Go
// literal form fails with an ErrCompile-class error. On any failure no table
// is installed and the allocated identifier is dead: the error is returned,
// never a dangling identifier.
func Create[E any, K comparable, V any](entries []E, keyFn func(E) K, valueFn func(E) V) (TableID, error) {
	id := AllocateID()
	if err := CreateNamed(id, entries, keyFn, valueFn); err != nil {
		return "", err
	}
	return id, nil
}

// CreateNamed is Create with a caller-chosen identifier. Loading under a
// live identifier atomically supersedes the previous table for all
// subsequent lookups; lookups already in flight finish against the unit they
// resolved. Concurrent CreateNamed calls under one identifier race and the
// last install wins.
func CreateNamed[E any, K comparable, V any](id TableID, entries []E, keyFn func(E) K, valueFn func(E) V) error {
	if len(entries) == 0 {
		return ErrEmptyInput
	}

	arms := make([]codegen.Arm, len(entries))
	for i, e := range entries {
		arms[i] = codegen.Arm{Key: keyFn(e), Value: valueFn(e)}
	}

	unit, err := codegen.Synthesize(string(id), arms)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if err := loader.Load(&tables, unit); err != nil {
		return err
	}

	logger.Load().Debug("table loaded",
		zap.String("table", string(id)),
		zap.Int("arms", unit.Arms),
	)
	return nil
}

// Lookup resolves id and dispatches key through its compiled table.
//
// A matched key returns its value with ok true. A missing key returns ok
// false and no error. An identifier with no live table fails with
// ErrNoSuchTable, and a value that is not a V fails with ErrValueType;
// neither is ever folded into the missing-key result.
//
// Lookup is the hot path: it takes no locks and may be called from
// arbitrarily many goroutines with no coordination.
func Lookup[K comparable, V any](id TableID, key K) (V, bool, error) {
	var zero V

	unit, ok := tables.Resolve(string(id))
	if !ok {
		return zero, false, fmt.Errorf("%w: %q", ErrNoSuchTable, id)
	}

	raw, ok := unit.Dispatch(key)
	if !ok {
		return zero, false, nil
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false, fmt.Errorf("%w: table %q key %v holds %T", ErrValueType, id, key, raw)
	}
	return v, true, nil
}

// LookupDefault is Lookup with a caller-supplied default: a missing key
// yields def instead of the ok flag. Errors still propagate — a purged or
// never-loaded table returns ErrNoSuchTable, not def.
func LookupDefault[K comparable, V any](id TableID, key K, def V) (V, error) {
	v, ok, err := Lookup[K, V](id, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Purge removes the table under id from the registry and reports whether one
// was live. Purging an absent identifier is a no-op returning false.
// Subsequent lookups under id fail with ErrNoSuchTable.
func Purge(id TableID) bool {
	removed := tables.Remove(string(id))
	if removed {
		logger.Load().Debug("table purged", zap.String("table", string(id)))
	}
	return removed
}

// Tables returns a snapshot of the identifiers of all live tables, in no
// particular order. Diagnostic only; the snapshot is already stale when it
// returns.
func Tables() []TableID {
	names := tables.Names()
	ids := make([]TableID, len(names))
	for i, n := range names {
		ids[i] = TableID(n)
	}
	return ids
}
