// Package registry holds the process-wide mapping from table identifiers to
// loaded dispatch units.
//
// It is the only shared mutable state in the whole system, and its mutations
// are whole-unit: a unit is installed, replaced, or removed with a single
// atomic map operation, so readers either see a complete unit or none at all.
package registry

import (
	"sync"
	"time"
)

// DispatchFunc is the compiled form of a unit's dispatch selector. The second
// result distinguishes "no arm matched" from a matched nil-like value.
type DispatchFunc func(k interface{}) (interface{}, bool)

// Unit is one loaded table: the compiled dispatcher plus metadata. A Unit is
// immutable once installed; replacing a table means installing a new Unit
// under the same name.
type Unit struct {
	Name     string
	Dispatch DispatchFunc
	Arms     int
	LoadedAt time.Time
}

// Registry maps identifiers to loaded units. The zero value is ready for use
// and safe for concurrent readers and writers.
type Registry struct {
	units sync.Map // string -> *Unit
}

// Install binds u under its name, atomically superseding any previous unit.
// Lookups already holding the old unit keep it; all later resolves observe
// the new one. Racing installs under one name are allowed and the last store
// wins.
func (r *Registry) Install(u *Unit) {
	r.units.Store(u.Name, u)
}

// Resolve returns the live unit for name, if any.
func (r *Registry) Resolve(name string) (*Unit, bool) {
	v, ok := r.units.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Unit), true
}

// Remove deletes the unit bound to name and reports whether one was live.
// Removing an absent name is a no-op returning false.
func (r *Registry) Remove(name string) bool {
	_, loaded := r.units.LoadAndDelete(name)
	return loaded
}

// Names returns a snapshot of the identifiers of all live units, in no
// particular order.
func (r *Registry) Names() []string {
	var names []string
	r.units.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	return names
}
