// Package loader turns a synthesized unit into running code.
//
// Each unit is evaluated in its own fresh yaegi interpreter, which gives the
// compiled dispatcher full isolation: units share no symbols, and discarding
// a unit needs no interpreter-level cleanup because the only live reference
// is the dispatch closure held by the registry.
package loader

import (
	"errors"
	"fmt"
	"time"

	"github.com/traefik/yaegi/interp"

	"github.com/HaotaoYang/fling/internal/codegen"
	"github.com/HaotaoYang/fling/internal/registry"
)

var (
	// ErrCompile reports that a unit could not be translated to executable
	// form. For units synthesized by codegen this indicates malformed
	// extractor output rather than a synthesis bug.
	ErrCompile = errors.New("unit failed to compile")

	// ErrLoadMismatch reports that a compiled unit does not carry the
	// identity it was requested under. It is an internal-consistency
	// failure: the unit is discarded, the registry is left untouched.
	ErrLoadMismatch = errors.New("loaded unit identity mismatch")
)

// Load compiles unit and installs it into reg under unit.Name, superseding
// any previous unit of that name for all subsequent resolves.
//
// The unit's identity and selector are verified before the install, so a
// failed Load never disturbs the live table. The install itself is a single
// atomic registry store; racing Loads under one name are permitted and the
// last store wins.
func Load(reg *registry.Registry, unit codegen.Unit) error {
	dispatch, err := compile(unit)
	if err != nil {
		return err
	}

	reg.Install(&registry.Unit{
		Name:     unit.Name,
		Dispatch: dispatch,
		Arms:     unit.Arms,
		LoadedAt: time.Now(),
	})
	return nil
}

// compile evaluates the unit source and extracts its dispatch selector,
// checking that the unit is bound to the expected identifier.
func compile(unit codegen.Unit) (registry.DispatchFunc, error) {
	i := interp.New(interp.Options{})

	if _, err := i.Eval(unit.Source); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}

	name, err := i.Eval("main.TableName")
	if err != nil {
		return nil, fmt.Errorf("%w: unit declares no TableName: %v", ErrLoadMismatch, err)
	}
	if got, ok := name.Interface().(string); !ok || got != unit.Name {
		return nil, fmt.Errorf("%w: want %q, unit declares %v", ErrLoadMismatch, unit.Name, name.Interface())
	}

	sel, err := i.Eval("main." + codegen.SelectorName)
	if err != nil {
		return nil, fmt.Errorf("%w: selector %s not found: %v", ErrCompile, codegen.SelectorName, err)
	}
	dispatch, ok := sel.Interface().(func(interface{}) (interface{}, bool))
	if !ok {
		return nil, fmt.Errorf("%w: selector %s has wrong signature %T", ErrCompile, codegen.SelectorName, sel.Interface())
	}
	return registry.DispatchFunc(dispatch), nil
}
