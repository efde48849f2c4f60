// Package codegen synthesizes the source of a dispatch unit from a list of
// key/value arms.
//
// A unit is a single-file Go program declaring the reserved selector
// Dispatch, a single-parameter function whose body is an ordered chain of
// literal-equality arms, and the TableName constant binding the unit to its
// table identifier. Synthesis is a pure data transformation: it touches no
// global state and leaves compilation and installation to the loader.
package codegen

import (
	"fmt"
	"strings"
)

// SelectorName is the reserved name of the generated dispatch function. It is
// fixed so the loader can resolve it without metadata, and distinct from
// anything a caller would define.
const SelectorName = "Dispatch"

// Arm is one dispatch arm: when the input equals Key, Dispatch returns Value.
type Arm struct {
	Key   any
	Value any
}

// Unit is a synthesized dispatch unit, ready for compilation.
type Unit struct {
	// Name is the table identifier the unit is bound to, also declared
	// inside the source as the TableName constant.
	Name string
	// Source is the complete Go source of the unit.
	Source string
	// Arms is the number of dispatch arms, counting unreachable duplicates.
	Arms int
}

// Synthesize renders the dispatch unit for the given arms, bound to name.
//
// Arms are emitted in slice order and the generated chain fires on the first
// match, so when two arms share a key the earlier one is the effective
// mapping and the later one is dead code. Duplicates are deliberately not an
// error; an if-chain is used rather than a switch because Go rejects
// duplicate constant cases.
//
// Both the key and the value of every arm must be renderable as Go literals;
// a non-renderable one fails synthesis with an ErrUnrepresentable-wrapped
// error identifying the offending arm.
func Synthesize(name string, arms []Arm) (Unit, error) {
	if name == "" {
		return Unit{}, fmt.Errorf("codegen: empty unit name")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by fling for table %q. DO NOT EDIT.\n", name)
	b.WriteString("package main\n\n")
	fmt.Fprintf(&b, "// TableName binds this unit to its table identifier.\nconst TableName = %q\n\n", name)
	fmt.Fprintf(&b, "// %s maps a key to its bound value, first matching arm wins.\n", SelectorName)
	fmt.Fprintf(&b, "func %s(k interface{}) (interface{}, bool) {\n", SelectorName)

	for i, arm := range arms {
		key, err := renderLiteral(arm.Key)
		if err != nil {
			return Unit{}, fmt.Errorf("codegen: arm %d key: %w", i, err)
		}
		val, err := renderLiteral(arm.Value)
		if err != nil {
			return Unit{}, fmt.Errorf("codegen: arm %d value: %w", i, err)
		}
		fmt.Fprintf(&b, "\tif k == %s {\n\t\treturn %s, true\n\t}\n", key, val)
	}

	b.WriteString("\treturn nil, false\n}\n")

	return Unit{Name: name, Source: b.String(), Arms: len(arms)}, nil
}
