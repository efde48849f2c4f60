package codegen

import (
	"fmt"
	"math"
	"strconv"
)

// ErrUnrepresentable is returned when an extracted key or value has no Go
// literal form, so no dispatch arm can be synthesized for it.
var ErrUnrepresentable = fmt.Errorf("not representable as a Go literal")

// renderLiteral renders v as a self-contained Go expression that evaluates,
// inside the generated unit, to a value with the same dynamic type and value
// as v. Only types with exact literal forms are supported; everything else
// fails with ErrUnrepresentable so the failure surfaces at load time instead
// of producing a dispatcher that silently never matches.
func renderLiteral(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return fmt.Sprintf("int(%d)", v), nil
	case int8:
		return fmt.Sprintf("int8(%d)", v), nil
	case int16:
		return fmt.Sprintf("int16(%d)", v), nil
	case int32:
		return fmt.Sprintf("int32(%d)", v), nil
	case int64:
		return fmt.Sprintf("int64(%d)", v), nil
	case uint:
		return fmt.Sprintf("uint(%d)", v), nil
	case uint8:
		return fmt.Sprintf("uint8(%d)", v), nil
	case uint16:
		return fmt.Sprintf("uint16(%d)", v), nil
	case uint32:
		return fmt.Sprintf("uint32(%d)", v), nil
	case uint64:
		return fmt.Sprintf("uint64(%d)", v), nil
	case float32:
		return renderFloat(float64(v), 32, "float32")
	case float64:
		return renderFloat(v, 64, "float64")
	case complex64:
		return renderComplex(complex128(v), 32, "complex64")
	case complex128:
		return renderComplex(v, 64, "complex128")
	default:
		return "", fmt.Errorf("%w: %T", ErrUnrepresentable, v)
	}
}

func renderFloat(f float64, bits int, typ string) (string, error) {
	// NaN and the infinities have no literal form. A NaN key could never
	// match anyway, and an Inf arm would need a math import in the unit.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %s %v", ErrUnrepresentable, typ, f)
	}
	return fmt.Sprintf("%s(%s)", typ, strconv.FormatFloat(f, 'g', -1, bits)), nil
}

func renderComplex(c complex128, bits int, typ string) (string, error) {
	re, err := renderFloat(real(c), bits, "float"+strconv.Itoa(bits))
	if err != nil {
		return "", err
	}
	im, err := renderFloat(imag(c), bits, "float"+strconv.Itoa(bits))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(complex(%s, %s))", typ, re, im), nil
}
