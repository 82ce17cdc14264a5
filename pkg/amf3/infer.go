package amf3

import (
	"math"
	"time"
)

// minInteger and maxInteger bound AMF3's 29-bit signed integer range.
const (
	minInteger = -(1 << 28)
	maxInteger = 1<<28 - 1
)

// infer maps a host value to a wire type following spec.md §4.3's ordered
// rule list. ForcedType is handled by Encode before infer is consulted, so
// infer never sees the wrapper and has no rule for it.
func infer(v any) (WireType, error) {
	switch val := v.(type) {
	case nil:
		return WireNull, nil
	case Undefined:
		return WireUndefined, nil
	case Null:
		return WireNull, nil
	case bool:
		if val {
			return WireTrue, nil
		}
		return WireFalse, nil
	case Boolean:
		if val {
			return WireTrue, nil
		}
		return WireFalse, nil
	case string:
		return WireString, nil
	case Str:
		return WireString, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, Integer, Double:
		return inferNumber(val)
	case time.Time:
		return WireDate, nil
	case *Date:
		return WireDate, nil
	case []byte:
		return WireByteArray, nil
	case *ByteArray:
		return WireByteArray, nil
	case *DenseArray:
		return WireArray, nil
	case *AssocArray:
		return WireAssocArray, nil
	case *Object:
		return WireObject, nil
	case *NamedObject:
		return WireObject, nil
	case []any:
		return WireArray, nil
	case []Value:
		return WireArray, nil
	case map[string]any:
		return WireObject, nil
	case []Field:
		return WireAssocArray, nil
	}
	if _, ok := v.(FieldEnumerator); ok {
		return WireObject, nil
	}
	return 0, ErrUnsupportedValue
}

func inferNumber(v any) (WireType, error) {
	f, ok := asFloat64(v)
	if !ok {
		return 0, ErrUnsupportedValue
	}
	if isIntegral(f) {
		return WireInteger, nil
	}
	return WireDouble, nil
}

// isIntegral reports whether f is a finite whole number within the 29-bit
// signed integer range [-2^28, 2^28-1]; values outside it fall back to
// DOUBLE rather than wrapping.
func isIntegral(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	if f != math.Trunc(f) {
		return false
	}
	return f >= minInteger && f <= maxInteger
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case Integer:
		return float64(n), true
	case Double:
		return float64(n), true
	}
	return 0, false
}
