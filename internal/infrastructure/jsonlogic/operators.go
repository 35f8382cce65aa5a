package jsonlogic

import (
	"encoding/json"
	"math"
)

// Round rounds its first argument to the precision given by the second
// (default 0).
func Round(args ...interface{}) interface{} {
	if len(args) == 0 {
		return 0.0
	}
	val, _ := toFloat64(args[0])
	precision := 0
	if len(args) > 1 {
		if p, ok := toFloat64(args[1]); ok {
			precision = int(p)
		}
	}
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// Allocate splits a total evenly across n parts, e.g. average line value.
func Allocate(args ...interface{}) interface{} {
	if len(args) < 2 {
		return 0.0
	}
	val, _ := toFloat64(args[0])
	parts, _ := toFloat64(args[1])
	if parts == 0 {
		return 0.0
	}
	return val / parts
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// truthy follows JsonLogic truthiness.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return true
	default:
		f, ok := toFloat64(v)
		return ok && f != 0
	}
}
