package sanitize

import (
	"fmt"
	"strconv"
)

// StringArg coerces a decoded JSON argument into a string. This is the
// self-defending layer: a tool calls it on every argument it receives,
// independent of whatever validation its caller claims to have done.
//
// Coercions: nil -> def, single-element list -> its element, non-string
// scalar -> its string form, empty string -> def.
func StringArg(v interface{}, def string) string {
	v = coerceValue(v)
	switch val := v.(type) {
	case nil:
		return def
	case string:
		if val == "" {
			return def
		}
		return val
	case float64:
		// JSON numbers decode as float64; render integers without a
		// trailing ".0".
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IntArg coerces a decoded JSON argument into an int, falling back to def
// for nil, unparseable, or structurally hopeless values.
func IntArg(v interface{}, def int) int {
	v = coerceValue(v)
	switch val := v.(type) {
	case nil:
		return def
	case float64:
		return int(val)
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		return def
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return def
	}
}

// FloatArg coerces a decoded JSON argument into a float64.
func FloatArg(v interface{}, def float64) float64 {
	v = coerceValue(v)
	switch val := v.(type) {
	case nil:
		return def
	case float64:
		return val
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		return def
	default:
		return def
	}
}
