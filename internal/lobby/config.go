package lobby

import (
	"encoding/json"
	"math"
	"reflect"
)

// SeatsKey is the config property holding a room's capacity.
const SeatsKey = "seats"

// reservedKeys are room fields that a config payload may not overwrite.
var reservedKeys = map[string]struct{}{
	"id":     {},
	"owner":  {},
	"status": {},
	"users":  {},
}

// Config is the open set of properties attached to a room.
type Config map[string]any

// Seats returns the declared capacity, or 0 when the room is unbounded.
func (c Config) Seats() int {
	v, ok := c[SeatsKey]
	if !ok {
		return 0
	}
	f, ok := toFloat(v)
	if !ok || f < 1 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// Clone returns a deep copy of the config without reserved keys.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Matches reports whether c holds every key of want with an equal value.
// Keys present only in c are ignored.
func (c Config) Matches(want Config) bool {
	for k, wv := range want {
		cv, ok := c[k]
		if !ok || !valuesEqual(cv, wv) {
			return false
		}
	}
	return true
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case Config:
		out := make(Config, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// valuesEqual is a structural equality that treats numbers of different Go
// types as equal when they hold the same value, so that 3 and 3.0 (as decoded
// from JSON) match.
func valuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch at := a.(type) {
	case Config:
		return mapsEqual(at, b)
	case map[string]any:
		return mapsEqual(at, b)
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !valuesEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func mapsEqual(a map[string]any, b any) bool {
	var bm map[string]any
	switch bt := b.(type) {
	case Config:
		bm = bt
	case map[string]any:
		bm = bt
	default:
		return false
	}
	if len(a) != len(bm) {
		return false
	}
	for k, av := range a {
		bv, ok := bm[k]
		if !ok || !valuesEqual(av, bv) {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
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
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
