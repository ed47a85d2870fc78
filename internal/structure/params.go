package structure

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Params is a read-only view over a generator's raw arguments. Values come
// straight from decoded JSON or hand-built maps, so numbers may arrive as any
// Go numeric kind, json.Number or a numeric string.
type Params map[string]any

// Int returns a required integer.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, &MissingParameterError{Name: key}
	}
	n, ok := toInt(v)
	if !ok {
		return 0, &InvalidParameterError{Name: key, Value: v}
	}
	return n, nil
}

// IntOr returns the integer at key, or def when it is absent or unreadable.
func (p Params) IntOr(key string, def int) int {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	n, ok := toInt(v)
	if !ok {
		return def
	}
	return n
}

func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

func (p Params) StringOr(key, def string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	return def
}

// BoolOr returns def only when key is absent. Any present value other than
// true or the string "true" (any case) reads as false.
func (p Params) BoolOr(key string, def bool) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
		return 0, false
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

// floatToInt truncates toward zero.
func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// origin reads the mandatory x, y, z triple in that order.
func origin(p Params) (Coord, error) {
	x, err := p.Int("x")
	if err != nil {
		return Coord{}, err
	}
	y, err := p.Int("y")
	if err != nil {
		return Coord{}, err
	}
	z, err := p.Int("z")
	if err != nil {
		return Coord{}, err
	}
	return Coord{X: x, Y: y, Z: z}, nil
}
