package game

import (
	"fmt"
	"math"
	"strings"
)

// paramReader pulls typed values out of the loosely typed parameter objects of
// mission documents, collecting every mismatch instead of stopping at the first.
type paramReader struct {
	params map[string]any
	errs   []string
}

func newParamReader(params map[string]any) *paramReader {
	return &paramReader{params: params}
}

func (r *paramReader) fail(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func (r *paramReader) has(key string) bool {
	if r.params == nil {
		return false
	}
	v, ok := r.params[key]
	return ok && v != nil
}

func (r *paramReader) number(key string, required bool) (float64, bool) {
	if !r.has(key) {
		if required {
			r.fail("missing required number %q", key)
		}
		return 0, false
	}
	switch v := r.params[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.fail("%q must be finite", key)
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	default:
		r.fail("%q must be a number, got %T", key, v)
		return 0, false
	}
}

func (r *paramReader) str(key string, required bool) (string, bool) {
	if !r.has(key) {
		if required {
			r.fail("missing required string %q", key)
		}
		return "", false
	}
	s, ok := r.params[key].(string)
	if !ok {
		r.fail("%q must be a string, got %T", key, r.params[key])
		return "", false
	}
	return s, true
}

func (r *paramReader) boolean(key string) bool {
	if !r.has(key) {
		return false
	}
	b, ok := r.params[key].(bool)
	if !ok {
		r.fail("%q must be a boolean, got %T", key, r.params[key])
	}
	return b
}

func (r *paramReader) strings(key string) []string {
	if !r.has(key) {
		return nil
	}
	switch v := r.params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				r.fail("%q[%d] must be a string, got %T", key, i, item)
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		r.fail("%q must be a list of strings, got %T", key, v)
		return nil
	}
}

func (r *paramReader) vec3(key string) *Vec3 {
	if !r.has(key) {
		return nil
	}
	v, ok := toVec3(r.params[key])
	if !ok {
		r.fail("%q must be a list of 3 numbers", key)
		return nil
	}
	return &v
}

func (r *paramReader) color(key string) *[4]float64 {
	if !r.has(key) {
		return nil
	}
	list, ok := r.params[key].([]any)
	if !ok || (len(list) != 3 && len(list) != 4) {
		r.fail("%q must be a list of 3 or 4 numbers", key)
		return nil
	}
	c := [4]float64{0, 0, 0, 1}
	for i, item := range list {
		f, ok := item.(float64)
		if !ok {
			r.fail("%q[%d] must be a number", key, i)
			return nil
		}
		c[i] = f
	}
	return &c
}

func (r *paramReader) object(key string) map[string]any {
	if !r.has(key) {
		return nil
	}
	obj, ok := r.params[key].(map[string]any)
	if !ok {
		r.fail("%q must be an object, got %T", key, r.params[key])
		return nil
	}
	return obj
}

// enum reads a string and checks it against the allowed values.
func (r *paramReader) enum(key string, required bool, allowed ...string) (string, bool) {
	s, ok := r.str(key, required)
	if !ok {
		return "", false
	}
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	r.fail("%q must be one of [%s], got %q", key, strings.Join(allowed, ", "), s)
	return "", false
}

func (r *paramReader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid parameters: %s", strings.Join(r.errs, "; "))
}

func toVec3(v any) (Vec3, bool) {
	switch t := v.(type) {
	case []float64:
		if len(t) != 3 {
			return Vec3{}, false
		}
		return Vec3{t[0], t[1], t[2]}, true
	case []any:
		if len(t) != 3 {
			return Vec3{}, false
		}
		var f [3]float64
		for i, item := range t {
			n, ok := item.(float64)
			if !ok {
				return Vec3{}, false
			}
			f[i] = n
		}
		return Vec3{f[0], f[1], f[2]}, true
	}
	return Vec3{}, false
}

// Rotation is one step of an orientation given as successive turns around world axes.
type Rotation struct {
	Axis    string  `json:"axis"`
	Degrees float64 `json:"degrees"`
}

// OrientationFromRotations applies the rotations to the identity frame in order.
func OrientationFromRotations(rotations []Rotation) (Basis, error) {
	b := IdentityBasis()
	for _, rot := range rotations {
		var axis Vec3
		switch strings.ToUpper(rot.Axis) {
		case "X":
			axis = Vec3{X: 1}
		case "Y":
			axis = Vec3{Y: 1}
		case "Z":
			axis = Vec3{Z: 1}
		default:
			return IdentityBasis(), fmt.Errorf("invalid rotation axis %q", rot.Axis)
		}
		b = b.RotateWorld(axis, rot.Degrees*math.Pi/180)
	}
	return b, nil
}

func (r *paramReader) rotations(key string) []Rotation {
	if !r.has(key) {
		return nil
	}
	list, ok := r.params[key].([]any)
	if !ok {
		r.fail("%q must be a list of rotations", key)
		return nil
	}
	out := make([]Rotation, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			r.fail("%q[%d] must be an object", key, i)
			continue
		}
		sub := newParamReader(obj)
		axis, _ := sub.enum("axis", true, "X", "Y", "Z")
		deg, _ := sub.number("degrees", true)
		if err := sub.err(); err != nil {
			r.fail("%q[%d]: %v", key, i, err)
			continue
		}
		out = append(out, Rotation{Axis: axis, Degrees: deg})
	}
	return out
}
