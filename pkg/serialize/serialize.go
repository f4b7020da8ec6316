// Package serialize turns records holding identifiers and timestamps into
// plain JSON-safe values: strings, float64/int64, bools, nil,
// []any and map[string]any.
package serialize

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the ISO-8601 UTC form with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Transporter is implemented by values with their own transport form.
type Transporter interface {
	Transport() any
}

const maxDepth = 64

var (
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	transporter = reflect.TypeOf((*Transporter)(nil)).Elem()
	textMarsh   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Value never panics and is idempotent. A container reached again through
// itself is replaced by a placeholder naming its type.
func Value(v any) any {
	w := walker{path: make(map[visit]struct{})}
	out, ok := w.walk(reflect.ValueOf(v), 0)
	if !ok {
		return nil
	}
	return probe(out)
}

// Slice serializes each element of a listing.
func Slice[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, Value(it))
	}
	return out
}

// visit identifies a map, slice or pointer on the current walk path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type walker struct {
	path map[visit]struct{}
}

func placeholder(rv reflect.Value) string {
	return "[" + rv.Type().String() + "]"
}

// enter marks rv as being walked. It reports false when rv is already on
// the path, which means the value contains itself.
func (w walker) enter(rv reflect.Value) (visit, bool) {
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
	case reflect.Slice:
		if rv.Len() == 0 {
			return visit{}, true
		}
	default:
		return visit{}, true
	}
	v := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		v.n = rv.Len()
	}
	if _, seen := w.path[v]; seen {
		return v, false
	}
	w.path[v] = struct{}{}
	return v, true
}

// walk returns ok=false for values that must be dropped (funcs, chans).
func (w walker) walk(rv reflect.Value, depth int) (out any, ok bool) {
	if !rv.IsValid() {
		return nil, true
	}
	if depth > maxDepth {
		return placeholder(rv), true
	}
	defer func() {
		if r := recover(); r != nil {
			out, ok = fallback(rv), true
		}
	}()

	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, false
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, true
		}
	}
	v, fresh := w.enter(rv)
	if !fresh {
		return placeholder(rv), true
	}
	if v.ptr != 0 {
		defer delete(w.path, v)
	}

	if rv.Type() == uuidType {
		return rv.Interface().(uuid.UUID).String(), true
	}
	if rv.Type() == timeType {
		return rv.Interface().(time.Time).UTC().Format(TimeLayout), true
	}
	if rv.Type().Implements(transporter) && rv.CanInterface() {
		return w.walk(reflect.ValueOf(rv.Interface().(Transporter).Transport()), depth+1)
	}
	if rv.Type().Implements(textMarsh) && rv.CanInterface() {
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return fallback(rv), true
		}
		return string(text), true
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		return w.walk(rv.Elem(), depth+1)
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return strconv.FormatUint(u, 10), true
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64), true
		}
		return f, true
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(rv.Complex()), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(rv.Bytes()), true
		}
		return w.walkList(rv, depth), true
	case reflect.Array:
		return w.walkList(rv, depth), true
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			el, keep := w.walk(iter.Value(), depth+1)
			if !keep {
				continue
			}
			m[w.mapKey(iter.Key())] = el
		}
		return m, true
	case reflect.Struct:
		return w.walkStruct(rv, depth), true
	default:
		return fallback(rv), true
	}
}

func (w walker) walkList(rv reflect.Value, depth int) []any {
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, keep := w.walk(rv.Index(i), depth+1)
		if !keep {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (w walker) walkStruct(rv reflect.Value, depth int) map[string]any {
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)
		if sf.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct && inner.Type() != timeType && inner.Type() != uuidType {
				for k, v := range w.walkStruct(inner, depth+1) {
					if _, taken := out[k]; !taken {
						out[k] = v
					}
				}
				continue
			}
		}
		if name == "" {
			name = sf.Name
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		v, keep := w.walk(fv, depth+1)
		if !keep {
			continue
		}
		out[name] = v
	}
	return out
}

func (w walker) mapKey(k reflect.Value) string {
	v, _ := w.walk(k, 0)
	switch kv := v.(type) {
	case string:
		return kv
	case int64:
		return strconv.FormatInt(kv, 10)
	default:
		return fmt.Sprint(kv)
	}
}

// fallback is the best-effort string coercion. Containers only yield their
// type name since printing them could recurse without bound.
func fallback(rv reflect.Value) (s string) {
	defer func() {
		if recover() != nil {
			s = placeholder(rv)
		}
	}()
	if rv.CanInterface() {
		switch v := rv.Interface().(type) {
		case error:
			return v.Error()
		case fmt.Stringer:
			return v.String()
		}
	}
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128, reflect.String:
		if rv.CanInterface() {
			return fmt.Sprint(rv.Interface())
		}
		return rv.String()
	default:
		return placeholder(rv)
	}
}

// probe strips anything encoding/json still refuses.
func probe(v any) any {
	if _, err := json.Marshal(v); err == nil {
		return v
	}
	switch tv := v.(type) {
	case map[string]any:
		for k, el := range tv {
			if _, err := json.Marshal(el); err != nil {
				tv[k] = probe(el)
			}
		}
		return tv
	case []any:
		for i, el := range tv {
			if _, err := json.Marshal(el); err != nil {
				tv[i] = probe(el)
			}
		}
		return tv
	default:
		return fmt.Sprint(v)
	}
}
