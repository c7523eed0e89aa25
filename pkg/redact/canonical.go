package redact

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const (
	// CircularPlaceholder replaces a value that is already on the ancestor path.
	CircularPlaceholder = "[Circular]"

	// UnserializablePlaceholder replaces a value whose marshaler failed.
	UnserializablePlaceholder = "[Unserializable]"
)

// omitted marks values with no JSON form (funcs, channels). Object members
// holding one are dropped; array slots become null.
type omitted struct{}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	jsonNumberType    = reflect.TypeFor[json.Number]()
	objectPtrType     = reflect.TypeFor[*Object]()
)

// identity keys a reference value on the ancestor path.
type identity struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type canonicalizer struct {
	ancestors map[identity]struct{}
}

// Canonicalize converts an arbitrary Go value into the tree the rules operate
// on: nil, bool, string, int64, uint64, float64, json.Number, *Object and
// []any. Reference cycles are replaced with CircularPlaceholder.
func Canonicalize(value any) any {
	c := &canonicalizer{ancestors: make(map[identity]struct{})}
	out := c.value(reflect.ValueOf(value))
	if _, ok := out.(omitted); ok {
		return nil
	}
	return out
}

// enter pushes id onto the ancestor path. It returns false when id is
// already there.
func (c *canonicalizer) enter(id identity) bool {
	if _, ok := c.ancestors[id]; ok {
		return false
	}
	c.ancestors[id] = struct{}{}
	return true
}

func (c *canonicalizer) leave(id identity) {
	delete(c.ancestors, id)
}

func (c *canonicalizer) value(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}

	if rv.Type() == objectPtrType {
		return c.object(rv.Interface().(*Object), rv)
	}
	if rv.Kind() == reflect.Interface {
		return c.value(rv.Elem())
	}
	if rv.Type() == jsonNumberType {
		return json.Number(rv.String())
	}
	if rv.CanInterface() {
		if rv.Type().Implements(jsonMarshalerType) {
			return marshalJSON(rv.Interface().(json.Marshaler))
		}
		if rv.Type().Implements(textMarshalerType) {
			return marshalText(rv.Interface().(encoding.TextMarshaler))
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case reflect.String:
		return rv.String()
	case reflect.Pointer:
		id := identity{typ: rv.Type(), ptr: rv.Pointer()}
		if !c.enter(id) {
			return CircularPlaceholder
		}
		defer c.leave(id)
		return c.value(rv.Elem())
	case reflect.Map:
		return c.mapValue(rv)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(rv.Bytes())
		}
		if rv.Len() == 0 {
			return []any{}
		}
		id := identity{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}
		if !c.enter(id) {
			return CircularPlaceholder
		}
		defer c.leave(id)
		return c.list(rv)
	case reflect.Array:
		return c.list(rv)
	case reflect.Struct:
		obj := NewObject()
		c.structFields(rv, obj)
		return obj
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return omitted{}
	}
	return UnserializablePlaceholder
}

func (c *canonicalizer) object(o *Object, rv reflect.Value) any {
	id := identity{typ: objectPtrType, ptr: rv.Pointer()}
	if !c.enter(id) {
		return CircularPlaceholder
	}
	defer c.leave(id)

	out := newObjectSize(len(o.keys))
	for _, k := range o.keys {
		v := c.value(reflect.ValueOf(o.values[k]))
		if _, ok := v.(omitted); ok {
			continue
		}
		out.Set(k, v)
	}
	return out
}

func (c *canonicalizer) mapValue(rv reflect.Value) any {
	id := identity{typ: rv.Type(), ptr: rv.Pointer()}
	if !c.enter(id) {
		return CircularPlaceholder
	}
	defer c.leave(id)

	type member struct {
		key string
		val reflect.Value
	}
	members := make([]member, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		members = append(members, member{key: mapKey(iter.Key()), val: iter.Value()})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].key < members[j].key })

	out := newObjectSize(len(members))
	for _, m := range members {
		v := c.value(m.val)
		if _, ok := v.(omitted); ok {
			continue
		}
		out.Set(m.key, v)
	}
	return out
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if b, err := tm.MarshalText(); err == nil {
				return string(b)
			}
		}
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}

func (c *canonicalizer) list(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		v := c.value(rv.Index(i))
		if _, ok := v.(omitted); ok {
			v = nil
		}
		out[i] = v
	}
	return out
}

// structFields follows encoding/json field rules: tag names, "-", omitempty
// and flattening of untagged embedded structs.
func (c *canonicalizer) structFields(rv reflect.Value, obj *Object) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				c.structFields(fv, obj)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		v := c.value(fv)
		if _, ok := v.(omitted); ok {
			continue
		}
		obj.Set(name, v)
	}
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

func marshalJSON(m json.Marshaler) (out any) {
	defer func() {
		if recover() != nil {
			out = UnserializablePlaceholder
		}
	}()
	b, err := m.MarshalJSON()
	if err != nil {
		return UnserializablePlaceholder
	}
	v, err := Parse(b)
	if err != nil {
		return UnserializablePlaceholder
	}
	return v
}

func marshalText(m encoding.TextMarshaler) (out any) {
	defer func() {
		if recover() != nil {
			out = UnserializablePlaceholder
		}
	}()
	b, err := m.MarshalText()
	if err != nil {
		return UnserializablePlaceholder
	}
	return string(b)
}
