package qrcard

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/zoobzio/sentinel"
)

// recordTag names the struct tag that renames or skips a field.
const recordTag = "record"

func init() {
	sentinel.Tag(recordTag)
}

// FromStruct converts a struct into a Record using sentinel metadata.
//
// Field names come from the `record:"name"` tag, then the `json` tag, then
// the Go field name. `record:"-"` skips a field and ",omitempty" skips a
// zero value. Nested structs become objects, slices become arrays and
// map[string]X becomes an object with sorted keys.
func FromStruct[T any](v T) (*Record, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("from struct: nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("from struct: %T is not a struct", v)
	}

	if reflect.TypeFor[T]().Kind() != reflect.Struct {
		return structRecord(rv, scanNestedType(rv.Type()))
	}
	return structRecord(rv, sentinel.Scan[T]())
}

func structRecord(rv reflect.Value, spec sentinel.Metadata) (*Record, error) {
	r := NewRecord()
	for _, field := range spec.Fields {
		sf := rv.Type().FieldByIndex(field.Index)
		if !sf.IsExported() {
			continue
		}
		name, omitEmpty, skip := fieldName(sf, field.Tags)
		if skip {
			continue
		}

		fv := rv.FieldByIndex(field.Index)
		if omitEmpty && fv.IsZero() {
			continue
		}
		var (
			val Value
			err error
		)
		switch field.Kind {
		case sentinel.KindStruct:
			val, err = nestedStruct(fv)
		case sentinel.KindPointer:
			if fv.IsNil() {
				val = NullValue()
				break
			}
			if fv.Elem().Kind() == reflect.Struct {
				val, err = nestedStruct(fv.Elem())
				break
			}
			val, err = reflectValue(fv.Elem())
		default:
			val, err = reflectValue(fv)
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		r.Set(name, val)
	}
	return r, nil
}

// nestedStruct converts a nested struct, preferring registered metadata.
func nestedStruct(rv reflect.Value) (Value, error) {
	spec := scanNestedType(rv.Type())
	obj, err := structRecord(rv, spec)
	if err != nil {
		return Value{}, err
	}
	return ObjectValue(obj), nil
}

// scanNestedType returns sentinel metadata for a nested struct type.
func scanNestedType(rt reflect.Type) sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return spec
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val, ok := sf.Tag.Lookup(recordTag); ok {
			fm.Tags[recordTag] = val
		}
		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}
		spec.Fields = append(spec.Fields, fm)
	}
	return spec
}

// fieldName resolves the record key for sf from its record tag, then its
// json tag, then the Go name. Both tags accept ",omitempty".
func fieldName(sf reflect.StructField, tags map[string]string) (name string, omitEmpty, skip bool) {
	tag := tags[recordTag]
	if tag == "" {
		tag = sf.Tag.Get(recordTag)
	}
	if tag == "" {
		tag = sf.Tag.Get("json")
	}
	if tag == "" {
		return sf.Name, false, false
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "-" && opts == "" {
		return "", false, true
	}
	if name == "" {
		name = sf.Name
	}
	return name, slices.Contains(strings.Split(opts, ","), "omitempty"), false
}

// reflectValue converts an arbitrary Go value into a Value.
func reflectValue(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return NullValue(), nil
	case reflect.String:
		return TextValue(rv.String()), nil
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberValue(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NumberValue(rv.Float()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NullValue(), nil
		}
		return reflectValue(rv.Elem())
	case reflect.Struct:
		return nestedStruct(rv)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NullValue(), nil
		}
		elems := make([]Value, rv.Len())
		for i := range elems {
			ev, err := reflectValue(rv.Index(i))
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = ev
		}
		return ArrayValue(elems...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return NullValue(), nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		obj := NewRecord()
		for _, k := range keys {
			ev, err := reflectValue(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
			if err != nil {
				return Value{}, fmt.Errorf("[%s]: %w", k, err)
			}
			obj.Set(k, ev)
		}
		return ObjectValue(obj), nil
	}
	return Value{}, fmt.Errorf("unsupported kind %s", rv.Kind())
}
