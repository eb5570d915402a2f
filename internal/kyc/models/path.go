package models

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MaxOwners caps the beneficial owner list.
const MaxOwners = 4

var (
	ErrUnknownField = errors.New("unknown field")
	ErrTypeMismatch = errors.New("type mismatch")
)

// SetField writes value at a dotted path of JSON field names, e.g.
// "individual.ssn" or "beneficialOwnership.owners.0.name". Intermediate
// records are allocated on the way down and list indexes grow the list.
//
// Accepted values are string, bool, any numeric kind, []string (or []any of
// strings) and nil, which clears the field. A value whose kind does not match
// the field is rejected; nothing else is coerced.
func (m *FormModel) SetField(path string, value any) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrUnknownField)
	}

	segments := strings.Split(path, ".")
	leaf, err := leafType(reflect.TypeOf(m).Elem(), segments)
	if err != nil {
		return err
	}

	// Build the value first so a rejected write leaves the model untouched.
	scratch := reflect.New(leaf).Elem()
	if err := assign(scratch, value); err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}

	v := reflect.ValueOf(m).Elem()
	for _, seg := range segments {
		v, err = child(indirect(v), seg)
		if err != nil {
			return fmt.Errorf("%w: %s", err, path)
		}
	}
	v.Set(scratch)
	return nil
}

// leafType resolves the type addressed by segments without touching values.
func leafType(t reflect.Type, segments []string) (reflect.Type, error) {
	for i, seg := range segments {
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		switch t.Kind() {
		case reflect.Struct:
			found := false
			for j := 0; j < t.NumField(); j++ {
				if jsonName(t.Field(j)) == seg {
					t = t.Field(j).Type
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(segments[:i+1], "."))
			}
		case reflect.Slice:
			idx, err := strconv.Atoi(seg)
			if t.Elem().Kind() != reflect.Struct || err != nil || idx < 0 || idx >= MaxOwners {
				return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(segments[:i+1], "."))
			}
			t = t.Elem()
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(segments[:i+1], "."))
		}
	}
	return t, nil
}

// indirect follows pointers, allocating nil ones.
func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}

func child(v reflect.Value, seg string) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if jsonName(t.Field(i)) == seg {
				return v.Field(i), nil
			}
		}
		return reflect.Value{}, ErrUnknownField
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.Struct {
			return reflect.Value{}, ErrUnknownField
		}
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= MaxOwners {
			return reflect.Value{}, ErrUnknownField
		}
		if idx >= v.Len() {
			grown := reflect.MakeSlice(v.Type(), idx+1, idx+1)
			reflect.Copy(grown, v)
			v.Set(grown)
		}
		return v.Index(idx), nil
	default:
		return reflect.Value{}, ErrUnknownField
	}
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	target := field
	if field.Kind() == reflect.Ptr {
		target = reflect.New(field.Type().Elem()).Elem()
	}

	if err := assignLeaf(target, reflect.ValueOf(value)); err != nil {
		return err
	}

	if field.Kind() == reflect.Ptr {
		field.Set(target.Addr())
	}
	return nil
}

func assignLeaf(target, rv reflect.Value) error {
	switch target.Kind() {
	case reflect.String:
		if rv.Kind() != reflect.String {
			return ErrTypeMismatch
		}
		target.SetString(rv.String())
	case reflect.Bool:
		if rv.Kind() != reflect.Bool {
			return ErrTypeMismatch
		}
		target.SetBool(rv.Bool())
	case reflect.Float64:
		switch {
		case rv.CanInt():
			target.SetFloat(float64(rv.Int()))
		case rv.CanUint():
			target.SetFloat(float64(rv.Uint()))
		case rv.CanFloat():
			target.SetFloat(rv.Float())
		default:
			return ErrTypeMismatch
		}
	case reflect.Slice:
		if target.Type().Elem().Kind() != reflect.String || rv.Kind() != reflect.Slice {
			return ErrTypeMismatch
		}
		out := make([]string, rv.Len())
		for i := range out {
			elem := rv.Index(i)
			if elem.Kind() == reflect.Interface {
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.String {
				return ErrTypeMismatch
			}
			out[i] = elem.String()
		}
		target.Set(reflect.ValueOf(out))
	default:
		// Records are populated leaf by leaf.
		return ErrTypeMismatch
	}
	return nil
}
