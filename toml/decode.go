package toml

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ErrUnknownKey reports a document key with no matching field
var ErrUnknownKey = errors.New("toml: unknown key")

var durationType = reflect.TypeOf(time.Duration(0))

// Unmarshal parses data and decodes it over the value pointed to by v
// Fields absent from the document keep their current values
func Unmarshal(data []byte, v any) error {
	t, err := Parse(data)
	if err != nil {
		return err
	}
	return Decode(t, v)
}

// Decode assigns a parsed table onto v, matching `toml` tags then field names
func Decode(t Table, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("toml: decode target must be a non-nil pointer, got %T", v)
	}
	return decodeValue(t, rv.Elem(), "")
}

func decodeValue(data any, rv reflect.Value, path string) error {
	if rv.Type() == durationType {
		s, ok := data.(string)
		if !ok {
			return typeError(path, "duration string", data)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("toml: %s: %w", path, err)
		}
		rv.SetInt(int64(d))
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeValue(data, rv.Elem(), path)

	case reflect.Struct:
		t, ok := data.(Table)
		if !ok {
			return typeError(path, "table", data)
		}
		return decodeStruct(t, rv, path)

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("toml: %s: map key must be string", path)
		}
		t, ok := data.(Table)
		if !ok {
			return typeError(path, "table", data)
		}
		if rv.IsNil() {
			rv.Set(reflect.MakeMapWithSize(rv.Type(), len(t)))
		}
		for k, item := range t {
			ev := reflect.New(rv.Type().Elem()).Elem()
			if err := decodeValue(item, ev, join(path, k)); err != nil {
				return err
			}
			rv.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), ev)
		}

	case reflect.Slice:
		arr, ok := data.([]any)
		if !ok {
			return typeError(path, "array", data)
		}
		s := reflect.MakeSlice(rv.Type(), len(arr), len(arr))
		for i, item := range arr {
			if err := decodeValue(item, s.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		rv.Set(s)

	case reflect.Interface:
		if data != nil {
			rv.Set(reflect.ValueOf(data))
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := data.(int64)
		if !ok {
			return typeError(path, "integer", data)
		}
		if rv.OverflowInt(n) {
			return fmt.Errorf("toml: %s: %d overflows %v", path, n, rv.Type())
		}
		rv.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := data.(int64)
		if !ok || n < 0 {
			return typeError(path, "non-negative integer", data)
		}
		if rv.OverflowUint(uint64(n)) {
			return fmt.Errorf("toml: %s: %d overflows %v", path, n, rv.Type())
		}
		rv.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		switch f := data.(type) {
		case float64:
			rv.SetFloat(f)
		case int64:
			rv.SetFloat(float64(f))
		default:
			return typeError(path, "float", data)
		}

	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return typeError(path, "string", data)
		}
		rv.SetString(s)

	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return typeError(path, "bool", data)
		}
		rv.SetBool(b)

	default:
		return fmt.Errorf("toml: %s: unsupported kind %v", path, rv.Kind())
	}
	return nil
}

func decodeStruct(t Table, rv reflect.Value, path string) error {
	fields := fieldIndex(rv.Type())
	for k, item := range t {
		i, ok := fields[k]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownKey, join(path, k))
		}
		if err := decodeValue(item, rv.Field(i), join(path, k)); err != nil {
			return err
		}
	}
	return nil
}

// fieldIndex maps document keys to exported field indices
func fieldIndex(t reflect.Type) map[string]int {
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _ := tagName(f)
		if name == "-" {
			continue
		}
		m[name] = i
	}
	return m
}

func tagName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("toml")
	if tag == "" {
		return f.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, opts == "omitempty"
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func typeError(path, want string, got any) error {
	return fmt.Errorf("toml: %s: expected %s, got %T", path, want, got)
}
