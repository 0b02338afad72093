package toml

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Marshal encodes a struct or string-keyed map as a TOML document
// Scalars of a table precede its sub-tables; map keys are sorted
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("toml: marshal nil pointer")
		}
		rv = rv.Elem()
	}
	if !isTable(rv) {
		return nil, fmt.Errorf("toml: marshal root must be a table, got %v", rv.Kind())
	}

	var buf bytes.Buffer
	if err := writeTable(&buf, rv, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type entry struct {
	key string
	val reflect.Value
}

func entries(rv reflect.Value) ([]entry, error) {
	var out []entry
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, omitEmpty := tagName(f)
			if name == "-" {
				continue
			}
			fv := rv.Field(i)
			if omitEmpty && fv.IsZero() {
				continue
			}
			out = append(out, entry{name, fv})
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("toml: map key must be string")
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			out = append(out, entry{k.String(), rv.MapIndex(k)})
		}
	}
	return out, nil
}

func isTable(rv reflect.Value) bool {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.Type() == durationType {
		return false
	}
	return rv.Kind() == reflect.Struct || rv.Kind() == reflect.Map
}

func writeTable(buf *bytes.Buffer, rv reflect.Value, path string) error {
	es, err := entries(rv)
	if err != nil {
		return err
	}

	var tables []entry
	for _, e := range es {
		if isTable(e.val) {
			tables = append(tables, e)
			continue
		}
		if (e.val.Kind() == reflect.Pointer || e.val.Kind() == reflect.Interface) && e.val.IsNil() {
			continue
		}
		s, err := scalar(e.val)
		if err != nil {
			return fmt.Errorf("toml: %s: %w", join(path, e.key), err)
		}
		fmt.Fprintf(buf, "%s = %s\n", quoteKey(e.key), s)
	}

	for _, e := range tables {
		sub := join(path, quoteKey(e.key))
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(buf, "[%s]\n", sub)
		v := e.val
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			v = v.Elem()
		}
		if err := writeTable(buf, v, sub); err != nil {
			return err
		}
	}
	return nil
}

func scalar(rv reflect.Value) (string, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if rv.Type() == durationType {
		return strconv.Quote(time.Duration(rv.Int()).String()), nil
	}

	switch rv.Kind() {
	case reflect.String:
		return quote(rv.String()), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return "", fmt.Errorf("%d overflows int64", u)
		}
		return strconv.FormatUint(u, 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			if isTable(rv.Index(i)) {
				return "", fmt.Errorf("arrays of tables are not supported")
			}
			s, err := scalar(rv.Index(i))
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	}
	return "", fmt.Errorf("unsupported kind %v", rv.Kind())
}

// formatFloat always yields a float lexeme so the value reads back as float
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

func quoteKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := 0; i < len(k); i++ {
		if !isBare(k[i]) {
			return quote(k)
		}
	}
	return k
}
