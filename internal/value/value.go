// Package value compares and hashes metadata values the way availability
// lookups need: numbers compare by value whatever their Go width, strings
// never compare equal to numbers, and lists compare element-wise.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Canonical converts decoded or user-supplied values to the representation
// stored in availability indexes: integers become int64, float32 becomes
// float64 and json.Number is parsed. Other values are returned unchanged.
func Canonical(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case float32:
		return float64(t)
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntLike(rv.Kind()):
		return toInt64(rv)
	case rv.Kind() == reflect.String && rv.Type() != reflect.TypeOf(""):
		return rv.String()
	}
	return v
}

// Key renders v into a string that is equal for two values exactly when
// Equal reports them equal. It is used to index sets of values.
func Key(v any) string {
	b := &strings.Builder{}
	writeKey(b, v)
	return b.String()
}

// Equal reports whether a and b denote the same metadata value.
func Equal(a, b any) bool { return Key(a) == Key(b) }

func writeKey(b *strings.Builder, v any) {
	v = Canonical(v)
	switch t := v.(type) {
	case nil:
		b.WriteString("z:")
	case string:
		b.WriteString("s:")
		b.WriteString(t)
	case bool:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(t))
	case int64:
		b.WriteString("n:")
		b.WriteString(strconv.FormatInt(t, 10))
	case float64:
		b.WriteString("n:")
		if t == math.Trunc(t) && !math.IsInf(t, 0) && math.Abs(t) < 1<<53 {
			b.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
		}
	default:
		if items, ok := AsList(v); ok {
			b.WriteString("l:[")
			for i, it := range items {
				if i > 0 {
					b.WriteString(",")
				}
				writeKey(b, it)
			}
			b.WriteString("]")
			return
		}
		fmt.Fprintf(b, "%T:%v", v, v)
	}
}

// AsList returns the elements of v when v is a slice or array (strings and
// byte slices are not lists).
func AsList(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return t, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

// IsSingleton reports whether v is a one-element list whose element equals want.
func IsSingleton(v, want any) bool {
	items, ok := AsList(v)
	return ok && len(items) == 1 && Equal(items[0], want)
}

// Format renders v for log and error messages.
func Format(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	if items, ok := AsList(v); ok {
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = Format(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}

func isIntLike(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func toInt64(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	default:
		return 0
	}
}
