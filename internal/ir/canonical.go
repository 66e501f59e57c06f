package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON.
// This is the only encoding used for stored render metadata and trigger
// styles, so identical inputs always produce identical bytes.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Floats and nulls are rejected
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case String:
		return writeCanonicalString(buf, string(val))
	case string:
		return writeCanonicalString(buf, val)
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		return writeCanonicalObject(buf, val)
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			iv, err := toValue(elem)
			if err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = iv
		}
		return writeCanonicalObject(buf, obj)
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// toValue converts a plain Go value to a Value.
func toValue(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden")
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case bool:
		return Bool(val), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden")
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			iv, err := toValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = iv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			iv, err := toValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = iv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func writeCanonicalObject(buf *bytes.Buffer, obj Object) error {
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string. Only control
// characters, backslash and quote are escaped; U+2028/U+2029 stay literal.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})

	for i := 0; i < len(out); i++ {
		if out[i] != '\\' || i+1 >= len(out) {
			buf.WriteByte(out[i])
			continue
		}
		// Escape sequences are consumed whole so "\\u2028" (an escaped
		// backslash followed by text) is never mistaken for an escape.
		if out[i+1] == 'u' && i+6 <= len(out) {
			switch string(out[i+2 : i+6]) {
			case "2028":
				buf.WriteString("\u2028")
				i += 5
				continue
			case "2029":
				buf.WriteString("\u2029")
				i += 5
				continue
			}
		}
		buf.WriteByte(out[i])
		buf.WriteByte(out[i+1])
		i++
	}
	return nil
}
