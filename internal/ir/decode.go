package ir

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON implements json.Unmarshaler for Object.
func (obj *Object) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*obj = make(Object, len(raw))
	for k, v := range raw {
		val, err := unmarshalValue(v)
		if err != nil {
			return fmt.Errorf("object key %q: %w", k, err)
		}
		(*obj)[k] = val
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (arr *Array) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*arr = make(Array, len(raw))
	for i, v := range raw {
		val, err := unmarshalValue(v)
		if err != nil {
			return fmt.Errorf("array index %d: %w", i, err)
		}
		(*arr)[i] = val
	}
	return nil
}

// unmarshalValue decodes one JSON value. Floats and null have no Value
// variant and are rejected.
func unmarshalValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		return nil, fmt.Errorf("null is not a metadata value")

	case '[':
		var arr Array
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, err
		}
		return arr, nil

	case '{':
		var obj Object
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		return obj, nil

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats not allowed in metadata: %s", string(data))
		}
		return Int(i), nil
	}
}
