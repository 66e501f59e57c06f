package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the metadata value types that can be
// canonically encoded. There is deliberately no float variant.
type Value interface {
	value()
}

// String is a string metadata value.
type String string

func (String) value() {}

// Int is an integer metadata value. Always int64.
type Int int64

func (Int) value() {}

// Bool is a boolean metadata value.
type Bool bool

func (Bool) value() {}

// Array is an ordered list of values.
type Array []Value

func (Array) value() {}

// Object maps string keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units, not UTF-8 bytes).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
