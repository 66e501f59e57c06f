package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/deafbeat/internal/ir"
)

// marshalMeta converts render metadata to canonical JSON TEXT for storage.
func marshalMeta(meta ir.Object) (string, error) {
	if meta == nil {
		meta = ir.Object{}
	}
	data, err := ir.MarshalCanonical(meta)
	if err != nil {
		return "", fmt.Errorf("marshal meta: %w", err)
	}
	return string(data), nil
}

// unmarshalMeta parses canonical JSON TEXT back into an Object.
func unmarshalMeta(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	var obj ir.Object
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	return obj, nil
}

// marshalStyle encodes the non-numeric shaping fields of a trigger. Gain
// and decay follow from the preset and are not stored.
func marshalStyle(tr Trigger) (string, error) {
	style := ir.Object{"velocity": ir.Int(tr.Velocity)}
	if tr.Waveform != "" {
		style["waveform"] = ir.String(tr.Waveform)
	}
	if tr.Preset != "" {
		style["preset"] = ir.String(tr.Preset)
	}
	data, err := ir.MarshalCanonical(style)
	if err != nil {
		return "", fmt.Errorf("marshal style: %w", err)
	}
	return string(data), nil
}

// unmarshalStyle fills the style fields of tr from canonical JSON.
func unmarshalStyle(data string, tr *Trigger) error {
	obj, err := unmarshalMeta(data)
	if err != nil {
		return fmt.Errorf("unmarshal style: %w", err)
	}
	if v, ok := obj["velocity"].(ir.Int); ok {
		tr.Velocity = uint8(v)
	}
	if v, ok := obj["waveform"].(ir.String); ok {
		tr.Waveform = string(v)
	}
	if v, ok := obj["preset"].(ir.String); ok {
		tr.Preset = string(v)
	}
	return nil
}

func formatSeed(seed uint64) string {
	return fmt.Sprintf("0x%016x", seed)
}

func parseSeed(s string) (uint64, error) {
	seed, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse seed %q: %w", s, err)
	}
	return seed, nil
}
