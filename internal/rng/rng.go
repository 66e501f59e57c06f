// Package rng implements the deterministic xorshift32 stream that drives
// every musical decision.
//
// The draw formulas are part of the public contract: Next, Float and IntN
// must stay bit-for-bit identical across releases, because every derived
// tempo, pattern and pitch depends on the exact sequence of draws.
package rng

import (
	"strconv"
	"strings"
)

// Drawer is a source of raw 32-bit draws. The scheduler takes one explicitly
// so the draw order stays auditable.
type Drawer interface {
	Next() uint32
}

// Source is a xorshift32 generator with a single 32-bit state word.
// A Source is not safe for concurrent use; each composition owns one.
type Source struct {
	state uint32
}

// New seeds a Source. The 64-bit seed is folded to 32 bits (low ^ high) and a
// zero state is replaced by 1, since zero is a fixed point of xorshift.
func New(seed uint64) *Source {
	s := &Source{}
	s.Seed(seed)
	return s
}

// Seed resets the state from seed using the same folding as New.
func (s *Source) Seed(seed uint64) {
	st := uint32(seed) ^ uint32(seed>>32)
	if st == 0 {
		st = 1
	}
	s.state = st
}

// State returns the current state word.
func (s *Source) State() uint32 {
	return s.state
}

// Next advances the state and returns it.
func (s *Source) Next() uint32 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// Float returns Next() / 2^32, a value in [0, 1).
func (s *Source) Float() float64 {
	return float64(s.Next()) / 4294967296.0
}

// IntN returns Next() mod n. For n <= 0 it returns 0 without drawing.
func (s *Source) IntN(n int) int {
	return IntN(s, n)
}

// IntN draws from d and reduces modulo n. For n <= 0 it returns 0 without
// drawing.
func IntN(d Drawer, n int) int {
	if n <= 0 {
		return 0
	}
	return int(d.Next() % uint32(n))
}

// FoldHex folds an arbitrarily long hex string (an optional 0x prefix is
// skipped) into a 32-bit seed by XOR-ing consecutive 8-digit chunks.
// A zero result is replaced by 0xDEADBEEF. Chunks that fail to parse
// contribute their longest valid hex prefix.
func FoldHex(hash string) uint32 {
	h := strings.TrimPrefix(strings.TrimPrefix(hash, "0x"), "0X")
	var seed uint32
	for i := 0; i < len(h); i += 8 {
		end := min(i+8, len(h))
		seed ^= parseHexPrefix(h[i:end])
	}
	if seed == 0 {
		seed = 0xDEADBEEF
	}
	return seed
}

func parseHexPrefix(chunk string) uint32 {
	n := 0
	for n < len(chunk) && isHex(chunk[n]) {
		n++
	}
	if n == 0 {
		return 0
	}
	v, err := strconv.ParseUint(chunk[:n], 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
