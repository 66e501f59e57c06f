package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// FixedRunIDGenerator produces render IDs of the form "<prefix>-0001",
// "<prefix>-0002", ... in call order. It satisfies store.IDGenerator.
//
// Thread-safety: safe for concurrent use.
type FixedRunIDGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewFixedRunIDGenerator returns a generator for prefix. An empty prefix
// becomes "test-render".
func NewFixedRunIDGenerator(prefix string) *FixedRunIDGenerator {
	if prefix == "" {
		prefix = "test-render"
	}
	return &FixedRunIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *FixedRunIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
