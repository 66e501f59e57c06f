package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunIDGenerator(t *testing.T) {
	g := NewFixedRunIDGenerator("scenario")
	assert.Equal(t, "scenario-0001", g.Generate())
	assert.Equal(t, "scenario-0002", g.Generate())

	assert.Equal(t, "test-render-0001", NewFixedRunIDGenerator("").Generate())
}

func TestFixedRunIDGenerator_SameSequenceTwice(t *testing.T) {
	a := NewFixedRunIDGenerator("x")
	b := NewFixedRunIDGenerator("x")
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestDiscardLogger(t *testing.T) {
	log := DiscardLogger()
	assert.NotNil(t, log)
	log.Info("dropped", "k", 1)
}
