package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameQuota_Take(t *testing.T) {
	q := NewFrameQuota(1000)

	assert.Equal(t, uint64(600), q.Take(600))
	assert.Equal(t, uint64(400), q.Remaining())
	assert.False(t, q.Exhausted())

	assert.Equal(t, uint64(400), q.Take(600), "granted up to the remaining budget")
	assert.True(t, q.Exhausted())
	assert.Equal(t, uint64(0), q.Take(1))
	assert.Equal(t, uint64(1000), q.Used())
	assert.Equal(t, uint64(1000), q.Limit())
}

func TestFrameQuota_ZeroRequest(t *testing.T) {
	q := NewFrameQuota(10)
	assert.Equal(t, uint64(0), q.Take(0))
	assert.Equal(t, uint64(0), q.Used())
}
