package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deafbeat/internal/ir"
)

func TestQueue_PushPeekAdvance(t *testing.T) {
	q := NewQueue(4)

	require.True(t, q.Push(ir.Event{Time: 0, Type: ir.EventKick, Aux: 127}))
	require.True(t, q.Push(ir.Event{Time: 0, Type: ir.EventBass, Aux: 80}))
	require.True(t, q.Push(ir.Event{Time: 10, Type: ir.EventHat, Aux: 80}))

	ev, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, ir.EventKick, ev.Type)

	q.Advance()
	ev, ok = q.Peek()
	require.True(t, ok)
	assert.Equal(t, ir.EventBass, ev.Type)
	assert.Equal(t, 1, q.Cursor())

	q.Advance()
	q.Advance()
	_, ok = q.Peek()
	assert.False(t, ok, "cursor at end")

	q.Advance()
	assert.Equal(t, 3, q.Cursor(), "cursor never passes Len")
}

func TestQueue_FullDropsSilently(t *testing.T) {
	q := NewQueue(2)

	assert.True(t, q.Push(ir.Event{Time: 1}))
	assert.True(t, q.Push(ir.Event{Time: 2}))
	assert.False(t, q.Push(ir.Event{Time: 3}))
	assert.False(t, q.Push(ir.Event{Time: 4}))

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Cap())
	assert.Equal(t, 2, q.Dropped())
}

func TestQueue_RejectsOutOfOrder(t *testing.T) {
	q := NewQueue(8)

	require.True(t, q.Push(ir.Event{Time: 100}))
	assert.True(t, q.Push(ir.Event{Time: 100}), "equal time keeps order")
	assert.False(t, q.Push(ir.Event{Time: 99}))
	assert.Equal(t, 1, q.Dropped())
	assert.Equal(t, 2, q.Len())
}

func TestQueue_EventsIsCopy(t *testing.T) {
	q := NewQueue(2)
	q.Push(ir.Event{Time: 5, Type: ir.EventSnare})

	evs := q.Events()
	evs[0].Time = 999

	ev, _ := q.Peek()
	assert.Equal(t, uint32(5), ev.Time)
}

func TestQueue_ZeroCapacity(t *testing.T) {
	q := NewQueue(-1)
	assert.False(t, q.Push(ir.Event{}))
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 1, q.Dropped())
}
