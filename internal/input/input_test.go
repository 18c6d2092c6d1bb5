package input

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePins map[Button]bool

// Level reports high (released) unless the button is held
func (p fakePins) Level(b Button) bool {
	return !p[b]
}

func TestEdgeDetector(t *testing.T) {
	pins := fakePins{}
	edges := NewEdgeDetector(pins)

	_, ok := edges.Poll()
	assert.False(t, ok, "no edges while everything is released")

	pins[ButtonUp] = true
	b, ok := edges.Poll()
	require.True(t, ok)
	assert.Equal(t, ButtonUp, b)

	_, ok = edges.Poll()
	assert.False(t, ok, "holding a button must not repeat the edge")

	pins[ButtonUp] = false
	_, ok = edges.Poll()
	assert.False(t, ok, "release is not a press")

	pins[ButtonDown] = true
	pins[ButtonConfirm] = true
	b, ok = edges.Poll()
	require.True(t, ok)
	assert.Equal(t, ButtonDown, b)
	b, ok = edges.Poll()
	require.True(t, ok)
	assert.Equal(t, ButtonConfirm, b)
}

func TestDebouncer(t *testing.T) {
	clock := quartz.NewMock(t)
	src := NewQueueSource()
	d := NewDebouncer(src, clock, DefaultDebounce)

	t.Run("first press accepted", func(t *testing.T) {
		src.Press(ButtonDown)
		b, ok := d.Poll()
		require.True(t, ok)
		assert.Equal(t, ButtonDown, b)
	})

	t.Run("press inside window dropped regardless of button", func(t *testing.T) {
		clock.Advance(50 * time.Millisecond)
		src.Press(ButtonConfirm)
		_, ok := d.Poll()
		assert.False(t, ok)
	})

	t.Run("press after window accepted", func(t *testing.T) {
		clock.Advance(DefaultDebounce)
		src.Press(ButtonConfirm)
		b, ok := d.Poll()
		require.True(t, ok)
		assert.Equal(t, ButtonConfirm, b)
	})
}

func TestButtonString(t *testing.T) {
	assert.Equal(t, "Up", ButtonUp.String())
	assert.Equal(t, "Return", ButtonReturn.String())
	assert.Equal(t, "None", Button(42).String())
}
