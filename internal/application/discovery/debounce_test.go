package discovery

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type collector struct {
	mu     sync.Mutex
	values []string
}

func (c *collector) emit(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.values...)
}

func TestDebouncer(t *testing.T) {
	t.Run("BurstEmitsLastValueOnce", func(t *testing.T) {
		c := &collector{}
		d := NewDebouncer(30*time.Millisecond, c.emit)

		d.Push("p")
		d.Push("po")
		d.Push("poulet")

		assert.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, []string{"poulet"}, c.snapshot())
	})

	t.Run("PushRestartsWindow", func(t *testing.T) {
		c := &collector{}
		d := NewDebouncer(100*time.Millisecond, c.emit)

		d.Push("a")
		time.Sleep(60 * time.Millisecond)
		d.Push("ab")
		time.Sleep(60 * time.Millisecond)
		assert.Empty(t, c.snapshot(), "window restarted by the second push")

		assert.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"ab"}, c.snapshot())
	})

	t.Run("Flush", func(t *testing.T) {
		c := &collector{}
		d := NewDebouncer(time.Hour, c.emit)

		assert.False(t, d.Flush())
		d.Push("tofu")
		v, ok := d.Pending()
		assert.True(t, ok)
		assert.Equal(t, "tofu", v)

		assert.True(t, d.Flush())
		assert.Equal(t, []string{"tofu"}, c.snapshot())
		_, ok = d.Pending()
		assert.False(t, ok)
	})

	t.Run("CancelAndStop", func(t *testing.T) {
		c := &collector{}
		d := NewDebouncer(10*time.Millisecond, c.emit)

		d.Push("x")
		d.Cancel()
		d.Push("y")
		d.Stop()
		d.Push("z")

		time.Sleep(40 * time.Millisecond)
		assert.Empty(t, c.snapshot())
	})

	t.Run("ZeroDelayIsSynchronous", func(t *testing.T) {
		c := &collector{}
		d := NewDebouncer(0, c.emit)
		d.Push("now")
		assert.Equal(t, []string{"now"}, c.snapshot())
	})
}
