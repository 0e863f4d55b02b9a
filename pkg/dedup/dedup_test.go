package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestShouldProcess(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	d := New(time.Minute, 10)
	d.now = c.now

	assert.True(t, d.ShouldProcess("a"))
	assert.False(t, d.ShouldProcess("a"))
	assert.True(t, d.ShouldProcess("b"))
	assert.True(t, d.ShouldProcess(""))
	assert.True(t, d.ShouldProcess(""))

	c.t = c.t.Add(time.Minute)
	assert.True(t, d.ShouldProcess("a"), "expired ids are processed again")
}

func TestEvictKeepsUnderMax(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	d := New(time.Hour, 2)
	d.now = c.now

	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, d.ShouldProcess(id))
		c.t = c.t.Add(time.Second)
	}
	assert.Equal(t, 2, d.Len())
	// "a" was closest to expiry and got evicted
	assert.True(t, d.ShouldProcess("a"))
	assert.False(t, d.ShouldProcess("c"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key([]byte("t"), []byte("p")), Key([]byte("t"), []byte("p")))
	assert.NotEqual(t, Key([]byte("t"), []byte("p")), Key([]byte("tp")))
	assert.Len(t, Key(nil), 64)
}

func TestForget(t *testing.T) {
	d := New(time.Minute, 10)

	assert.True(t, d.ShouldProcess("a"))
	d.Forget("a")
	assert.Equal(t, 0, d.Len())
	assert.True(t, d.ShouldProcess("a"), "forgotten ids are processed again")
	assert.False(t, d.ShouldProcess("a"))

	d.Forget("missing")
	assert.Equal(t, 1, d.Len())
}
