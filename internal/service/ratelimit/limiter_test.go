package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowBurstThenBlock(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("k", 3, 0), "request %d within capacity", i)
	}
	assert.False(t, l.Allow("k", 3, 0))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	assert.True(t, l.Allow("a", 1, 0))
	assert.False(t, l.Allow("a", 1, 0))
	assert.True(t, l.Allow("b", 1, 0))
}

func TestAllowRefills(t *testing.T) {
	l := New()
	assert.True(t, l.Allow("k", 1, 100))
	assert.False(t, l.Allow("k", 1, 100))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, l.Allow("k", 1, 100), "bucket refills over time")
}
