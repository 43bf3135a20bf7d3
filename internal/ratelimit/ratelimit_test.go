package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmitUnderLimit(t *testing.T) {
	l := New(time.Minute, 100)

	for i := 0; i < 100; i++ {
		res := l.Admit("10.0.0.1")
		assert.True(t, res.Allowed, "request %d should be admitted", i+1)
	}
}

func TestAdmitDeniesBeyondLimit(t *testing.T) {
	l := New(time.Minute, 100)

	for i := 0; i < 150; i++ {
		res := l.Admit("10.0.0.1")
		if i < 100 {
			assert.True(t, res.Allowed, "request %d", i+1)
		} else {
			assert.False(t, res.Allowed, "request %d", i+1)
			assert.Equal(t, 60, res.RetryAfterSeconds)
		}
	}
}

func TestAdmitSeparateClients(t *testing.T) {
	l := New(time.Minute, 2)

	assert.True(t, l.Admit("a").Allowed)
	assert.True(t, l.Admit("a").Allowed)
	assert.False(t, l.Admit("a").Allowed)
	assert.True(t, l.Admit("b").Allowed)
}

func TestAdmitWindowSlides(t *testing.T) {
	l := New(time.Minute, 2)
	base := time.Now()
	current := base
	l.now = func() time.Time { return current }

	assert.True(t, l.Admit("c").Allowed)
	assert.True(t, l.Admit("c").Allowed)
	assert.False(t, l.Admit("c").Allowed)

	// Just inside the window: still denied.
	current = base.Add(59 * time.Second)
	assert.False(t, l.Admit("c").Allowed)

	// Past the window: the old timestamps are purged.
	current = base.Add(61 * time.Second)
	assert.True(t, l.Admit("c").Allowed)
}

func TestAdmitEmptyIdentifierSharesBucket(t *testing.T) {
	l := New(time.Minute, 1)

	assert.True(t, l.Admit("").Allowed)
	assert.False(t, l.Admit(UnknownClient).Allowed)
}

func TestSizeDropsDeadWindows(t *testing.T) {
	l := New(time.Minute, 10)
	base := time.Now()
	current := base
	l.now = func() time.Time { return current }

	l.Admit("a")
	l.Admit("b")
	assert.Equal(t, 2, l.Size())

	current = base.Add(2 * time.Minute)
	assert.Equal(t, 0, l.Size())
}
