package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_NoHandler(t *testing.T) {
	d := NewDispatcher()
	assert.NotPanics(t, d.NotifyUnauthorized)
}

func TestDispatcher_LastRegistrationWins(t *testing.T) {
	d := NewDispatcher()

	var first, second int
	d.Register(func() { first++ })
	d.Register(func() { second++ })

	d.NotifyUnauthorized()
	d.NotifyUnauthorized()

	assert.Zero(t, first)
	assert.Equal(t, 2, second)
}

func TestDispatcher_RegisterNilClears(t *testing.T) {
	d := NewDispatcher()

	calls := 0
	d.Register(func() { calls++ })
	d.Register(nil)
	d.NotifyUnauthorized()

	assert.Zero(t, calls)
}
