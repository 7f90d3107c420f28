package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusEmitOrder(t *testing.T) {
	var b Bus[int]
	var got []string

	b.Subscribe(nil, func(v int) { got = append(got, "a") })
	b.Subscribe(nil, func(v int) { got = append(got, "b") })
	b.Emit(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestBusUnsubscribeToken(t *testing.T) {
	var b Bus[string]
	calls := 0

	tok := b.Subscribe(nil, func(string) { calls++ })
	assert.True(t, b.Unsubscribe(tok))
	assert.False(t, b.Unsubscribe(tok), "second unsubscribe should report unknown token")

	b.Emit("x")
	assert.Equal(t, 0, calls)
}

func TestBusUnsubscribeOwner(t *testing.T) {
	type screen struct{ name string }
	menu := &screen{"menu"}
	play := &screen{"play"}

	var b Bus[int]
	var got []string
	b.Subscribe(menu, func(int) { got = append(got, "menu-1") })
	b.Subscribe(play, func(int) { got = append(got, "play") })
	b.Subscribe(menu, func(int) { got = append(got, "menu-2") })

	assert.Equal(t, 2, b.UnsubscribeOwner(menu))
	assert.Equal(t, 1, b.Len())

	b.Emit(0)
	assert.Equal(t, []string{"play"}, got)
}

func TestBusUnsubscribeDuringEmit(t *testing.T) {
	var b Bus[int]
	calls := 0
	var tok Token
	tok = b.Subscribe(nil, func(int) {
		calls++
		b.Unsubscribe(tok)
	})
	b.Subscribe(nil, func(int) { calls++ })

	b.Emit(0)
	assert.Equal(t, 2, calls, "removal takes effect on the next emit")

	b.Emit(0)
	assert.Equal(t, 3, calls)
}
