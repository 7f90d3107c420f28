// Package event provides typed change notification with unsubscribe tokens.
// Subscribers can be removed one at a time by token, or all at once by the
// owner they were registered under (for example a screen being torn down).
package event

// Token identifies a single subscription on a Bus.
type Token uint64

type subscriber[T any] struct {
	token Token
	owner any
	fn    func(T)
}

// Bus fans a value out to every subscriber in subscription order.
// Owners are used as map keys and must be comparable (pointers in practice).
// The zero value is ready to use.
type Bus[T any] struct {
	next Token
	subs []subscriber[T]
}

// Subscribe registers fn under owner and returns a token for Unsubscribe.
// owner may be nil if bulk removal is never needed.
func (b *Bus[T]) Subscribe(owner any, fn func(T)) Token {
	b.next++
	b.subs = append(b.subs, subscriber[T]{token: b.next, owner: owner, fn: fn})
	return b.next
}

// Unsubscribe removes the subscription with the given token.
// Returns false if the token is unknown.
func (b *Bus[T]) Unsubscribe(tok Token) bool {
	for i, s := range b.subs {
		if s.token == tok {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// UnsubscribeOwner removes every subscription registered under owner and
// returns how many were removed.
func (b *Bus[T]) UnsubscribeOwner(owner any) int {
	if owner == nil {
		return 0
	}
	kept := b.subs[:0:0]
	removed := 0
	for _, s := range b.subs {
		if s.owner == owner {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	b.subs = kept
	return removed
}

// Emit calls every subscriber with v. Subscriptions added or removed by a
// callback take effect from the next Emit.
func (b *Bus[T]) Emit(v T) {
	subs := b.subs
	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus[T]) Len() int {
	return len(b.subs)
}
