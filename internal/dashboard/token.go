package dashboard

import "context"

// Token identifies one issued asynchronous operation. Its context is cancelled
// as soon as a newer token is issued from the same source.
type Token struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// ID returns the token's sequence number
func (t *Token) ID() uint64 { return t.id }

// Context returns the context the operation should run under
func (t *Token) Context() context.Context { return t.ctx }

// TokenSource hands out tokens where only the most recently issued one is current.
// It has no lock of its own: callers serialize access with the lock guarding the
// state the tokens protect, so the currency check and the commit are atomic.
type TokenSource struct {
	next    uint64
	current *Token
}

// Issue cancels the current token, if any, and returns a new current token
func (s *TokenSource) Issue(parent context.Context) *Token {
	s.Cancel()
	s.next++
	ctx, cancel := context.WithCancel(parent)
	t := &Token{id: s.next, ctx: ctx, cancel: cancel}
	s.current = t
	return t
}

// IsCurrent reports whether t is the latest issued token and has not been finished
func (s *TokenSource) IsCurrent(t *Token) bool {
	return t != nil && s.current == t
}

// Finish releases t. It returns true only if t was still current, meaning the
// caller may commit its result.
func (s *TokenSource) Finish(t *Token) bool {
	if !s.IsCurrent(t) {
		return false
	}
	s.current = nil
	t.cancel()
	return true
}

// Cancel drops the current token without issuing a new one
func (s *TokenSource) Cancel() {
	if s.current != nil {
		s.current.cancel()
		s.current = nil
	}
}
