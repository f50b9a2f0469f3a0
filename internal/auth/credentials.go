package auth

import "sync"

// Credentials holds the bearer token shared by the REST client and the
// socket handshake. Subscribers are told about every change.
type Credentials struct {
	mu     sync.RWMutex
	token  string
	nextID uint64
	subs   map[uint64]func(token string)
}

// NewCredentials creates a holder seeded with token, which may be empty
func NewCredentials(token string) *Credentials {
	return &Credentials{
		token: token,
		subs:  make(map[uint64]func(string)),
	}
}

// Token returns the current token, empty when logged out
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Present reports whether a token is available
func (c *Credentials) Present() bool {
	return c.Token() != ""
}

// Set replaces the token. Subscribers run only when it actually changes.
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	if c.token == token {
		c.mu.Unlock()
		return
	}
	c.token = token
	fns := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range fns {
		fn(token)
	}
}

// Clear logs out
func (c *Credentials) Clear() {
	c.Set("")
}

// Subscribe registers fn for token changes and returns its cancel func
func (c *Credentials) Subscribe(fn func(token string)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Credentials) snapshotLocked() []func(string) {
	fns := make([]func(string), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	return fns
}
