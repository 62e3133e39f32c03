// Package auth holds the admin authorization gate: a single shared secret
// compared for equality. There are no user accounts.
package auth

import "crypto/subtle"

// Gate compares caller-supplied secrets against the configured admin secret.
type Gate struct {
	secret []byte
}

// NewGate returns a gate for secret. An empty secret denies everything.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Authorize reports whether supplied matches the configured secret.
func (g *Gate) Authorize(supplied string) bool {
	if len(g.secret) == 0 || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare(g.secret, []byte(supplied)) == 1
}
