// Package token implements the bearer-token table: opaque random strings
// mapped to usernames, held only in process memory. The table starts empty,
// is never persisted, and is lost on restart. Tokens carry no expiry and are
// never individually revoked.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

const tokenBytes = 16

// Service issues and resolves bearer tokens. Construct one per process (or
// per test); it is not an ambient singleton.
type Service struct {
	mu     sync.RWMutex
	tokens map[string]string // token -> username
}

func New() *Service {
	return &Service{
		tokens: make(map[string]string),
	}
}

// Issue generates a random token for username and registers it. A user may
// hold any number of live tokens at once.
func (s *Service) Issue(username string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	t := hex.EncodeToString(buf)

	s.mu.Lock()
	s.tokens[t] = username
	s.mu.Unlock()

	return t, nil
}

// Resolve maps a token back to its username. An unknown token is not an
// error here; the caller decides whether "no identity" is a failure. Resolve
// does not check that the username still exists.
func (s *Service) Resolve(t string) (string, bool) {
	s.mu.RLock()
	username, ok := s.tokens[t]
	s.mu.RUnlock()
	return username, ok
}
