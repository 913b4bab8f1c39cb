// Package session implements the in-memory session table: opaque token
// minting, liveness tracking, and expiry sweeping. It is owned and guarded
// by the manager's single exclusive lock; nothing here is safe for
// concurrent use on its own.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync/atomic"
)

// Period is the session inactivity window in seconds. It is a var rather
// than a const so the daemon's configuration layer can override the
// default of 3600.
var Period int64 = 3600

// Session is one live login, identified externally by its 32-char token.
type Session struct {
	Name         string
	LastAccessed int64
}

// Table is the session token → Session map plus the sequence counter used
// to derive tokens.
type Table struct {
	sessions map[string]Session
	seq      uint32 // low byte used as the token's sequence tail
}

// NewTable returns an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[string]Session)}
}

// NewToken generates a 32-hex-char uppercase token: 15 cryptographically
// random bytes followed by a one-byte sequence counter that increments
// modulo 256 on every call, guaranteeing that two tokens minted within the
// same RNG output window still differ in their last byte.
func (t *Table) NewToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf[:15]); err != nil {
		return "", err
	}
	seq := atomic.AddUint32(&t.seq, 1)
	buf[15] = byte(seq)
	return strings.ToUpper(hex.EncodeToString(buf[:])), nil
}

// Create mints a token for name and records a fresh session for it.
func (t *Table) Create(name string, now int64) (string, error) {
	token, err := t.NewToken()
	if err != nil {
		return "", err
	}
	t.sessions[token] = Session{Name: name, LastAccessed: now}
	return token, nil
}

// Touch reports whether the session exists and has not expired; if so it
// refreshes LastAccessed to now and returns the updated session. An expired
// session is treated as absent here — expiry is only collected by Sweep.
func (t *Table) Touch(token string, now int64) (Session, bool) {
	s, ok := t.sessions[token]
	if !ok {
		return Session{}, false
	}
	if s.LastAccessed+Period <= now {
		return Session{}, false
	}
	s.LastAccessed = now
	t.sessions[token] = s
	return s, true
}

// Remove deletes the session for token, reporting whether it was present.
func (t *Table) Remove(token string) (Session, bool) {
	s, ok := t.sessions[token]
	if ok {
		delete(t.sessions, token)
	}
	return s, ok
}

// Sweep removes every session whose LastAccessed+Period has elapsed as of
// now, returning the count removed.
func (t *Table) Sweep(now int64) int {
	removed := 0
	for token, s := range t.sessions {
		if s.LastAccessed+Period <= now {
			delete(t.sessions, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of live (not yet swept) sessions.
func (t *Table) Len() int {
	return len(t.sessions)
}
