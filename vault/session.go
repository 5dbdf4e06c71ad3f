package vault

import (
	"sync"
	"time"

	"github.com/alwitt/credvault/encryption"
)

// DefaultSessionTTL how long an unlocked session stays usable
const DefaultSessionTTL = 15 * time.Minute

/*
Session an unlocked vault of one tenant

A session holds the passphrase for its lifetime, and is handed explicitly to every call
which encrypts or decrypts. Calling Lock wipes the passphrase; the session can not be
reopened afterwards. A nil session behaves as a locked one.

A session accepted while the tenant had no entries is "optimistic": nothing vouched
for the passphrase. It stays optimistic until a write observes an existing entry which
decrypts under the same passphrase.
*/
type Session struct {
	lock       sync.RWMutex
	tenantID   string
	passphrase []byte
	optimistic bool
	closed     bool
	createdAt  time.Time
	expiresAt  time.Time
}

// newSession define a new unlocked session; the session takes ownership of passphrase
func newSession(tenantID string, passphrase []byte, optimistic bool, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		tenantID:   tenantID,
		passphrase: passphrase,
		optimistic: optimistic,
		createdAt:  now,
		expiresAt:  now.Add(ttl),
	}
}

// TenantID the tenant this session unlocked
func (s *Session) TenantID() string {
	if s == nil {
		return ""
	}
	return s.tenantID
}

// CreatedAt when the session was unlocked
func (s *Session) CreatedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.createdAt
}

// ExpiresAt when the session stops being usable
func (s *Session) ExpiresAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.expiresAt
}

// Optimistic whether the passphrase is still unverified against any entry
func (s *Session) Optimistic() bool {
	if s == nil {
		return false
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.optimistic
}

// IsOpen whether the session is neither locked nor expired
func (s *Session) IsOpen() bool {
	if s == nil {
		return false
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.openLocked()
}

func (s *Session) openLocked() bool {
	return !s.closed && time.Now().Before(s.expiresAt)
}

// Lock close the session and wipe the passphrase
func (s *Session) Lock() {
	if s == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	encryption.Zero(s.passphrase)
	s.passphrase = nil
	s.closed = true
}

// confirm record that the passphrase opened an existing entry
func (s *Session) confirm() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.optimistic = false
}

// withPassphrase run an operation with the passphrase
//
// The operation must not retain the buffer. Lock waits for in-flight operations to
// finish before wiping it.
func (s *Session) withPassphrase(op func(passphrase []byte) error) error {
	if s == nil {
		return ErrSessionClosed
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	if !s.openLocked() {
		return ErrSessionClosed
	}
	return op(s.passphrase)
}
