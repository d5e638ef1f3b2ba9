package types

import (
	"time"
)

// SessionExpirySkew is subtracted from a session's expiry when checking validity
const SessionExpirySkew = 5 * time.Second

// Session is a time bound bearer credential issued by the backend
type Session struct {
	Token string `json:"token"`
	// TTL in seconds
	TTL      uint64    `json:"ttl"`
	ExpireAt time.Time `json:"expireAt"`
}

// Valid reports whether s can still be used at now
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" || s.ExpireAt.IsZero() {
		return false
	}

	return now.Add(SessionExpirySkew).Before(s.ExpireAt)
}

// Refresh moves the expiry to now + TTL
func (s *Session) Refresh(now time.Time) {
	s.ExpireAt = now.Add(time.Duration(s.TTL) * time.Second)
}

// CreatedSession is the backend answer to a signed session code
type CreatedSession struct {
	Token   string   `json:"token"`
	TTL     uint64   `json:"ttl"`
	Account *Account `json:"account"`
}
