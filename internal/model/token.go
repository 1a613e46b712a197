package model

import "time"

// IssuedToken is one allow-list entry. A token is usable only while its
// record exists and its signature and embedded expiry still verify.
type IssuedToken struct {
	ID        string    `json:"id"`
	Value     string    `json:"-"`
	HolderID  int64     `json:"holder_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionInfo is the admin view of an IssuedToken; the token value is never
// exposed.
type SessionInfo struct {
	ID        string    `json:"id"`
	HolderID  int64     `json:"holder_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t IssuedToken) Info() SessionInfo {
	return SessionInfo{ID: t.ID, HolderID: t.HolderID, IssuedAt: t.IssuedAt, ExpiresAt: t.ExpiresAt}
}
