package entity

import "time"

// Session binds the hash of a refresh secret to a user.
// Once Revoked is set it is never cleared.
type Session struct {
	ID               int64
	UserID           int64
	RefreshTokenHash string
	IPAddress        string
	UserAgent        string
	Revoked          bool
	CreatedAt        time.Time
}

// SessionWithUser is the refresh lookup result: a live session joined to
// the owner's identity fields.
type SessionWithUser struct {
	SessionID int64
	CreatedAt time.Time
	User      User
}
