package entity

import "time"

type AuditStatus string

const (
	AuditSuccess AuditStatus = "SUCCESS"
	AuditFailed  AuditStatus = "FAILED"
)

// AuditEvent is one append-only authentication record.
type AuditEvent struct {
	ID        string
	UserID    *int64
	Status    AuditStatus
	Method    string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
