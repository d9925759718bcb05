package audit

import (
	"context"
	"time"
)

// Entry is a coarse, human-readable audit record.
type Entry struct {
	ID     int64     `json:"id"`
	Email  string    `json:"email"`
	RoleID int       `json:"roleId"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// ForensicEntry is a structured per-operation record. The user and document
// references are nullable: they are nulled, never deleted, when the entity
// they point at is removed.
type ForensicEntry struct {
	ID         int64
	UserID     *int64
	DocumentID *int64
	SourceIP   string
	Action     string
	Outcome    string
	At         time.Time
}

// Repo persists audit and forensic records. Both tables are append-only.
type Repo interface {
	InsertAudit(ctx context.Context, email string, roleID int, action string) error
	InsertForensic(ctx context.Context, e ForensicEntry) error
	LastAudit(ctx context.Context, limit int) ([]Entry, error)
}
