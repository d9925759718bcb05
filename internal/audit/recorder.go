// Package audit provides the append-only audit and forensic side channels.
// Recording is fire-and-forget: failures are logged locally and never reach
// the operation that triggered them.
package audit

import (
	"context"
	"sync"
	"time"

	"medicloud-backend/internal/shared/telemetry"
)

const writeTimeout = 5 * time.Second

// Recorder schedules audit and forensic writes as detached tasks. The
// methods return nothing and cannot fail into the caller.
type Recorder struct {
	repo Repo
	wg   sync.WaitGroup
}

// NewRecorder builds a Recorder over the given repository.
func NewRecorder(repo Repo) *Recorder {
	return &Recorder{repo: repo}
}

// Audit appends a coarse audit entry.
func (r *Recorder) Audit(email string, roleID int, action string) {
	r.dispatch(func(ctx context.Context) error {
		return r.repo.InsertAudit(ctx, email, roleID, action)
	}, action)
}

// Forensic appends a structured forensic entry. userID and documentID may be
// nil when the referenced entity could not be resolved.
func (r *Recorder) Forensic(userID, documentID *int64, sourceIP, action, outcome string) {
	r.dispatch(func(ctx context.Context) error {
		return r.repo.InsertForensic(ctx, ForensicEntry{
			UserID:     userID,
			DocumentID: documentID,
			SourceIP:   sourceIP,
			Action:     action,
			Outcome:    outcome,
		})
	}, action)
}

// Close waits for in-flight writes to finish. Call on shutdown.
func (r *Recorder) Close() {
	r.wg.Wait()
}

func (r *Recorder) dispatch(write func(context.Context) error, action string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("audit.panic", map[string]any{"action": action, "error": rec})
			}
		}()

		// Detached from the request: the parent context may already be
		// canceled by the time this runs.
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := write(ctx); err != nil {
			telemetry.Error("audit.write_failed", map[string]any{
				"action": action,
				"error":  err.Error(),
			})
		}
	}()
}
