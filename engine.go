package access

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/swifthaul/access/logger"
)

// Category errors for rejected checks. Denial of an evaluated check is a
// normal false result, never an error; these mark the middleware taxonomy so
// callers can map to transport status codes.
var (
	ErrUnauthenticated = errors.New("access: authentication required")
	ErrForbidden       = errors.New("access: permission denied")
)

// defaultAuditQueue is the audit channel buffer when not configured.
const defaultAuditQueue = 1024

// EngineOption configures an Engine at construction.
type EngineOption func(e *Engine) error

// WithAuditQueueSize sets the buffer of the async audit channel.
func WithAuditQueueSize(n int) EngineOption {
	return func(e *Engine) error {
		if n > 0 {
			e.queueSize = n
		}
		return nil
	}
}

// Engine couples the pure evaluator with the audit side channel. Decisions
// are computed synchronously; the matching audit entry is queued to a
// background worker so a slow or failing audit write never delays or fails
// the caller's request.
type Engine struct {
	store       AuditStore
	logger      logger.Logger
	traceIDFunc logger.TraceIDFunc
	queueSize   int

	auditCh   chan AuditEntry
	done      chan struct{}
	closeOnce sync.Once
	dropped   int64
	droppedMu sync.Mutex
}

// NewEngine builds an Engine over the given audit store and starts the audit
// worker.
func NewEngine(store AuditStore, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, errors.New("access: audit store is required")
	}
	e := &Engine{
		store:     store,
		logger:    logger.NewPhusluLogger(),
		queueSize: defaultAuditQueue,
		traceIDFunc: func() string {
			return strconv.FormatInt(time.Now().UnixNano(), 10)
		},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.auditCh = make(chan AuditEntry, e.queueSize)
	e.done = make(chan struct{})
	go e.auditWorker()
	return e, nil
}

func (e *Engine) auditWorker() {
	bg := context.Background()
	for entry := range e.auditCh {
		if err := e.store.Append(bg, &entry); err != nil {
			// Lost audit entries are an accepted failure mode; log locally
			// and move on.
			e.logger.Error("audit append failed",
				"id", entry.ID,
				"actor", entry.ActorID,
				"resource", string(entry.ResourceType),
				"error", err.Error())
		}
	}
	close(e.done)
}

// Authorize evaluates the check and records its outcome. The boolean result
// is exactly CanPerform's; the audit write is queued best-effort and its
// failure is never surfaced.
//
// details carries structured context (endpoint, method, reason) into the
// entry; reason is recorded only in the trail, never returned to the caller.
func (e *Engine) Authorize(ctx context.Context, p *Principal, action Action, resource ResourceType, subject Subject, details map[string]any) bool {
	allowed := CanPerform(p, action, resource, subject)
	entry := AuditEntry{
		ID:           e.traceIDFunc(),
		Action:       action,
		ResourceType: resource,
		Details:      details,
		Success:      allowed,
		Timestamp:    time.Now(),
	}
	if p != nil {
		entry.ActorID = p.ID
	}
	if subject != nil {
		entry.ResourceID = subject.SubjectID()
	}
	if !allowed {
		entry.ErrorMessage = deniedReason(details)
	}

	e.logger.Info("access decision",
		"actor", entry.ActorID,
		"action", string(action),
		"resource", string(resource),
		"resource_id", entry.ResourceID,
		"allowed", allowed)

	select {
	case e.auditCh <- entry:
	default:
		// Channel full: drop rather than block the authorization path.
		e.droppedMu.Lock()
		e.dropped++
		e.droppedMu.Unlock()
		e.logger.Debug("audit entry dropped, queue full", "id", entry.ID)
	}
	return allowed
}

func deniedReason(details map[string]any) string {
	if details != nil {
		if r, ok := details["reason"].(string); ok && r != "" {
			return r
		}
	}
	return "Permission denied"
}

// RecentEntries returns the newest audit entries for administrative review.
// The read is itself gated by the evaluator: AuditLog is admin only.
func (e *Engine) RecentEntries(ctx context.Context, p *Principal, limit int) ([]*AuditEntry, error) {
	if !CanPerform(p, ActionRead, ResourceAuditLog, nil) {
		return nil, ErrForbidden
	}
	return e.store.Recent(ctx, limit)
}

// AuditStats returns trail statistics, gated like RecentEntries.
func (e *Engine) AuditStats(ctx context.Context, p *Principal) (*AuditStats, error) {
	if !CanPerform(p, ActionRead, ResourceAuditLog, nil) {
		return nil, ErrForbidden
	}
	return e.store.Stats(ctx)
}

// DroppedEntries reports how many audit entries were discarded because the
// queue was full.
func (e *Engine) DroppedEntries() int64 {
	e.droppedMu.Lock()
	defer e.droppedMu.Unlock()
	return e.dropped
}

// Close drains the audit queue and stops the worker. Pending entries are
// written before Close returns.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.auditCh)
		<-e.done
	})
}
