package access

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ============================================================================
// AUDIT TRAIL
// ============================================================================

// AuditEntry is an immutable record of one permission-check outcome. Exactly
// one entry is produced per evaluated check, allowed or denied.
type AuditEntry struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	Action       Action         `json:"action"`
	ResourceType ResourceType   `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// AuditStats summarizes the trail for administrative review.
type AuditStats struct {
	Total          int64            `json:"total"`
	RecentFailures int64            `json:"recent_failures"` // denials in the last 24h
	TopActions     map[Action]int64 `json:"top_actions"`
}

// recentFailureWindow bounds the RecentFailures stat.
const recentFailureWindow = 24 * time.Hour

// topActionLimit caps the TopActions histogram.
const topActionLimit = 5

// AuditStore persists audit entries. The store is append-only: no update or
// delete is exposed. Read access to the trail itself is gated by the
// evaluator (AuditLog resource, admin only) at the Engine boundary.
type AuditStore interface {
	Append(ctx context.Context, entry *AuditEntry) error
	Recent(ctx context.Context, limit int) ([]*AuditEntry, error)
	Stats(ctx context.Context) (*AuditStats, error)
}

// MemoryAuditStore keeps the trail in memory, for tests and single-process
// deployments.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	entries []*AuditEntry
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{entries: make([]*AuditEntry, 0)}
}

func (s *MemoryAuditStore) Append(ctx context.Context, entry *AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *MemoryAuditStore) Recent(ctx context.Context, limit int) ([]*AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]*AuditEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *MemoryAuditStore) Stats(ctx context.Context) (*AuditStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &AuditStats{
		Total:      int64(len(s.entries)),
		TopActions: make(map[Action]int64),
	}
	cutoff := time.Now().Add(-recentFailureWindow)
	for _, e := range s.entries {
		stats.TopActions[e.Action]++
		if !e.Success && e.Timestamp.After(cutoff) {
			stats.RecentFailures++
		}
	}
	stats.TopActions = topActions(stats.TopActions, topActionLimit)
	return stats, nil
}

// Len reports the number of stored entries.
func (s *MemoryAuditStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// topActions trims a full action histogram to the n most frequent actions,
// shared by store implementations.
func topActions(counts map[Action]int64, n int) map[Action]int64 {
	if len(counts) <= n {
		return counts
	}
	type kv struct {
		action Action
		count  int64
	}
	pairs := make([]kv, 0, len(counts))
	for a, c := range counts {
		pairs = append(pairs, kv{a, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].action < pairs[j].action
	})
	out := make(map[Action]int64, n)
	for _, p := range pairs[:n] {
		out[p.action] = p.count
	}
	return out
}
