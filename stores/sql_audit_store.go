package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/oarkflow/squealx"

	"github.com/swifthaul/access"
)

const topActionLimit = 5

// SQLAuditStore persists audit entries in SQL (sqlite in production, any
// squealx-supported driver). Appends are plain inserts; the administrative
// Recent/Stats reads go through a short-TTL ristretto cache, so they may lag
// the trail by at most the TTL.
type SQLAuditStore struct {
	db       *squealx.DB
	cache    *ristretto.Cache
	cacheTTL time.Duration
}

// SQLAuditOption tunes the store.
type SQLAuditOption func(s *SQLAuditStore)

// WithReadCache sizes the ristretto cache in front of Recent and Stats.
// A zero TTL disables caching.
func WithReadCache(numCounters, maxCost int64, ttl time.Duration) SQLAuditOption {
	return func(s *SQLAuditStore) {
		if ttl <= 0 {
			return
		}
		if numCounters <= 0 {
			numCounters = 1e4
		}
		if maxCost <= 0 {
			maxCost = 1 << 20
		}
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: numCounters,
			MaxCost:     maxCost,
			BufferItems: 64,
		})
		if err != nil {
			return
		}
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func NewSQLAuditStore(db *squealx.DB, opts ...SQLAuditOption) (*SQLAuditStore, error) {
	s := &SQLAuditStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SQLAuditStore) Append(ctx context.Context, entry *access.AuditEntry) error {
	detailsB, _ := json.Marshal(entry.Details)
	q := `INSERT INTO audit_entries(id, actor_id, action, resource_type, resource_id, details_json, success, error_message, timestamp)
	      VALUES(:id, :actor_id, :action, :resource_type, :resource_id, :details_json, :success, :error_message, :timestamp)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":            entry.ID,
		"actor_id":      entry.ActorID,
		"action":        string(entry.Action),
		"resource_type": string(entry.ResourceType),
		"resource_id":   entry.ResourceID,
		"details_json":  string(detailsB),
		"success":       boolToInt(entry.Success),
		"error_message": entry.ErrorMessage,
		"timestamp":     entry.Timestamp,
	})
	return err
}

func (s *SQLAuditStore) Recent(ctx context.Context, limit int) ([]*access.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	cacheKey := fmt.Sprintf("recent:%d", limit)
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			return v.([]*access.AuditEntry), nil
		}
	}
	q := `SELECT id, actor_id, action, resource_type, resource_id, details_json, success, error_message, timestamp
	      FROM audit_entries ORDER BY timestamp DESC LIMIT :limit`
	rows, err := s.db.NamedQueryContext(ctx, q, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*access.AuditEntry, 0, limit)
	for rows.Next() {
		var id, actor, action, resourceType, resourceID, detailsJSON, errMsg string
		var success int
		var timestampRaw any
		if err := rows.Scan(&id, &actor, &action, &resourceType, &resourceID, &detailsJSON, &success, &errMsg, &timestampRaw); err != nil {
			return nil, err
		}
		entry := &access.AuditEntry{
			ID:           id,
			ActorID:      actor,
			Action:       access.Action(action),
			ResourceType: access.ResourceType(resourceType),
			ResourceID:   resourceID,
			Success:      success != 0,
			ErrorMessage: errMsg,
			Timestamp:    scanTime(timestampRaw),
		}
		_ = json.Unmarshal([]byte(detailsJSON), &entry.Details)
		out = append(out, entry)
	}
	if s.cache != nil {
		s.cache.SetWithTTL(cacheKey, out, int64(len(out)+1), s.cacheTTL)
	}
	return out, nil
}

func (s *SQLAuditStore) Stats(ctx context.Context) (*access.AuditStats, error) {
	const cacheKey = "stats"
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			return v.(*access.AuditStats), nil
		}
	}
	stats := &access.AuditStats{TopActions: make(map[access.Action]int64)}

	if err := s.countRow(ctx, `SELECT COUNT(*) FROM audit_entries`, nil, &stats.Total); err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	if err := s.countRow(ctx,
		`SELECT COUNT(*) FROM audit_entries WHERE success = 0 AND timestamp >= :cutoff`,
		map[string]any{"cutoff": cutoff}, &stats.RecentFailures); err != nil {
		return nil, err
	}

	actionRows, err := s.db.NamedQueryContext(ctx,
		`SELECT action, COUNT(*) AS n FROM audit_entries GROUP BY action ORDER BY n DESC LIMIT :limit`,
		map[string]any{"limit": topActionLimit})
	if err != nil {
		return nil, err
	}
	defer actionRows.Close()
	for actionRows.Next() {
		var action string
		var n int64
		if err := actionRows.Scan(&action, &n); err != nil {
			return nil, err
		}
		stats.TopActions[access.Action(action)] = n
	}

	if s.cache != nil {
		s.cache.SetWithTTL(cacheKey, stats, 1, s.cacheTTL)
	}
	return stats, nil
}

func (s *SQLAuditStore) countRow(ctx context.Context, q string, params map[string]any, dest *int64) error {
	if params == nil {
		params = map[string]any{}
	}
	rows, err := s.db.NamedQueryContext(ctx, q, params)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(dest)
	}
	return nil
}

// Close releases the read cache.
func (s *SQLAuditStore) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
