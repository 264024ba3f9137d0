package stores

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oarkflow/squealx"
	_ "modernc.org/sqlite"

	"github.com/swifthaul/access"
)

// OpenAuditStore builds the audit store a config names. The returned closer
// releases the underlying resources and is safe to call on all drivers.
func OpenAuditStore(cfg *access.Config) (access.AuditStore, func() error, error) {
	switch cfg.Audit.Driver {
	case "", "memory":
		return access.NewMemoryAuditStore(), func() error { return nil }, nil
	case "sqlite":
		sqlDB, err := sql.Open("sqlite", cfg.Audit.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		db := squealx.NewDb(sqlDB, "sqlite", "audit")
		if err := Migrate(db); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		var opts []SQLAuditOption
		if cfg.Audit.CacheTTL > 0 {
			opts = append(opts, WithReadCache(
				cfg.Audit.CacheCounters,
				cfg.Audit.CacheMaxCost,
				time.Duration(cfg.Audit.CacheTTL)*time.Millisecond))
		}
		store, err := NewSQLAuditStore(db, opts...)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		closer := func() error {
			store.Close()
			return sqlDB.Close()
		}
		return store, closer, nil
	default:
		return nil, nil, fmt.Errorf("unknown audit driver %q", cfg.Audit.Driver)
	}
}
