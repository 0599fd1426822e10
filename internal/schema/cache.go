package schema

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds how long a source may take to load.
const DefaultTimeout = 10 * time.Second

// Cache loads a snapshot at most once per run and serves it to concurrent
// readers. A source that fails to load yields an empty snapshot, so checks
// that depend on it report nothing.
type Cache struct {
	source  Source
	timeout time.Duration
	logger  *zap.Logger

	once     sync.Once
	snapshot *Snapshot
}

// NewCache returns a cache over source. A nil source yields an empty snapshot.
func NewCache(source Source, timeout time.Duration, logger *zap.Logger) *Cache {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cache{source: source, timeout: timeout, logger: logger}
}

// Snapshot returns the cached snapshot, loading it on first use.
func (c *Cache) Snapshot(ctx context.Context) *Snapshot {
	c.once.Do(func() {
		c.snapshot = c.load(ctx)
	})

	return c.snapshot
}

func (c *Cache) load(ctx context.Context) *Snapshot {
	if c.source == nil {
		return Empty()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	start := time.Now()

	s, err := c.source.Load(ctx)
	if err != nil {
		c.logger.Info("schema unavailable, checks that need it are skipped",
			zap.Stringer("source", c.source),
			zap.Error(err),
		)

		return Empty()
	}

	c.logger.Debug("schema loaded",
		zap.Stringer("source", c.source),
		zap.Int("tables", s.Len()),
		zap.Duration("took", time.Since(start)),
	)

	return s
}
