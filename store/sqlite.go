package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db        *sql.DB
	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var _ Store = (*sqliteStore)(nil)

// NewSQLite returns a Store backed by a SQLite database using
// modernc.org/sqlite (pure Go, no CGO). Values are serialized to msgpack and
// stored as BLOBs. If dbPath is empty or ":memory:", an in-memory database
// is used. An expires_at of 0 marks a permanently retained entry.
//
// Like the Redis backend, this store does not implement [TagStore].
func NewSQLite(parent context.Context, dbPath string, opts ...Option) (Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS store (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_store_expires_at ON store(expires_at)`); err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	s := &sqliteStore{
		db:     db,
		ctx:    ctx,
		cancel: cancel,
		cfg:    applyOptions(opts),
	}
	s.waitGroup.Add(1)
	go s.run()
	return s, nil
}

func (s *sqliteStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *sqliteStore) Get(ctx context.Context, key string) (bool, any, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	now := time.Now().UnixNano()
	var data []byte
	var expiresAt int64
	err := s.db.QueryRowContext(qctx,
		`SELECT value, expires_at FROM store WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	if expiresAt != 0 && expiresAt < now {
		// Lazily delete expired entry.
		_, _ = s.db.ExecContext(qctx, `DELETE FROM store WHERE key = ?`, key)
		return false, nil, nil
	}
	return true, data, nil
}

func (s *sqliteStore) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return err
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	_, err = s.db.ExecContext(qctx,
		`INSERT INTO store (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, data, expiresAt,
	)
	return err
}

func (s *sqliteStore) Has(ctx context.Context, key string) (bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	now := time.Now().UnixNano()
	var n int
	err := s.db.QueryRowContext(qctx,
		`SELECT COUNT(1) FROM store WHERE key = ? AND (expires_at = 0 OR expires_at >= ?)`,
		key, now,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqliteStore) Forget(ctx context.Context, key string) (bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	result, err := s.db.ExecContext(qctx, `DELETE FROM store WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *sqliteStore) DeleteMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if _, err := s.Forget(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, error) {
	found, val, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return val, nil
	}
	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, key, result, ttl); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sqliteStore) Close() error {
	var dbErr error
	s.once.Do(func() {
		s.cancel()
		s.waitGroup.Wait()
		dbErr = s.db.Close()
	})
	return dbErr
}

func (s *sqliteStore) run() {
	defer s.waitGroup.Done()
	ticker := time.NewTicker(s.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			_, _ = s.db.Exec(`DELETE FROM store WHERE expires_at != 0 AND expires_at < ?`, now)
		}
	}
}
