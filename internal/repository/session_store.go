package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// KVStore persists small string values for the session manager, the
// server-side counterpart of browser local storage.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu     sync.RWMutex
	ttl    time.Duration
	values map[string]memoryEntry
	now    func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryKV constructs an in-memory store. A zero ttl keeps values forever.
func NewMemoryKV(ttl time.Duration) *MemoryKV {
	return &MemoryKV{ttl: ttl, values: map[string]memoryEntry{}, now: time.Now}
}

// Get implements KVStore.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.values, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set implements KVStore.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.values[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete implements KVStore.
func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.values, key)
	}
	m.mu.Unlock()
	return nil
}

// RedisKV stores values in Redis with a TTL.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV constructs a Redis-backed store.
func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

// Get implements KVStore.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements KVStore.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements KVStore.
func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

const sessionSchema = `CREATE TABLE IF NOT EXISTS session_kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLiteKV stores values in a local SQLite table.
type SQLiteKV struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteKV constructs a SQLite-backed store. Call Migrate once at startup.
func NewSQLiteKV(db *sqlx.DB, ttl time.Duration) *SQLiteKV {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SQLiteKV{db: db, ttl: ttl, now: time.Now}
}

// Migrate creates the backing table.
func (s *SQLiteKV) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sessionSchema); err != nil {
		return fmt.Errorf("create session_kv: %w", err)
	}
	return nil
}

// Get implements KVStore.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM session_kv WHERE key = ? AND expires_at > ?`, key, s.now().Unix())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get session value %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements KVStore.
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	expires := s.now().Add(s.ttl).Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO session_kv (key, value, expires_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`, key, value, expires)
	if err != nil {
		return fmt.Errorf("set session value %s: %w", key, err)
	}
	return nil
}

// Delete implements KVStore.
func (s *SQLiteKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM session_kv WHERE key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("build session delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session values: %w", err)
	}
	return nil
}

// PurgeExpired removes expired rows and reports how many were deleted.
func (s *SQLiteKV) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_kv WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
