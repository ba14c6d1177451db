package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// keyPrefix namespaces snapshot keys.
const keyPrefix = "quote-dialects:cache:"

// RedisConfig configures the snapshot store connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool

	// TTL bounds how long a snapshot is kept. Zero keeps it until replaced.
	TTL time.Duration
}

// RedisSnapshotStore implements ports.CacheSnapshotStore on Redis.
// Entries are stored as gzip-compressed JSON.
type RedisSnapshotStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSnapshotStore connects lazily; the first command dials.
func NewRedisSnapshotStore(cfg RedisConfig) *RedisSnapshotStore {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return NewRedisSnapshotStoreWithClient(redis.NewClient(opts), cfg.TTL)
}

// NewRedisSnapshotStoreWithClient wraps an existing client.
func NewRedisSnapshotStoreWithClient(client redis.UniversalClient, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

// Load implements ports.CacheSnapshotStore. A missing key yields (nil, nil).
func (s *RedisSnapshotStore) Load(ctx context.Context, category domain.Category) (*domain.CacheEntry, error) {
	val, err := s.client.Get(ctx, snapshotKey(category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s snapshot: %w", category, err)
	}

	decompressed, err := decompress(val)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s snapshot: %w", category, err)
	}
	if decompressed == nil {
		return nil, nil
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(decompressed, &entry); err != nil {
		return nil, fmt.Errorf("decoding %s snapshot: %w", category, err)
	}

	return &entry, nil
}

// Save implements ports.CacheSnapshotStore.
func (s *RedisSnapshotStore) Save(ctx context.Context, category domain.Category, entry *domain.CacheEntry) error {
	if entry.IsEmpty() {
		return nil
	}

	val, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding %s snapshot: %w", category, err)
	}

	compressed, err := compress(val)
	if err != nil {
		return fmt.Errorf("compressing %s snapshot: %w", category, err)
	}

	if err := s.client.Set(ctx, snapshotKey(category), compressed, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving %s snapshot: %w", category, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *RedisSnapshotStore) Name() string {
	return "redis"
}

// Check implements ports.HealthChecker.
func (s *RedisSnapshotStore) Check(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Critical implements ports.CriticalityReporter. Snapshots are an optimization.
func (s *RedisSnapshotStore) Critical() bool {
	return false
}

// Close releases the underlying connection pool.
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}

func snapshotKey(category domain.Category) string {
	return keyPrefix + category.String()
}

func compress(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return io.ReadAll(r)
}
