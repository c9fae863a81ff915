package jobcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/job-tracker/internal/remotive"
)

// Store persists the last full snapshot of fetched postings.
type Store interface {
	// Load returns the cached postings. A missing cache is an empty list.
	Load(ctx context.Context) (*remotive.Jobs, error)
	// Save replaces the cached snapshot.
	Save(ctx context.Context, jobs *remotive.Jobs) error
}

// FileStore keeps the snapshot as an indented JSON array on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (*remotive.Jobs, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &remotive.Jobs{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file %q: %w", s.path, err)
	}

	return decode(data)
}

func (s *FileStore) Save(_ context.Context, jobs *remotive.Jobs) error {
	data, err := encode(jobs)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache dir %q: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file %q: %w", s.path, err)
	}
	return nil
}

// RedisStore keeps the same JSON document under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore parses redisURL and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*remotive.Jobs, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &remotive.Jobs{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache key %q: %w", s.key, err)
	}

	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, jobs *remotive.Jobs) error {
	data, err := encode(jobs)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing cache key %q: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func encode(jobs *remotive.Jobs) ([]byte, error) {
	items := []*remotive.Job{}
	if jobs != nil && jobs.Items != nil {
		items = jobs.Items
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("encoding cached jobs: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (*remotive.Jobs, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &remotive.Jobs{}, nil
	}

	var items []remotive.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding cached jobs: %w", err)
	}
	jobs, err := remotive.DecodeItems(items)
	if err != nil {
		return nil, fmt.Errorf("decoding cached jobs: %w", err)
	}
	return jobs, nil
}
