// Package redis keeps the hostel document as one JSON value under a key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/config"
	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "hostel:document"

type Repository struct {
	client  *redis.Client
	key     string
	metrics *metrics.Metrics
}

func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewRepository(client *redis.Client, key string, m *metrics.Metrics) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{client: client, key: key, metrics: m}
}

func (r *Repository) Load(ctx context.Context) (*hostel.Document, error) {
	start := time.Now()
	raw, err := r.client.Get(ctx, r.key).Bytes()

	r.metrics.RecordQuery(ctx, "get", r.key, time.Since(start), ignoreNil(err))

	if errors.Is(err, redis.Nil) {
		return nil, hostel.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.key, err)
	}

	var doc hostel.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return &doc, nil
}

func (r *Repository) Save(ctx context.Context, doc *hostel.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	start := time.Now()
	err = r.client.Set(ctx, r.key, raw, 0).Err()

	r.metrics.RecordQuery(ctx, "set", r.key, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("save %s: %w", r.key, err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func ignoreNil(err error) error {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
