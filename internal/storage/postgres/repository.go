// Package postgres keeps the hostel document as a single JSONB row.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/db"
	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/uptrace/bun"
)

const (
	table        = "hostel_documents"
	defaultDocID = "hostel"
)

type documentRecord struct {
	bun.BaseModel `bun:"table:hostel_documents,alias:hd"`

	ID        string           `bun:"id,pk"`
	Version   string           `bun:"version,notnull"`
	Data      *hostel.Document `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time        `bun:"updated_at,notnull,default:current_timestamp"`
}

type Repository struct {
	db      *bun.DB
	id      string
	metrics *metrics.Metrics
}

type Option func(*Repository)

// WithDocumentID lets several hostels share one table.
func WithDocumentID(id string) Option {
	return func(r *Repository) { r.id = id }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) { r.metrics = m }
}

func NewRepository(bunDB *bun.DB, opts ...Option) *Repository {
	r := &Repository{db: bunDB, id: defaultDocID}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Migrate creates the documents table if it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	return db.CreateTables(ctx, r.db, (*documentRecord)(nil))
}

func (r *Repository) Load(ctx context.Context) (*hostel.Document, error) {
	start := time.Now()
	rec := new(documentRecord)
	err := r.db.NewSelect().Model(rec).Where("id = ?", r.id).Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", table, time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hostel.ErrNoDocument
		}
		return nil, fmt.Errorf("load document %s: %w", r.id, err)
	}
	if rec.Data == nil {
		return nil, hostel.ErrNoDocument
	}
	return rec.Data, nil
}

func (r *Repository) Save(ctx context.Context, doc *hostel.Document) error {
	start := time.Now()
	rec := &documentRecord{
		ID:        r.id,
		Version:   doc.Version,
		Data:      doc,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.db.NewInsert().
		Model(rec).
		On("CONFLICT (id) DO UPDATE").
		Set("version = EXCLUDED.version").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "upsert", table, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("save document %s: %w", r.id, err)
	}
	return nil
}

// Ping backs the readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
