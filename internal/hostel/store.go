package hostel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Repository persists the hostel document as one unit.
type Repository interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// DefaultRoomChangeFee is charged on every approved room change.
const DefaultRoomChangeFee = 50.00

// Store owns the hostel document. Every mutation runs validate, mutate and
// persist on a private copy and swaps it in only after the save succeeded.
type Store struct {
	mu   sync.RWMutex
	doc  *Document
	repo Repository

	publisher     Publisher
	logger        *slog.Logger
	now           func() time.Time
	newID         IDFunc
	roomChangeFee float64
	seed          SeedOptions
}

type Option func(*Store)

func WithPublisher(p Publisher) Option {
	return func(s *Store) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(f IDFunc) Option {
	return func(s *Store) { s.newID = f }
}

func WithRoomChangeFee(amount float64) Option {
	return func(s *Store) {
		if amount > 0 {
			s.roomChangeFee = amount
		}
	}
}

func WithSeedOptions(opts SeedOptions) Option {
	return func(s *Store) { s.seed = opts }
}

// Open loads the stored document, migrating older versions forward, or seeds
// and saves sample data when nothing is stored yet.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:          repo,
		publisher:     noopPublisher{},
		logger:        slog.Default(),
		now:           time.Now,
		newID:         newID,
		roomChangeFee: DefaultRoomChangeFee,
		seed:          DefaultSeedOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := repo.Load(ctx)
	switch {
	case errors.Is(err, ErrNoDocument):
		doc = Seed(s.seed)
		s.logger.InfoContext(ctx, "seeding hostel document",
			"rooms", len(doc.Rooms),
			"students", len(doc.Students),
		)
		if err := repo.Save(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to save seeded document: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load document: %w", err)
	default:
		from := doc.Version
		migratedDoc, migrated, err := Migrate(*doc)
		if err != nil {
			return nil, err
		}
		doc = &migratedDoc
		if migrated {
			s.logger.InfoContext(ctx, "migrated hostel document", "from", from, "to", doc.Version)
			if err := repo.Save(ctx, doc); err != nil {
				return nil, fmt.Errorf("failed to save migrated document: %w", err)
			}
		}
	}

	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("stored document is inconsistent: %w", err)
	}
	s.doc = doc.Clone()
	return s, nil
}

// update applies fn to a copy of the document and commits it. Events are
// published after the lock is released.
func (s *Store) update(ctx context.Context, fn func(doc *Document) ([]Event, error)) error {
	s.mu.Lock()
	next := s.doc.Clone()
	events, err := fn(next)

	var kept *keptError
	if err != nil && !errors.As(err, &kept) {
		s.mu.Unlock()
		return err
	}

	if saveErr := s.repo.Save(ctx, next); saveErr != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to save document: %w", saveErr)
	}
	s.doc = next
	s.mu.Unlock()

	for _, e := range events {
		if e.OccurredAt.IsZero() {
			e.OccurredAt = s.now()
		}
		if pubErr := s.publisher.Publish(ctx, e); pubErr != nil {
			s.logger.WarnContext(ctx, "failed to publish event", "type", e.Type, "error", pubErr)
		}
	}

	if kept != nil {
		return kept.err
	}
	return nil
}

func (s *Store) read(fn func(doc *Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() *Document {
	var c *Document
	s.read(func(doc *Document) { c = doc.Clone() })
	return c
}

func (s *Store) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// CurrentMonth is the billing month label for the store's clock, in UTC
// like every record date.
func (s *Store) CurrentMonth() string {
	return MonthLabel(s.now().UTC())
}
