package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
)

// Repository keeps the encoded document in process memory. It is the
// default for local runs and the backing store of most tests.
type Repository struct {
	mu   sync.Mutex
	data []byte
}

func NewRepository() *Repository {
	return &Repository{}
}

// NewRepositoryWith starts the repository with doc already stored.
func NewRepositoryWith(doc *hostel.Document) (*Repository, error) {
	r := &Repository{}
	if err := r.Save(context.Background(), doc); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) Load(ctx context.Context) (*hostel.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == nil {
		return nil, hostel.ErrNoDocument
	}
	var doc hostel.Document
	if err := json.Unmarshal(r.data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) Save(ctx context.Context, doc *hostel.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}
