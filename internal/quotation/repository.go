package quotation

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound         = errors.New("quotation not found")
	ErrDuplicateQuoteID = errors.New("quote id already exists")
)

// Repository is the authoritative quotation store.
type Repository interface {
	Create(ctx context.Context, q Quotation) error
	Get(ctx context.Context, quoteID string) (*Quotation, error)
	List(ctx context.Context) ([]Quotation, error)
}

// MemoryRepository keeps quotations in process.
type MemoryRepository struct {
	mu     sync.RWMutex
	quotes map[string]Quotation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{quotes: map[string]Quotation{}}
}

func (m *MemoryRepository) Create(_ context.Context, q Quotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.quotes[q.QuoteID]; exists {
		return ErrDuplicateQuoteID
	}
	m.quotes[q.QuoteID] = q
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, quoteID string) (*Quotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[quoteID]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

// List returns every quotation, newest first.
func (m *MemoryRepository) List(_ context.Context) ([]Quotation, error) {
	m.mu.RLock()
	out := make([]Quotation, 0, len(m.quotes))
	for _, q := range m.quotes {
		out = append(out, q)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].QuoteID > out[j].QuoteID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
