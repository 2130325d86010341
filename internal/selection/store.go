// Package selection owns the user's working set of chosen products.
//
// The set is ordered by insertion and unique by product id. Every mutation is
// mirrored synchronously to durable storage under StorageKey, and Load
// rehydrates the set from that slot at startup.
package selection

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/regimen/internal/catalog"
	"github.com/hpungsan/regimen/internal/errors"
	"github.com/hpungsan/regimen/internal/logging"
)

// StorageKey is the durable slot holding the JSON-serialized set.
const StorageKey = "selectedProducts"

// Storage is a durable key-value slot store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Store is the ordered, id-deduplicated Selection Set.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	logger   *zap.Logger
	products []catalog.Product
}

// Load reads the persisted set. Missing, unreadable or malformed data yields an
// empty set; the problem is logged but never returned.
func Load(ctx context.Context, storage Storage, logger *zap.Logger) *Store {
	s := &Store{
		storage:  storage,
		logger:   logging.OrNop(logger),
		products: []catalog.Product{},
	}

	raw, ok, err := storage.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("selection: read failed, starting empty", zap.Error(err))
		return s
	}
	if !ok {
		return s
	}

	var stored []catalog.Product
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("selection: malformed persisted state, starting empty", zap.Error(err))
		return s
	}

	// Hand-edited or legacy data may repeat ids; keep the first occurrence.
	for _, p := range stored {
		if !s.containsLocked(p.ID) {
			s.products = append(s.products, p)
		}
	}
	return s
}

// Toggle removes the product if its id is present, otherwise appends it.
// Returns whether the product is selected afterwards.
func (s *Store) Toggle(ctx context.Context, p catalog.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.products)
	s.products = slices.DeleteFunc(s.products, func(q catalog.Product) bool { return q.ID == p.ID })
	selected := len(s.products) == before
	if selected {
		s.products = append(s.products, p)
	}

	return selected, s.persistLocked(ctx)
}

// RemoveAt deletes the element at position. Out of range positions leave the
// set untouched, skip persistence and report false.
func (s *Store) RemoveAt(ctx context.Context, position int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 || position >= len(s.products) {
		return false, nil
	}
	s.products = slices.Delete(s.products, position, position+1)
	return true, s.persistLocked(ctx)
}

// Clear empties the set.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = []catalog.Product{}
	return s.persistLocked(ctx)
}

// Products returns a copy of the set in insertion order.
func (s *Store) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

// Contains reports whether a product with id is selected.
func (s *Store) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containsLocked(id)
}

// Len returns the number of selected products.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

func (s *Store) containsLocked(id int) bool {
	return slices.ContainsFunc(s.products, func(p catalog.Product) bool { return p.ID == id })
}

// persistLocked writes the whole set. The in-memory mutation stands even if the write fails.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.products)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.storage.Put(ctx, StorageKey, string(data)); err != nil {
		s.logger.Error("selection: persist failed", zap.Error(err))
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.NewInternal(err)
	}
	return nil
}
