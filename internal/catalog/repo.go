package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lodgeportal/internal/entity"
	"lodgeportal/internal/usecase"
)

// Store implements usecase.WorkRepository on top of the CSV file.
type Store struct {
	path  string
	cache *Cache

	// mu serializes the read-assign-write path in Add so two concurrent
	// uploads cannot both compute the same next id. Writers in other
	// processes are still unguarded; see DESIGN.md.
	mu sync.Mutex
}

func NewStore(path string, cache *Cache) *Store {
	return &Store{path: path, cache: cache}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// All returns every catalog row through the cache. A malformed backing
// file surfaces as usecase.ErrCatalogUnreadable with an empty table.
func (s *Store) All(ctx context.Context) ([]entity.Work, error) {
	rows, err := s.cache.Load(s.path)
	if errors.Is(err, ErrMalformedCatalog) {
		return rows, fmt.Errorf("%w: %v", usecase.ErrCatalogUnreadable, err)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Add re-reads the file fresh (not through the cache), assigns the next
// id, persists atomically and invalidates the cache. If the backing file
// is malformed the append is refused outright: appending onto the empty
// fallback table would atomically replace, and so destroy, the source.
func (s *Store) Add(ctx context.Context, w entity.Work) (entity.Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := Load(s.path)
	if errors.Is(err, ErrMalformedCatalog) {
		return entity.Work{}, fmt.Errorf("%w: refusing append: %v", usecase.ErrCatalogUnreadable, err)
	}
	if err != nil {
		return entity.Work{}, err
	}
	rows, stored := Append(rows, w)
	if err := Persist(rows, s.path); err != nil {
		return entity.Work{}, err
	}
	s.cache.Invalidate(s.path)
	return stored, nil
}
