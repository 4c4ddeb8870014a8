package checkpoint

import (
	"github.com/copyleftdev/TREMOR/internal/errors"
)

// MemStore keeps checkpoints in memory. Used in tests and for small grids
// where the I/O trade is not worth taking.
type MemStore struct {
	fields map[string][]float64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{fields: make(map[string][]float64)}
}

// Save implements Store.
func (s *MemStore) Save(key string, field []float64) error {
	cp := make([]float64, len(field))
	copy(cp, field)
	s.fields[key] = cp
	return nil
}

// Load implements Store.
func (s *MemStore) Load(key string, dst []float64) error {
	field, ok := s.fields[key]
	if !ok {
		return errors.Errorf("no checkpoint %s", key).WithComponent("checkpoint")
	}
	copy(dst, field)
	return nil
}
