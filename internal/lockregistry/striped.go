package lockregistry

import "sync"

// DefaultStripes is the number of locks used by NewStriped when n is not positive.
const DefaultStripes = 256

// Striped guards ids with a fixed number of locks indexed by id modulo the stripe count.
//
// Memory is bounded without any reclamation, at the cost of unrelated ids sometimes sharing
// a lock.
type Striped struct {
	stripes []sync.Mutex
}

// NewStriped returns a Striped with n locks.
func NewStriped(n int) *Striped {
	if n <= 0 {
		n = DefaultStripes
	}

	return &Striped{stripes: make([]sync.Mutex, n)}
}

func (s *Striped) index(id int64) int {
	return int(uint64(id) % uint64(len(s.stripes)))
}

// Mutex returns the stripe guarding id and its position in the acquisition order.
//
// The order is the stripe index, so two ids sharing a stripe report the same order and the
// same lock.
func (s *Striped) Mutex(id int64) (sync.Locker, int64) {
	i := s.index(id)
	return &s.stripes[i], int64(i)
}
