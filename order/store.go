package order

import "sync"

// Store keeps the order set in memory. Each entry carries its own lock so
// transitions on one order serialize while unrelated orders proceed in
// parallel. The store-level lock guards membership only.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu sync.Mutex
	o  *Order
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Add registers a new order. The caller owns id uniqueness.
func (s *Store) Add(o Order) {
	s.mu.Lock()
	s.entries[o.ID] = &entry{o: &o}
	s.mu.Unlock()
}

// Get returns a copy of the order.
func (s *Store) Get(id string) (Order, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Order{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.o, true
}

// Update applies fn to the order under its entry lock. fn returning an
// error leaves the order untouched only if fn itself did not mutate it;
// transition functions must validate before mutating.
func (s *Store) Update(id string, fn func(*Order) error) (Order, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.o); err != nil {
		return Order{}, err
	}
	return *e.o, nil
}

// List returns copies of all orders matching filter; a nil filter matches
// everything.
func (s *Store) List(filter func(Order) bool) []Order {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]Order, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		o := *e.o
		e.mu.Unlock()
		if filter == nil || filter(o) {
			out = append(out, o)
		}
	}
	return out
}

// ActiveIDs returns the ids of all currently active orders.
func (s *Store) ActiveIDs() []string {
	active := s.List(func(o Order) bool { return o.Status == StatusActive })
	ids := make([]string, 0, len(active))
	for _, o := range active {
		ids = append(ids, o.ID)
	}
	return ids
}

// Len returns the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
