package todo

import "sync"

// Item is one entry in the agent's working checklist.
type Item struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Store holds the current checklist for a session. The model replaces the
// whole list on every todo call, so updates are snapshots, not deltas.
type Store struct {
	mu    sync.Mutex
	items []Item
}

func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a new snapshot and returns a copy of it.
func (s *Store) Replace(items []Item) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Item(nil), items...)
	return append([]Item(nil), s.items...)
}

// List returns a copy of the current snapshot.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}
