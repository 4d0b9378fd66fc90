package schedule

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps everything in process. With demo enabled an owner seen for
// the first time starts with DemoEvents.
type MemoryStore struct {
	mu        sync.RWMutex
	catalog   Catalog
	events    map[string][]Event
	workHours map[string]WorkHours
	demo      bool
	now       func() time.Time
}

func NewMemoryStore(catalog Catalog, demo bool) *MemoryStore {
	return &MemoryStore{
		catalog:   catalog,
		events:    make(map[string][]Event),
		workHours: make(map[string]WorkHours),
		demo:      demo,
		now:       time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) LoadEvents(ctx context.Context, ownerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, ok := s.events[ownerID]
	if !ok && s.demo {
		events = DemoEvents(s.now())
		s.events[ownerID] = events
	}

	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.clone()
	}
	return out, nil
}

func (s *MemoryStore) UpsertEvent(ctx context.Context, ownerID string, e Event) error {
	if e.ID.IsDraft() {
		return ErrInvalidEventID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.events[ownerID]
	for i := range events {
		if events[i].ID == e.ID {
			events[i] = e.clone()
			return nil
		}
	}
	s.events[ownerID] = append(events, e.clone())
	return nil
}

func (s *MemoryStore) DeleteEvent(ctx context.Context, ownerID string, id EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.events[ownerID]
	for i := range events {
		if events[i].ID == id {
			s.events[ownerID] = append(events[:i], events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) LoadWorkHours(ctx context.Context, ownerID string) (WorkHours, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wh, ok := s.workHours[ownerID]
	return wh.clone(), ok, nil
}

func (s *MemoryStore) SaveWorkHours(ctx context.Context, ownerID string, wh WorkHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workHours[ownerID] = wh.clone()
	return nil
}

func (s *MemoryStore) Catalog(ctx context.Context) (Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, nil
}
