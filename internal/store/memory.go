package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/astrocall/callgate/internal/domain"
)

// Memory bundles map-backed stores for tests and the "memory" storage
// mode. Values are copied on the way in and out so callers never alias
// store state.
type Memory struct {
	Sessions    *MemorySessions
	Astrologers *MemoryAstrologers
	Reviews     *MemoryReviews
}

func NewMemory() *Memory {
	return &Memory{
		Sessions:    &MemorySessions{byID: make(map[string]domain.Session)},
		Astrologers: &MemoryAstrologers{byID: make(map[domain.UserID]domain.Astrologer)},
		Reviews:     &MemoryReviews{byID: make(map[string]domain.Review)},
	}
}

type MemorySessions struct {
	mu   sync.RWMutex
	byID map[string]domain.Session
}

func (m *MemorySessions) Create(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = *s
	return nil
}

func (m *MemorySessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemorySessions) Update(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[s.ID]; !ok {
		return ErrNotFound
	}
	m.byID[s.ID] = *s
	return nil
}

func (m *MemorySessions) ListByParticipant(ctx context.Context, id domain.UserID) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Session, 0)
	for _, s := range m.byID {
		if s.UserID == id || s.AstroID == id {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type MemoryAstrologers struct {
	mu   sync.RWMutex
	byID map[domain.UserID]domain.Astrologer
}

func (m *MemoryAstrologers) Upsert(ctx context.Context, a *domain.Astrologer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[a.ID] = *a
	return nil
}

func (m *MemoryAstrologers) Get(ctx context.Context, id domain.UserID) (*domain.Astrologer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryAstrologers) ListOnline(ctx context.Context) ([]*domain.Astrologer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Astrologer, 0)
	for _, a := range m.byID {
		if a.IsOnline {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryAstrologers) SetPresence(ctx context.Context, id domain.UserID, online bool, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.IsOnline = online
	a.UpdatedAt = now
	m.byID[id] = a
	return nil
}

type MemoryReviews struct {
	mu   sync.RWMutex
	byID map[string]domain.Review
}

func (m *MemoryReviews) Create(ctx context.Context, r *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.ID] = *r
	return nil
}

func (m *MemoryReviews) ListByAstrologer(ctx context.Context, id domain.UserID) ([]*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Review, 0)
	for _, r := range m.byID {
		if r.AstroID == id {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
