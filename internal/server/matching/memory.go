package matching

import (
	"context"
	"sync"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[uint64]*MatchRequest
	order  []uint64 // request ids in insertion order
	nextID uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[uint64]*MatchRequest),
		nextID: 1,
	}
}

func cloneRequest(m *MatchRequest) *MatchRequest {
	c := *m
	c.EncryptedMessage = append([]byte(nil), m.EncryptedMessage...)
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, m *MatchRequest) (*MatchRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneRequest(m)
	stored.ID = r.nextID
	r.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.byID[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	return cloneRequest(stored), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uint64) (*MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneRequest(m), nil
}

func (r *MemoryRepository) Update(ctx context.Context, m *MatchRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; !ok {
		return common.ErrNotFound
	}
	r.byID[m.ID] = cloneRequest(m)
	return nil
}

func (r *MemoryRepository) ListByRequester(ctx context.Context, principal string) ([]*MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*MatchRequest
	for _, id := range r.order {
		m := r.byID[id]
		if m.Requester == principal {
			out = append(out, cloneRequest(m))
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListByParticipant(ctx context.Context, principal string) ([]*MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*MatchRequest
	for _, id := range r.order {
		m := r.byID[id]
		if m.IsParticipant(principal) {
			out = append(out, cloneRequest(m))
		}
	}
	return out, nil
}

func (r *MemoryRepository) CountMutual(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n uint64
	for _, m := range r.byID {
		if m.Status == StatusMutual {
			n++
		}
	}
	return n, nil
}
