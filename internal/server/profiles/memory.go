package profiles

import (
	"context"
	"sync"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
)

// MemoryRepository keeps profiles in process memory. It is the canonical
// backend: the ledger substrate owns durability, the engine only needs the
// state model.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string]*Profile
	prefs  map[string]*Preferences
	nextID uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byUser: make(map[string]*Profile),
		prefs:  make(map[string]*Preferences),
		nextID: 1,
	}
}

func clone(p *Profile) *Profile {
	c := *p
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, p *Profile) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(p)
	stored.UserID = r.nextID
	r.nextID++
	if stored.RegisteredAt.IsZero() {
		stored.RegisteredAt = time.Now()
	}
	r.byUser[stored.Principal] = stored

	return clone(stored), nil
}

func (r *MemoryRepository) GetByPrincipal(ctx context.Context, principal string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUser[principal]
	if !ok {
		return nil, common.ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[p.Principal]; !ok {
		return common.ErrNotFound
	}
	r.byUser[p.Principal] = clone(p)
	return nil
}

func (r *MemoryRepository) SavePreferences(ctx context.Context, prefs *Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *prefs
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	r.prefs[prefs.Principal] = &c
	return nil
}

func (r *MemoryRepository) GetPreferences(ctx context.Context, principal string) (*Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[principal]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.byUser)), nil
}
