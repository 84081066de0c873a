package chat

import (
	"context"
	"sync"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	order    []string // room ids in creation order
	messages map[string][]Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rooms:    make(map[string]*Room),
		messages: make(map[string][]Message),
	}
}

func cloneRoom(r *Room) *Room {
	c := *r
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, room *Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = cloneRoom(room)
	r.order = append(r.order, room.ID)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneRoom(room), nil
}

func (r *MemoryRepository) Update(ctx context.Context, room *Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.ID]; !ok {
		return common.ErrNotFound
	}
	r.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (r *MemoryRepository) AppendMessage(ctx context.Context, roomID string, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		return common.ErrNotFound
	}
	r.messages[roomID] = append(r.messages[roomID], m)
	return nil
}

func (r *MemoryRepository) Messages(ctx context.Context, roomID string, offset, limit int) ([]Message, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.rooms[roomID]; !ok {
		return nil, 0, common.ErrNotFound
	}

	log := r.messages[roomID]
	total := len(log)

	if offset < 0 || offset >= total || limit <= 0 {
		return []Message{}, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return append([]Message(nil), log[offset:end]...), total, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, principal string) ([]*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Room
	for _, id := range r.order {
		room := r.rooms[id]
		if room.HasMember(principal) {
			out = append(out, cloneRoom(room))
		}
	}
	return out, nil
}

func (r *MemoryRepository) DeactivateByUser(ctx context.Context, principal string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.HasMember(principal) {
			room.IsActive = false
		}
	}
	return nil
}
