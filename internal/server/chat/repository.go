package chat

import "context"

type Repository interface {
	Create(ctx context.Context, room *Room) error
	Get(ctx context.Context, id string) (*Room, error)
	Update(ctx context.Context, room *Room) error
	AppendMessage(ctx context.Context, roomID string, m Message) error

	// Messages returns the slice [offset, offset+limit) of the room's log in
	// send order, together with the total log length.
	Messages(ctx context.Context, roomID string, offset, limit int) ([]Message, int, error)

	// ListByUser returns the rooms principal participates in, oldest first.
	ListByUser(ctx context.Context, principal string) ([]*Room, error)

	// DeactivateByUser clears IsActive on every room principal participates in.
	DeactivateByUser(ctx context.Context, principal string) error
}
