package chat

import "time"

// Room is the messaging channel created for one mutual match. The id is
// derived deterministically from the pair and the creation time, so two
// rooms can never collide.
type Room struct {
	ID        string
	UserA     string
	UserB     string
	CreatedAt time.Time
	IsActive  bool
}

// Message is one entry of a room's append-only log. Blob is opaque to the
// engine: participants exchange client-encrypted payloads.
type Message struct {
	Sender string    `json:"sender"`
	Blob   []byte    `json:"blob"`
	SentAt time.Time `json:"sent_at"`
}

// HasMember reports whether principal participates in the room.
func (r *Room) HasMember(principal string) bool {
	return principal == r.UserA || principal == r.UserB
}
