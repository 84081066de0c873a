// Package chat manages the messaging channels created for mutual matches:
// room creation, membership-gated message append, and bounded reads.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/server/events"
	"github.com/google/uuid"
)

// MaxMessageSize caps a single message blob.
const MaxMessageSize = 1000

// roomNamespace seeds the deterministic room id derivation.
var roomNamespace = uuid.MustParse("7d5c2f41-9b1e-4f7a-8c3d-2a6e9b0f4d18")

// Repos vends a Repository bound to a database handle. The repository
// manager satisfies it.
type Repos interface {
	Rooms(db dbx.DBTX) Repository
}

type Service struct {
	db     dbx.DBTX
	repos  Repos
	events events.Publisher
}

func NewService(db dbx.DBTX, repos Repos, pub events.Publisher) *Service {
	return &Service{db: db, repos: repos, events: pub}
}

// CreateRoom opens the channel for a freshly detected mutual match. Only the
// mutual-match detector calls this; it is not a public entry point. The room
// insert binds to db so it commits or rolls back with the detector's other
// writes.
func (s *Service) CreateRoom(ctx context.Context, db dbx.DBTX, userA, userB string) (*Room, error) {
	now := time.Now()

	seed := fmt.Sprintf("%s|%s|%d", userA, userB, now.UnixNano())
	room := &Room{
		ID:        uuid.NewSHA1(roomNamespace, []byte(seed)).String(),
		UserA:     userA,
		UserB:     userB,
		CreatedAt: now,
		IsActive:  true,
	}

	if err := s.repos.Rooms(db).Create(ctx, room); err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}

	s.events.Publish(ctx, events.Event{
		Name: events.ChatRoomCreated,
		At:   now,
		Fields: map[string]any{
			"room_id": room.ID,
			"user_a":  userA,
			"user_b":  userB,
		},
	})

	return room, nil
}

func (s *Service) getMemberRoom(ctx context.Context, principal, roomID string) (*Room, error) {
	room, err := s.repos.Rooms(s.db).Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("loading room: %w", err)
	}

	if !room.HasMember(principal) {
		return nil, common.ErrUnauthorized
	}
	return room, nil
}

// SendMessage appends an opaque blob to the room log.
func (s *Service) SendMessage(ctx context.Context, principal, roomID string, blob []byte) error {
	room, err := s.getMemberRoom(ctx, principal, roomID)
	if err != nil {
		return err
	}

	if !room.IsActive {
		return common.ErrRoomInactive
	}
	if len(blob) == 0 || len(blob) > MaxMessageSize {
		return common.ErrInvalidAttribute
	}

	m := Message{Sender: principal, Blob: blob, SentAt: time.Now()}
	if err := s.repos.Rooms(s.db).AppendMessage(ctx, roomID, m); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}

	s.events.Publish(ctx, events.Event{
		Name: events.MessageSent,
		At:   m.SentAt,
		Fields: map[string]any{
			"room_id": roomID,
			"sender":  principal,
		},
	})

	return nil
}

// GetMessages returns a bounded slice of the log in send order. Requests
// past the end of the log yield an empty slice, not an error.
func (s *Service) GetMessages(ctx context.Context, principal, roomID string, offset, limit int) ([]Message, int, error) {
	if _, err := s.getMemberRoom(ctx, principal, roomID); err != nil {
		return nil, 0, err
	}
	return s.repos.Rooms(s.db).Messages(ctx, roomID, offset, limit)
}

// GetUserChats lists the caller's rooms, oldest first.
func (s *Service) GetUserChats(ctx context.Context, principal string) ([]*Room, error) {
	return s.repos.Rooms(s.db).ListByUser(ctx, principal)
}

// DeactivateUserRooms is invoked when a participant deactivates their
// profile. Message history stays readable. It binds to db so the engine can
// run it and the profile update in one transaction.
func (s *Service) DeactivateUserRooms(ctx context.Context, db dbx.DBTX, principal string) error {
	return s.repos.Rooms(db).DeactivateByUser(ctx, principal)
}
