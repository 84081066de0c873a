// Package matching implements the match-request registry, the homomorphic
// compatibility calculator, and the mutual-match detector.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/LondonVandervort/PrivacyDating/internal/server/chat"
	"github.com/LondonVandervort/PrivacyDating/internal/server/events"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
)

// RoomCreator opens the chat channel for a detected mutual match, binding
// the room insert to the detector's transaction handle.
type RoomCreator interface {
	CreateRoom(ctx context.Context, db dbx.DBTX, userA, userB string) (*chat.Room, error)
}

// Revealer submits an accepted match's encrypted score for asynchronous
// decryption.
type Revealer interface {
	Submit(ctx context.Context, matchID uint64, score fhe.Handle) error
}

// Repos vends the repositories the service binds to a database handle. The
// repository manager satisfies it.
type Repos interface {
	Matches(db dbx.DBTX) Repository
	Profiles(db dbx.DBTX) profiles.Repository
}

type Service struct {
	db       dbx.DBTX
	tx       dbx.Transactor
	repos    Repos
	cop      fhe.Coprocessor
	rooms    RoomCreator
	revealer Revealer
	events   events.Publisher
}

func NewService(db dbx.DBTX, tx dbx.Transactor, repos Repos, cop fhe.Coprocessor, rooms RoomCreator, rev Revealer, pub events.Publisher) *Service {
	return &Service{
		db:       db,
		tx:       tx,
		repos:    repos,
		cop:      cop,
		rooms:    rooms,
		revealer: rev,
		events:   pub,
	}
}

// RequestMatch computes the encrypted compatibility score, registers a
// Pending request, then runs mutual-match detection against the target's
// outstanding requests. The write set (the insert plus any mutual flip and
// room creation) commits as one transaction; a failure leaves no record.
func (s *Service) RequestMatch(ctx context.Context, requester, target string, encryptedMessage []byte) (*MatchRequest, error) {

	if requester == target {
		return nil, common.ErrSelfMatch
	}

	profileRepo := s.repos.Profiles(s.db)

	reqProfile, err := profileRepo.GetByPrincipal(ctx, requester)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotRegistered
		}
		return nil, fmt.Errorf("loading requester profile: %w", err)
	}

	tgtProfile, err := profileRepo.GetByPrincipal(ctx, target)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotRegistered
		}
		return nil, fmt.Errorf("loading target profile: %w", err)
	}
	if !tgtProfile.IsActive || !tgtProfile.IsLookingForMatch {
		return nil, common.ErrTargetUnavailable
	}

	score, err := ComputeScore(ctx, s.cop, reqProfile, tgtProfile)
	if err != nil {
		return nil, fmt.Errorf("computing score: %w", err)
	}

	// Both parties may later request decryption of the score.
	if err := s.cop.Grant(ctx, score, fhe.Principal(requester)); err != nil {
		return nil, fmt.Errorf("granting requester: %w", err)
	}
	if err := s.cop.Grant(ctx, score, fhe.Principal(target)); err != nil {
		return nil, fmt.Errorf("granting target: %w", err)
	}

	req := &MatchRequest{
		Requester:        requester,
		Target:           target,
		EncryptedScore:   score,
		EncryptedMessage: encryptedMessage,
		Status:           StatusPending,
		CreatedAt:        time.Now(),
	}

	var (
		reciprocal *MatchRequest
		room       *chat.Room
	)
	err = s.tx.InTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		matches := s.repos.Matches(db)

		var err error
		req, err = matches.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("storing request: %w", err)
		}

		reciprocal, room, err = s.detectMutual(ctx, db, matches, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.Event{
		Name: events.MatchRequested,
		At:   req.CreatedAt,
		Fields: map[string]any{
			"match_id":  req.ID,
			"requester": requester,
			"target":    target,
		},
	})

	if reciprocal != nil {
		s.events.Publish(ctx, events.Event{
			Name: events.MutualMatchFound,
			At:   time.Now(),
			Fields: map[string]any{
				"match_id": reciprocal.ID,
				"room_id":  room.ID,
				"user_a":   reciprocal.Requester,
				"user_b":   reciprocal.Target,
			},
		})
	}

	return req, nil
}

// detectMutual scans the target's own outstanding requests for a reciprocal
// Pending entry. The first one in insertion order wins and is the record
// flipped to Mutual; the triggering request stays Pending. A previously
// Rejected reciprocal never becomes Mutual. Runs on the caller's transaction
// handle; the flipped record and its room are reported back for event
// emission after commit.
func (s *Service) detectMutual(ctx context.Context, db dbx.DBTX, matches Repository, trigger *MatchRequest) (*MatchRequest, *chat.Room, error) {
	outstanding, err := matches.ListByRequester(ctx, trigger.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning for reciprocal request: %w", err)
	}

	var reciprocal *MatchRequest
	for _, m := range outstanding {
		if m.Target == trigger.Requester && m.Status == StatusPending {
			reciprocal = m
			break
		}
	}
	if reciprocal == nil {
		return nil, nil, nil
	}

	reciprocal.Status = StatusMutual
	if err := matches.Update(ctx, reciprocal); err != nil {
		return nil, nil, fmt.Errorf("marking request mutual: %w", err)
	}

	room, err := s.rooms.CreateRoom(ctx, db, reciprocal.Requester, reciprocal.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("creating chat room: %w", err)
	}

	return reciprocal, room, nil
}

// RejectMatch lets the addressed target reject a still-Pending request.
// Rejection is terminal: a later reciprocal request will not revive it.
func (s *Service) RejectMatch(ctx context.Context, caller string, matchID uint64) error {
	matches := s.repos.Matches(s.db)
	m, err := matches.Get(ctx, matchID)
	if err != nil {
		return err
	}

	if caller != m.Target {
		return common.ErrUnauthorized
	}
	if m.Status != StatusPending {
		return common.ErrAlreadyProcessed
	}

	m.Status = StatusRejected
	if err := matches.Update(ctx, m); err != nil {
		return fmt.Errorf("rejecting request: %w", err)
	}
	return nil
}

// AcceptMatch lets either participant accept a Mutual match exactly once.
// Acceptance triggers the asynchronous score reveal.
func (s *Service) AcceptMatch(ctx context.Context, caller string, matchID uint64) error {
	matches := s.repos.Matches(s.db)
	m, err := matches.Get(ctx, matchID)
	if err != nil {
		return err
	}

	if !m.IsParticipant(caller) {
		return common.ErrUnauthorized
	}
	if m.Status != StatusMutual || m.IsAccepted {
		return common.ErrAlreadyProcessed
	}

	m.IsAccepted = true
	m.AcceptedBy = caller
	if err := matches.Update(ctx, m); err != nil {
		return fmt.Errorf("accepting match: %w", err)
	}

	if err := s.revealer.Submit(ctx, m.ID, m.EncryptedScore); err != nil {
		return fmt.Errorf("submitting reveal: %w", err)
	}
	return nil
}

// GetMyMatches returns every request the caller participates in.
func (s *Service) GetMyMatches(ctx context.Context, caller string) ([]*MatchRequest, error) {
	return s.repos.Matches(s.db).ListByParticipant(ctx, caller)
}

// GetMatchDetails returns one request, participants only.
func (s *Service) GetMatchDetails(ctx context.Context, caller string, matchID uint64) (*MatchRequest, error) {
	m, err := s.repos.Matches(s.db).Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(caller) {
		return nil, common.ErrUnauthorized
	}
	return m, nil
}

// CountMutual returns the number of mutual matches on the platform.
func (s *Service) CountMutual(ctx context.Context) (uint64, error) {
	return s.repos.Matches(s.db).CountMutual(ctx)
}
