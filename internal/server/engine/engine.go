// Package engine is the single entry point the transport layer talks to. It
// composes the profile, matching, chat and reveal services and serializes
// every public operation behind one mutex, so callers never observe a
// half-applied state transition.
package engine

import (
	"context"
	"sync"

	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/server/chat"
	"github.com/LondonVandervort/PrivacyDating/internal/server/matching"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
	"github.com/LondonVandervort/PrivacyDating/internal/server/reveal"
)

// Stats is the public platform counter snapshot.
type Stats struct {
	TotalUsers    uint64 `json:"total_users"`
	MutualMatches uint64 `json:"mutual_matches"`
}

type Engine struct {
	mu       sync.Mutex
	profiles *profiles.Service
	matches  *matching.Service
	chats    *chat.Service
	reveals  *reveal.Coordinator
	tx       dbx.Transactor
}

func New(p *profiles.Service, m *matching.Service, c *chat.Service, r *reveal.Coordinator, tx dbx.Transactor) *Engine {
	return &Engine{profiles: p, matches: m, chats: c, reveals: r, tx: tx}
}

func (e *Engine) Register(ctx context.Context, principal string, age, location, interests, personality uint8, bio string) (*profiles.Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profiles.Register(ctx, principal, age, location, interests, personality, bio)
}

func (e *Engine) UpdateBio(ctx context.Context, principal, bio string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profiles.UpdateBio(ctx, principal, bio)
}

func (e *Engine) SetLookingForMatch(ctx context.Context, principal string, looking bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profiles.SetLookingForMatch(ctx, principal, looking)
}

func (e *Engine) SetPreferences(ctx context.Context, principal string, minAge, maxAge, preferredLocation uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profiles.SetPreferences(ctx, principal, minAge, maxAge, preferredLocation)
}

func (e *Engine) GetPreferences(ctx context.Context, principal string) (*profiles.Preferences, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profiles.GetPreferences(ctx, principal)
}

func (e *Engine) GetPublicProfile(ctx context.Context, principal string) (*profiles.PublicProfile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profiles.GetPublicProfile(ctx, principal)
}

// Deactivate soft-deletes the caller's profile and closes their rooms for
// writing. Message history stays readable. Both writes commit as one
// transaction so a failure never leaves the profile down with rooms open.
func (e *Engine) Deactivate(ctx context.Context, principal string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tx.InTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := e.profiles.Deactivate(ctx, db, principal); err != nil {
			return err
		}
		return e.chats.DeactivateUserRooms(ctx, db, principal)
	})
}

// AdminDeactivate is the moderation variant of Deactivate; authorization is
// the transport layer's problem, the semantics are identical.
func (e *Engine) AdminDeactivate(ctx context.Context, principal string) error {
	return e.Deactivate(ctx, principal)
}

func (e *Engine) RequestMatch(ctx context.Context, requester, target string, encryptedMessage []byte) (*matching.MatchRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches.RequestMatch(ctx, requester, target, encryptedMessage)
}

func (e *Engine) RejectMatch(ctx context.Context, caller string, matchID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches.RejectMatch(ctx, caller, matchID)
}

func (e *Engine) AcceptMatch(ctx context.Context, caller string, matchID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches.AcceptMatch(ctx, caller, matchID)
}

func (e *Engine) GetMyMatches(ctx context.Context, caller string) ([]*matching.MatchRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches.GetMyMatches(ctx, caller)
}

func (e *Engine) GetMatchDetails(ctx context.Context, caller string, matchID uint64) (*matching.MatchRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches.GetMatchDetails(ctx, caller, matchID)
}

func (e *Engine) SendMessage(ctx context.Context, principal, roomID string, blob []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chats.SendMessage(ctx, principal, roomID, blob)
}

func (e *Engine) GetMessages(ctx context.Context, principal, roomID string, offset, limit int) ([]chat.Message, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chats.GetMessages(ctx, principal, roomID, offset, limit)
}

func (e *Engine) GetUserChats(ctx context.Context, principal string) ([]*chat.Room, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chats.GetUserChats(ctx, principal)
}

// OnRevealed forwards a co-processor decryption callback into the reveal
// coordinator, serialized against the rest of the engine.
func (e *Engine) OnRevealed(ctx context.Context, matchID uint64, value uint8, proof []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reveals.OnRevealed(ctx, matchID, value, proof)
}

func (e *Engine) GetPlatformStats(ctx context.Context) (*Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.profiles.Count(ctx)
	if err != nil {
		return nil, err
	}
	mutual, err := e.matches.CountMutual(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{TotalUsers: users, MutualMatches: mutual}, nil
}
