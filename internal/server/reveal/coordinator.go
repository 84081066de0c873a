// Package reveal orchestrates the asynchronous decryption of accepted
// matches' scores. Submission and the co-processor's callback are separate
// calls connected by a pending table keyed on the match id; a callback may
// arrive arbitrarily late or never, and its absence is not an error.
package reveal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/LondonVandervort/PrivacyDating/internal/server/events"
	"github.com/LondonVandervort/PrivacyDating/internal/server/matching"
)

type Coordinator struct {
	mu      sync.Mutex
	cop     fhe.Coprocessor
	matches matching.Repository
	events  events.Publisher
	pending map[uint64]fhe.Handle
}

func NewCoordinator(cop fhe.Coprocessor, matches matching.Repository, pub events.Publisher) *Coordinator {
	return &Coordinator{
		cop:     cop,
		matches: matches,
		events:  pub,
		pending: make(map[uint64]fhe.Handle),
	}
}

// Submit records the pending reveal and asks the co-processor for
// asynchronous decryption, correlated by the match id.
func (c *Coordinator) Submit(ctx context.Context, matchID uint64, score fhe.Handle) error {
	c.mu.Lock()
	c.pending[matchID] = score
	c.mu.Unlock()

	if err := c.cop.RequestReveal(ctx, score, matchID); err != nil {
		return fmt.Errorf("requesting reveal: %w", err)
	}
	return nil
}

// Pending reports whether a reveal for matchID was submitted and has not
// completed yet.
func (c *Coordinator) Pending(matchID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[matchID]
	return ok
}

// OnRevealed handles the co-processor's callback. Results with a bad proof
// are discarded with ErrInvalidRevealProof; duplicate callbacks for an
// already revealed match are idempotent no-ops.
func (c *Coordinator) OnRevealed(ctx context.Context, matchID uint64, value uint8, proof []byte) error {
	if !c.cop.VerifyRevealProof(matchID, value, proof) {
		return common.ErrInvalidRevealProof
	}

	m, err := c.matches.Get(ctx, matchID)
	if err != nil {
		return err
	}
	if m.IsRevealed {
		return nil
	}

	m.PublicScore = value
	m.IsRevealed = true
	if err := c.matches.Update(ctx, m); err != nil {
		return fmt.Errorf("storing revealed score: %w", err)
	}

	c.mu.Lock()
	delete(c.pending, matchID)
	c.mu.Unlock()

	c.events.Publish(ctx, events.Event{
		Name: events.CompatibilityRevealed,
		At:   time.Now(),
		Fields: map[string]any{
			"match_id": matchID,
			"score":    value,
		},
	})

	return nil
}
