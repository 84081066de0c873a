package fhe

import (
	"context"
	"sync"
	"testing"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

type testACL struct {
	mu     sync.Mutex
	grants map[Handle]map[Principal]struct{}
}

func newTestACL() *testACL {
	return &testACL{grants: make(map[Handle]map[Principal]struct{})}
}

func (a *testACL) Grant(h Handle, p Principal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.grants[h] == nil {
		a.grants[h] = make(map[Principal]struct{})
	}
	a.grants[h][p] = struct{}{}
}

func (a *testACL) Allowed(h Handle, p Principal) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.grants[h][p]
	return ok
}

func newMock(t *testing.T) (*MockCoprocessor, *testACL) {
	t.Helper()
	acl := newTestACL()
	key := make([]byte, chacha20poly1305.KeySize)
	cop, err := NewMockCoprocessor(key, acl)
	require.NoError(t, err)
	return cop, acl
}

// encGranted encrypts a value and grants the engine, the way callers are
// expected to before chaining operations.
func encGranted(t *testing.T, cop *MockCoprocessor, v uint8) Handle {
	t.Helper()
	ctx := context.Background()
	h, err := cop.Encrypt(ctx, v)
	require.NoError(t, err)
	require.NoError(t, cop.GrantSelf(ctx, h))
	return h
}

// revealNow runs a full reveal round-trip for h and returns the plaintext.
func revealNow(t *testing.T, cop *MockCoprocessor, h Handle) uint8 {
	t.Helper()
	require.NoError(t, cop.RequestReveal(context.Background(), h, 1))
	r := <-cop.Results()
	require.True(t, cop.VerifyRevealProof(r.CorrelationID, r.Value, r.Proof))
	return r.Value
}

func TestMock_AddWraps(t *testing.T) {
	cop, _ := newMock(t)
	ctx := context.Background()

	a := encGranted(t, cop, 250)
	b := encGranted(t, cop, 10)

	sum, err := cop.Add(ctx, a, b)
	require.NoError(t, err)
	require.NoError(t, cop.GrantSelf(ctx, sum))

	assert.Equal(t, uint8(4), revealNow(t, cop, sum))
}

func TestMock_UngrantedOperandFails(t *testing.T) {
	cop, _ := newMock(t)
	ctx := context.Background()

	a := encGranted(t, cop, 1)

	// Encrypted but never granted to the engine.
	b, err := cop.Encrypt(ctx, 2)
	require.NoError(t, err)

	_, err = cop.Add(ctx, a, b)
	assert.ErrorIs(t, err, common.ErrAccessDenied)
}

func TestMock_ResultNeedsGrantBeforeUse(t *testing.T) {
	cop, _ := newMock(t)
	ctx := context.Background()

	a := encGranted(t, cop, 1)
	b := encGranted(t, cop, 2)

	sum, err := cop.Add(ctx, a, b)
	require.NoError(t, err)

	// The result was stored without a grant; chaining must fail until
	// GrantSelf is called.
	_, err = cop.Add(ctx, sum, a)
	require.ErrorIs(t, err, common.ErrAccessDenied)

	require.NoError(t, cop.GrantSelf(ctx, sum))
	_, err = cop.Add(ctx, sum, a)
	assert.NoError(t, err)
}

func TestMock_EqOnIndependentEncryptions(t *testing.T) {
	cop, _ := newMock(t)
	ctx := context.Background()

	// Same plaintext encrypted twice yields different handles but compares
	// equal under Eq.
	a := encGranted(t, cop, 42)
	b := encGranted(t, cop, 42)
	require.NotEqual(t, a, b)

	eq, err := cop.Eq(ctx, a, b)
	require.NoError(t, err)
	require.NoError(t, cop.GrantSelf(ctx, eq))

	assert.Equal(t, uint8(1), revealNow(t, cop, eq))
}

func TestMock_Comparisons(t *testing.T) {
	cop, _ := newMock(t)
	ctx := context.Background()

	a := encGranted(t, cop, 3)
	b := encGranted(t, cop, 7)

	tests := []struct {
		name string
		op   func(context.Context, Handle, Handle) (Handle, error)
		want uint8
	}{
		{"le", cop.Le, 1},
		{"lt", cop.Lt, 1},
		{"gt", cop.Gt, 0},
		{"eq", cop.Eq, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tt.op(ctx, a, b)
			require.NoError(t, err)
			require.NoError(t, cop.GrantSelf(ctx, h))
			assert.Equal(t, tt.want, revealNow(t, cop, h))
		})
	}
}

func TestMock_Select(t *testing.T) {
	cop, _ := newMock(t)
	ctx := context.Background()

	yes := encGranted(t, cop, 1)
	no := encGranted(t, cop, 0)
	a := encGranted(t, cop, 30)
	b := encGranted(t, cop, 0)

	picked, err := cop.Select(ctx, yes, a, b)
	require.NoError(t, err)
	require.NoError(t, cop.GrantSelf(ctx, picked))
	assert.Equal(t, uint8(30), revealNow(t, cop, picked))

	picked, err = cop.Select(ctx, no, a, b)
	require.NoError(t, err)
	require.NoError(t, cop.GrantSelf(ctx, picked))
	assert.Equal(t, uint8(0), revealNow(t, cop, picked))
}

func TestMock_RevealProofTamperDetected(t *testing.T) {
	cop, _ := newMock(t)

	h := encGranted(t, cop, 99)
	require.NoError(t, cop.RequestReveal(context.Background(), h, 7))

	r := <-cop.Results()
	require.True(t, cop.VerifyRevealProof(r.CorrelationID, r.Value, r.Proof))

	assert.False(t, cop.VerifyRevealProof(r.CorrelationID, r.Value+1, r.Proof))
	assert.False(t, cop.VerifyRevealProof(r.CorrelationID+1, r.Value, r.Proof))

	bad := append([]byte(nil), r.Proof...)
	bad[0] ^= 0xff
	assert.False(t, cop.VerifyRevealProof(r.CorrelationID, r.Value, bad))
}

func TestMock_RevealRequiresGrant(t *testing.T) {
	cop, _ := newMock(t)

	h, err := cop.Encrypt(context.Background(), 5)
	require.NoError(t, err)

	err = cop.RequestReveal(context.Background(), h, 1)
	assert.ErrorIs(t, err, common.ErrAccessDenied)
}
