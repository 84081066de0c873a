package profiles_test

import (
	"context"
	"testing"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/LondonVandervort/PrivacyDating/internal/server/acl"
	"github.com/LondonVandervort/PrivacyDating/internal/server/events"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
	"github.com/LondonVandervort/PrivacyDating/internal/server/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

type fixture struct {
	svc *profiles.Service
	acl *acl.List
	pub *events.MemoryPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	grants := acl.NewList()
	cop, err := fhe.NewMockCoprocessor(make([]byte, chacha20poly1305.KeySize), grants)
	require.NoError(t, err)

	pub := events.NewMemoryPublisher()
	svc := profiles.NewService(nil, repomanager.NewMemoryRepositoryManager(), cop, pub)

	return &fixture{svc: svc, acl: grants, pub: pub}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Register(ctx, "alice", 25, 1, 2, 3, "hi there")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), p.UserID)
	assert.True(t, p.IsActive)
	assert.True(t, p.IsLookingForMatch)

	// Attributes are granted to the engine and to the owner.
	for _, h := range []fhe.Handle{p.EncryptedAge, p.EncryptedLocation, p.EncryptedInterests, p.EncryptedPersonality} {
		assert.True(t, f.acl.Allowed(h, fhe.EnginePrincipal))
		assert.True(t, f.acl.Allowed(h, fhe.Principal("alice")))
	}

	require.Len(t, f.pub.Named(events.UserRegistered), 1)
}

func TestRegister_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, "alice", 25, 1, 2, 3, "original")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "alice", 30, 4, 5, 6, "changed")
	require.ErrorIs(t, err, common.ErrAlreadyRegistered)

	// First profile unchanged.
	pub, err := f.svc.GetPublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.PublicBio, pub.Bio)

	// No second registration event, no extra user.
	assert.Len(t, f.pub.Named(events.UserRegistered), 1)
	n, err := f.svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestRegister_BlockedAfterDeactivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", 25, 1, 2, 3, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.Deactivate(ctx, nil, "alice"))

	_, err = f.svc.Register(ctx, "alice", 25, 1, 2, 3, "")
	assert.ErrorIs(t, err, common.ErrAlreadyRegistered)
}

func TestRegister_InvalidAttributes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		age  uint8
		bio  string
	}{
		{"too young", 17, ""},
		{"too old", 101, ""},
		{"bio too long", 25, string(make([]byte, profiles.MaxBioLength+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, "p-"+tt.name, tt.age, 1, 2, 3, tt.bio)
			assert.ErrorIs(t, err, common.ErrInvalidAttribute)
		})
	}
}

func TestUpdateBio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", 25, 1, 2, 3, "old")
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateBio(ctx, "alice", "new"))

	pub, err := f.svc.GetPublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new", pub.Bio)
	assert.Len(t, f.pub.Named(events.ProfileUpdated), 1)
}

func TestUpdateBio_NotRegistered(t *testing.T) {
	f := newFixture(t)
	err := f.svc.UpdateBio(context.Background(), "ghost", "bio")
	assert.ErrorIs(t, err, common.ErrNotRegistered)
}

func TestDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", 25, 1, 2, 3, "bio")
	require.NoError(t, err)
	require.NoError(t, f.svc.Deactivate(ctx, nil, "alice"))

	pub, err := f.svc.GetPublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, pub.IsActive)
	assert.False(t, pub.IsLookingForMatch)
	assert.Equal(t, "bio", pub.Bio, "history preserved on soft delete")
}

func TestSetPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.SetPreferences(ctx, "alice", 20, 30, 1)
	require.ErrorIs(t, err, common.ErrNotRegistered)

	_, err = f.svc.Register(ctx, "alice", 25, 1, 2, 3, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.SetPreferences(ctx, "alice", 20, 30, 1))
	// Overwriting is allowed.
	require.NoError(t, f.svc.SetPreferences(ctx, "alice", 22, 28, 2))
}

func TestGetPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetPreferences(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrNotRegistered)

	_, err = f.svc.Register(ctx, "alice", 25, 1, 2, 3, "")
	require.NoError(t, err)

	// Registered, but nothing set yet.
	_, err = f.svc.GetPreferences(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, f.svc.SetPreferences(ctx, "alice", 20, 30, 1))
	first, err := f.svc.GetPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Principal)

	// The owner can take the handles to the co-processor.
	assert.True(t, f.acl.Allowed(first.MinAge, fhe.Principal("alice")))
	assert.True(t, f.acl.Allowed(first.MaxAge, fhe.Principal("alice")))
	assert.True(t, f.acl.Allowed(first.PreferredLocation, fhe.Principal("alice")))

	// An overwrite is visible on the next read.
	require.NoError(t, f.svc.SetPreferences(ctx, "alice", 22, 28, 2))
	second, err := f.svc.GetPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, first.MinAge, second.MinAge)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt) || second.UpdatedAt.Equal(first.UpdatedAt))
}

func TestGetPublicProfile_NotRegistered(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetPublicProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrNotRegistered)
}
