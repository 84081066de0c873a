// Package profiles implements the profile store: encrypted per-user
// attributes, public metadata, and preference management.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/LondonVandervort/PrivacyDating/internal/server/events"
)

const (
	MinAge       = 18
	MaxAge       = 100
	MaxBioLength = 500
)

// Repos vends a Repository bound to a database handle. The repository
// manager satisfies it.
type Repos interface {
	Profiles(db dbx.DBTX) Repository
}

type Service struct {
	db     dbx.DBTX
	repos  Repos
	cop    fhe.Coprocessor
	events events.Publisher
}

func NewService(db dbx.DBTX, repos Repos, cop fhe.Coprocessor, pub events.Publisher) *Service {
	return &Service{db: db, repos: repos, cop: cop, events: pub}
}

// encryptFor seals one attribute and grants decrypt capability to the engine
// and to the owning principal.
func (s *Service) encryptFor(ctx context.Context, principal string, value uint8) (fhe.Handle, error) {
	h, err := s.cop.Encrypt(ctx, value)
	if err != nil {
		return "", fmt.Errorf("encrypting attribute: %w", err)
	}
	if err := s.cop.GrantSelf(ctx, h); err != nil {
		return "", fmt.Errorf("granting engine access: %w", err)
	}
	if err := s.cop.Grant(ctx, h, fhe.Principal(principal)); err != nil {
		return "", fmt.Errorf("granting owner access: %w", err)
	}
	return h, nil
}

// Register creates a profile for principal. Each principal registers at most
// once; deactivated profiles still block re-registration.
func (s *Service) Register(ctx context.Context, principal string, age, location, interests, personality uint8, bio string) (*Profile, error) {
	repo := s.repos.Profiles(s.db)

	if age < MinAge || age > MaxAge {
		return nil, common.ErrInvalidAttribute
	}
	if len(bio) > MaxBioLength {
		return nil, common.ErrInvalidAttribute
	}

	if _, err := repo.GetByPrincipal(ctx, principal); err == nil {
		return nil, common.ErrAlreadyRegistered
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("checking existing profile: %w", err)
	}

	encAge, err := s.encryptFor(ctx, principal, age)
	if err != nil {
		return nil, err
	}
	encLoc, err := s.encryptFor(ctx, principal, location)
	if err != nil {
		return nil, err
	}
	encInt, err := s.encryptFor(ctx, principal, interests)
	if err != nil {
		return nil, err
	}
	encPers, err := s.encryptFor(ctx, principal, personality)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Principal:            principal,
		EncryptedAge:         encAge,
		EncryptedLocation:    encLoc,
		EncryptedInterests:   encInt,
		EncryptedPersonality: encPers,
		PublicBio:            bio,
		IsActive:             true,
		IsLookingForMatch:    true,
		RegisteredAt:         time.Now(),
	}

	profile, err = repo.Create(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	s.events.Publish(ctx, events.Event{
		Name: events.UserRegistered,
		At:   time.Now(),
		Fields: map[string]any{
			"principal": principal,
			"user_id":   profile.UserID,
		},
	})

	return profile, nil
}

func (s *Service) get(ctx context.Context, repo Repository, principal string) (*Profile, error) {
	p, err := repo.GetByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotRegistered
		}
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return p, nil
}

func (s *Service) update(ctx context.Context, repo Repository, p *Profile) error {
	if err := repo.Update(ctx, p); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	s.events.Publish(ctx, events.Event{
		Name:   events.ProfileUpdated,
		At:     time.Now(),
		Fields: map[string]any{"principal": p.Principal},
	})
	return nil
}

func (s *Service) UpdateBio(ctx context.Context, principal, newBio string) error {
	if len(newBio) > MaxBioLength {
		return common.ErrInvalidAttribute
	}

	repo := s.repos.Profiles(s.db)
	p, err := s.get(ctx, repo, principal)
	if err != nil {
		return err
	}

	p.PublicBio = newBio
	return s.update(ctx, repo, p)
}

func (s *Service) SetLookingForMatch(ctx context.Context, principal string, looking bool) error {
	repo := s.repos.Profiles(s.db)
	p, err := s.get(ctx, repo, principal)
	if err != nil {
		return err
	}

	p.IsLookingForMatch = looking
	return s.update(ctx, repo, p)
}

// Deactivate soft-deletes the profile. History stays intact and the
// principal can never re-register. It binds to db so the engine can run it
// and the chat-room closure in one transaction.
func (s *Service) Deactivate(ctx context.Context, db dbx.DBTX, principal string) error {
	repo := s.repos.Profiles(db)
	p, err := s.get(ctx, repo, principal)
	if err != nil {
		return err
	}

	p.IsActive = false
	p.IsLookingForMatch = false
	return s.update(ctx, repo, p)
}

// SetPreferences encrypts and stores (or overwrites) the caller's matching
// preferences. They are advisory only and not enforced during matching.
func (s *Service) SetPreferences(ctx context.Context, principal string, minAge, maxAge, preferredLocation uint8) error {
	repo := s.repos.Profiles(s.db)
	if _, err := s.get(ctx, repo, principal); err != nil {
		return err
	}

	encMin, err := s.encryptFor(ctx, principal, minAge)
	if err != nil {
		return err
	}
	encMax, err := s.encryptFor(ctx, principal, maxAge)
	if err != nil {
		return err
	}
	encLoc, err := s.encryptFor(ctx, principal, preferredLocation)
	if err != nil {
		return err
	}

	prefs := &Preferences{
		Principal:         principal,
		MinAge:            encMin,
		MaxAge:            encMax,
		PreferredLocation: encLoc,
		UpdatedAt:         time.Now(),
	}

	if err := repo.SavePreferences(ctx, prefs); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// GetPreferences returns the caller's stored preference handles. The owner
// already holds decrypt grants on them from SetPreferences. ErrNotFound means
// the profile exists but no preferences were ever set.
func (s *Service) GetPreferences(ctx context.Context, principal string) (*Preferences, error) {
	repo := s.repos.Profiles(s.db)
	if _, err := s.get(ctx, repo, principal); err != nil {
		return nil, err
	}

	prefs, err := repo.GetPreferences(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	return prefs, nil
}

// GetPublicProfile returns the non-sensitive subset of a profile. No access
// check beyond existence.
func (s *Service) GetPublicProfile(ctx context.Context, principal string) (*PublicProfile, error) {
	p, err := s.get(ctx, s.repos.Profiles(s.db), principal)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{
		IsActive:          p.IsActive,
		Bio:               p.PublicBio,
		RegisteredAt:      p.RegisteredAt,
		IsLookingForMatch: p.IsLookingForMatch,
	}, nil
}

// Count returns the number of registered users.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.repos.Profiles(s.db).Count(ctx)
}
