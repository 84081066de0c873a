package profiles

import "context"

type Repository interface {
	// Create stores a new profile and assigns its UserID from a global
	// monotonically increasing sequence.
	Create(ctx context.Context, p *Profile) (*Profile, error)
	GetByPrincipal(ctx context.Context, principal string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	SavePreferences(ctx context.Context, prefs *Preferences) error
	GetPreferences(ctx context.Context, principal string) (*Preferences, error)
	Count(ctx context.Context) (uint64, error)
}
