package profiles

import (
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
)

// Profile holds one principal's encrypted attributes and public metadata.
// Profiles are never deleted; deactivation is a soft delete so match and
// chat records keep valid references.
type Profile struct {
	UserID               uint64
	Principal            string
	EncryptedAge         fhe.Handle
	EncryptedLocation    fhe.Handle
	EncryptedInterests   fhe.Handle
	EncryptedPersonality fhe.Handle
	PublicBio            string
	IsActive             bool
	IsLookingForMatch    bool
	RegisteredAt         time.Time
}

// Preferences are optional, fully encrypted, and advisory only: the base
// design does not enforce them during matching.
type Preferences struct {
	Principal         string
	MinAge            fhe.Handle
	MaxAge            fhe.Handle
	PreferredLocation fhe.Handle
	UpdatedAt         time.Time
}

// PublicProfile is the subset of a profile readable without authorization.
type PublicProfile struct {
	IsActive          bool      `json:"is_active"`
	Bio               string    `json:"bio"`
	RegisteredAt      time.Time `json:"registered_at"`
	IsLookingForMatch bool      `json:"is_looking_for_match"`
}
