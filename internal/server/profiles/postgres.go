package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *Profile) (*Profile, error) {

	query :=
		`INSERT INTO profiles
		   (principal, enc_age, enc_location, enc_interests, enc_personality,
		    public_bio, is_active, is_looking_for_match, registered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING user_id
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.Principal, string(p.EncryptedAge), string(p.EncryptedLocation),
		string(p.EncryptedInterests), string(p.EncryptedPersonality),
		p.PublicBio, p.IsActive, p.IsLookingForMatch, p.RegisteredAt).Scan(&p.UserID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByPrincipal(ctx context.Context, principal string) (*Profile, error) {
	query :=
		`SELECT user_id, principal, enc_age, enc_location, enc_interests, enc_personality,
		        public_bio, is_active, is_looking_for_match, registered_at
		 FROM profiles
		 WHERE principal = $1
		 `

	p := &Profile{}
	var encAge, encLoc, encInt, encPers string
	err := r.db.QueryRowContext(ctx, query, principal).Scan(
		&p.UserID, &p.Principal, &encAge, &encLoc, &encInt, &encPers,
		&p.PublicBio, &p.IsActive, &p.IsLookingForMatch, &p.RegisteredAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.EncryptedAge = fhe.Handle(encAge)
	p.EncryptedLocation = fhe.Handle(encLoc)
	p.EncryptedInterests = fhe.Handle(encInt)
	p.EncryptedPersonality = fhe.Handle(encPers)

	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *Profile) error {
	query :=
		`UPDATE profiles
		 SET public_bio = $2, is_active = $3, is_looking_for_match = $4
		 WHERE principal = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		p.Principal, p.PublicBio, p.IsActive, p.IsLookingForMatch)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) SavePreferences(ctx context.Context, prefs *Preferences) error {
	query :=
		`INSERT INTO preferences (principal, min_age, max_age, preferred_location, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (principal) DO UPDATE
		 SET min_age = EXCLUDED.min_age,
		     max_age = EXCLUDED.max_age,
		     preferred_location = EXCLUDED.preferred_location,
		     updated_at = EXCLUDED.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		prefs.Principal, string(prefs.MinAge), string(prefs.MaxAge),
		string(prefs.PreferredLocation), prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetPreferences(ctx context.Context, principal string) (*Preferences, error) {
	query :=
		`SELECT principal, min_age, max_age, preferred_location, updated_at
		 FROM preferences
		 WHERE principal = $1
		 `

	prefs := &Preferences{}
	var minAge, maxAge, prefLoc string
	err := r.db.QueryRowContext(ctx, query, principal).Scan(
		&prefs.Principal, &minAge, &maxAge, &prefLoc, &prefs.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	prefs.MinAge = fhe.Handle(minAge)
	prefs.MaxAge = fhe.Handle(maxAge)
	prefs.PreferredLocation = fhe.Handle(prefLoc)

	return prefs, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
