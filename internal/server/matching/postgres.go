package matching

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

const matchColumns = `id, requester, target, enc_score, enc_message, status,
	created_at, is_accepted, accepted_by, is_revealed, public_score`

func scanMatch(row interface{ Scan(...any) error }) (*MatchRequest, error) {
	m := &MatchRequest{}
	var encScore string
	var status string

	err := row.Scan(&m.ID, &m.Requester, &m.Target, &encScore, &m.EncryptedMessage,
		&status, &m.CreatedAt, &m.IsAccepted, &m.AcceptedBy, &m.IsRevealed, &m.PublicScore)
	if err != nil {
		return nil, err
	}

	m.EncryptedScore = fhe.Handle(encScore)
	m.Status = Status(status)
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *MatchRequest) (*MatchRequest, error) {
	query :=
		`INSERT INTO match_requests
		   (requester, target, enc_score, enc_message, status, created_at,
		    is_accepted, accepted_by, is_revealed, public_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		m.Requester, m.Target, string(m.EncryptedScore), m.EncryptedMessage,
		string(m.Status), m.CreatedAt, m.IsAccepted, m.AcceptedBy,
		m.IsRevealed, m.PublicScore).Scan(&m.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uint64) (*MatchRequest, error) {
	query := `SELECT ` + matchColumns + ` FROM match_requests WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *MatchRequest) error {
	query :=
		`UPDATE match_requests
		 SET status = $2, is_accepted = $3, accepted_by = $4,
		     is_revealed = $5, public_score = $6
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		m.ID, string(m.Status), m.IsAccepted, m.AcceptedBy, m.IsRevealed, m.PublicScore)
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

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*MatchRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*MatchRequest
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) ListByRequester(ctx context.Context, principal string) ([]*MatchRequest, error) {
	query := `SELECT ` + matchColumns + ` FROM match_requests WHERE requester = $1 ORDER BY id`
	return r.list(ctx, query, principal)
}

func (r *PostgresRepository) ListByParticipant(ctx context.Context, principal string) ([]*MatchRequest, error) {
	query := `SELECT ` + matchColumns + ` FROM match_requests WHERE requester = $1 OR target = $1 ORDER BY id`
	return r.list(ctx, query, principal)
}

func (r *PostgresRepository) CountMutual(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_requests WHERE status = $1`, string(StatusMutual)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
