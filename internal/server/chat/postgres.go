package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, room *Room) error {
	query :=
		`INSERT INTO chat_rooms (id, user_a, user_b, created_at, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.UserA, room.UserB, room.CreatedAt, room.IsActive)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Room, error) {
	query :=
		`SELECT id, user_a, user_b, created_at, is_active
		 FROM chat_rooms
		 WHERE id = $1
		 `

	room := &Room{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID, &room.UserA, &room.UserB, &room.CreatedAt, &room.IsActive)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return room, nil
}

func (r *PostgresRepository) Update(ctx context.Context, room *Room) error {
	query :=
		`UPDATE chat_rooms SET is_active = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, room.ID, room.IsActive)
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

func (r *PostgresRepository) AppendMessage(ctx context.Context, roomID string, m Message) error {
	query :=
		`INSERT INTO chat_messages (room_id, sender, blob, sent_at)
		 VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query, roomID, m.Sender, m.Blob, m.SentAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Messages(ctx context.Context, roomID string, offset, limit int) ([]Message, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE room_id = $1`, roomID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	if offset < 0 || offset >= total || limit <= 0 {
		return []Message{}, total, nil
	}

	query :=
		`SELECT sender, blob, sent_at
		 FROM chat_messages
		 WHERE room_id = $1
		 ORDER BY id
		 OFFSET $2 LIMIT $3
		 `

	rows, err := r.db.QueryContext(ctx, query, roomID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Sender, &m.Blob, &m.SentAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return out, total, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, principal string) ([]*Room, error) {
	query :=
		`SELECT id, user_a, user_b, created_at, is_active
		 FROM chat_rooms
		 WHERE user_a = $1 OR user_b = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, principal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*Room
	for rows.Next() {
		room := &Room{}
		if err := rows.Scan(&room.ID, &room.UserA, &room.UserB, &room.CreatedAt, &room.IsActive); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) DeactivateByUser(ctx context.Context, principal string) error {
	query :=
		`UPDATE chat_rooms SET is_active = FALSE WHERE user_a = $1 OR user_b = $1`

	_, err := r.db.ExecContext(ctx, query, principal)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
