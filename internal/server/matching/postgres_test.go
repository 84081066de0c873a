package matching

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/LondonVandervort/PrivacyDating/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func matchRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "requester", "target", "enc_score", "enc_message",
		"status", "created_at", "is_accepted", "accepted_by", "is_revealed", "public_score"})
}

func TestCreate_ReturnsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+match_requests`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	m, err := repo.Create(context.Background(), &MatchRequest{
		Requester:      "alice",
		Target:         "bob",
		EncryptedScore: "h-score",
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if m.ID != 11 {
		t.Fatalf("expected id 11, got %d", m.ID)
	}
}

func TestGet_ScansAllColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+match_requests\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(uint64(11)).
		WillReturnRows(matchRows().
			AddRow(11, "alice", "bob", "h-score", []byte("hi"), "mutual",
				created, true, "bob", true, 70))

	m, err := repo.Get(context.Background(), 11)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if m.Status != StatusMutual || m.EncryptedScore != "h-score" || m.PublicScore != 70 {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 99)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_NoRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+match_requests`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &MatchRequest{ID: 99, Status: StatusRejected})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByParticipant_OrdersByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+match_requests\s+WHERE\s+requester\s*=\s*\$1\s+OR\s+target\s*=\s*\$1\s+ORDER\s+BY\s+id`).
		WithArgs("alice").
		WillReturnRows(matchRows().
			AddRow(1, "alice", "bob", "h1", nil, "pending", created, false, "", false, 0).
			AddRow(2, "carol", "alice", "h2", nil, "pending", created, false, "", false, 0))

	out, err := repo.ListByParticipant(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByParticipant error: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].Requester != "carol" {
		t.Fatalf("unexpected list: %+v", out)
	}
}

func TestCountMutual(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+match_requests\s+WHERE\s+status\s*=\s*\$1`).
		WithArgs("mutual").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountMutual(context.Background())
	if err != nil {
		t.Fatalf("CountMutual error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}
