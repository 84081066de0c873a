package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/LondonVandervort/PrivacyDating/internal/server/acl"
	"github.com/LondonVandervort/PrivacyDating/internal/server/chat"
	"github.com/LondonVandervort/PrivacyDating/internal/server/engine"
	"github.com/LondonVandervort/PrivacyDating/internal/server/events"
	"github.com/LondonVandervort/PrivacyDating/internal/server/matching"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
	"github.com/LondonVandervort/PrivacyDating/internal/server/repomanager"
	"github.com/LondonVandervort/PrivacyDating/internal/server/reveal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

// Deactivation marks the profile inactive and then fails to close the
// principal's rooms. Both writes share one transaction, so the profile
// update must roll back with the failure.
func TestDeactivate_RollsBackWhenRoomClosureFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	grants := acl.NewList()
	cop, err := fhe.NewMockCoprocessor(make([]byte, chacha20poly1305.KeySize), grants)
	require.NoError(t, err)

	pub := events.NewMemoryPublisher()
	rm := repomanager.NewPostgresRepositoryManager()
	tx := &dbx.SQLTransactor{DB: db}

	profileSvc := profiles.NewService(db, rm, cop, pub)
	chatSvc := chat.NewService(db, rm, pub)
	coordinator := reveal.NewCoordinator(cop, rm.Matches(db), pub)
	matchSvc := matching.NewService(db, tx, rm, cop, chatSvc, coordinator, pub)

	e := engine.New(profileSvc, matchSvc, chatSvc, coordinator, tx)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+profiles\s+WHERE\s+principal`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "principal", "enc_age",
			"enc_location", "enc_interests", "enc_personality", "public_bio",
			"is_active", "is_looking_for_match", "registered_at"}).
			AddRow(1, "alice", "h1", "h2", "h3", "h4", "bio", true, true, time.Now()))
	mock.ExpectExec(`(?s)^UPDATE\s+profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^UPDATE\s+chat_rooms`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = e.Deactivate(context.Background(), "alice")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
