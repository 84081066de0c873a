// Package repomanager vends the repository implementations backing the
// engine, either in-memory or PostgreSQL, and exposes a schema migration
// hook for the latter.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/server/chat"
	"github.com/LondonVandervort/PrivacyDating/internal/server/matching"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
	Matches(db dbx.DBTX) matching.Repository
	Rooms(db dbx.DBTX) chat.Repository
}
