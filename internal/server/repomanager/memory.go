package repomanager

import (
	"context"
	"database/sql"

	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/server/chat"
	"github.com/LondonVandervort/PrivacyDating/internal/server/matching"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
)

// MemoryRepositoryManager holds one instance of each in-memory repository so
// repeated calls vend the same store.
type MemoryRepositoryManager struct {
	profiles *profiles.MemoryRepository
	matches  *matching.MemoryRepository
	rooms    *chat.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		profiles: profiles.NewMemoryRepository(),
		matches:  matching.NewMemoryRepository(),
		rooms:    chat.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return m.profiles
}

func (m *MemoryRepositoryManager) Matches(db dbx.DBTX) matching.Repository {
	return m.matches
}

func (m *MemoryRepositoryManager) Rooms(db dbx.DBTX) chat.Repository {
	return m.rooms
}

// RunMigrations is a no-op for the in-memory manager.
func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}
