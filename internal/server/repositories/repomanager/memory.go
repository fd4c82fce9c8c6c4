package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dreamteller/internal/dbx"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/dreams"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/users"
)

// MemoryRepositoryManager ignores the DBTX it is given and always returns
// the same process-local repositories. Writes are not transactional.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	dreams        *dreams.MemoryRepository
	notifications *notifications.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		dreams:        dreams.NewMemoryRepository(),
		notifications: notifications.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Dreams(dbx.DBTX) dreams.Repository { return m.dreams }

func (m *MemoryRepositoryManager) Notifications(dbx.DBTX) notifications.Repository {
	return m.notifications
}
