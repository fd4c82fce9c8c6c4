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

// RepositoryManager hands out repositories bound to a DBTX so services can
// run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Dreams(db dbx.DBTX) dreams.Repository
	Notifications(db dbx.DBTX) notifications.Repository
}
