// Package repomanager vends repositories bound to a DB handle, so services
// can run the same repository code against *sql.DB or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/energyaudit/internal/dbx"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
