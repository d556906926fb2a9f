// Package repomanager vends repository implementations over any DBTX and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/msavelyev/authkeeper/internal/dbx"
	"github.com/msavelyev/authkeeper/internal/server/repositories/accounts"
	"github.com/msavelyev/authkeeper/internal/server/repositories/refreshtokens"
)

// RepositoryManager hands out repositories bound to a *sql.DB or *sql.Tx,
// letting services decide per call whether an operation joins a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
