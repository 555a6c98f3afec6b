package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/boards"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/comments"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/images"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/pins"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/users"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/votes"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/widgets"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// use the same code with a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Boards(db dbx.DBTX) boards.Repository
	Widgets(db dbx.DBTX) widgets.Repository
	Votes(db dbx.DBTX) votes.Repository
	Comments(db dbx.DBTX) comments.Repository
	Pins(db dbx.DBTX) pins.Repository
	Images(db dbx.DBTX) images.Repository
}
