package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/0xPolygon/cdk-gateway/db"
	"github.com/0xPolygon/cdk-gateway/db/types"
	"github.com/0xPolygon/cdk-gateway/log"
)

//go:embed session0001.sql
var mig001 string

// RunMigrations brings the session tables up to date
func RunMigrations(logger *log.Logger, database *sql.DB) error {
	migrations := []types.Migration{
		{
			ID:  "session0001",
			SQL: mig001,
		},
	}

	return db.RunMigrations(logger, database, migrations)
}
