package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/repository/gormdb"
	"github.com/trm-lab/argus/pkg/utils/logging"
	"github.com/trm-lab/argus/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var dbPath string

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create or update the SQLite schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db-path",
				Usage:       "SQLite database file path",
				Value:       "argus.db",
				Sources:     cli.EnvVars("ARGUS_DB_PATH"),
				Destination: &dbPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration", "dbPath", dbPath)

			repo, err := gormdb.Open(dbPath)
			if err != nil {
				return goerr.Wrap(err, "failed to open database")
			}
			defer safe.Close(ctx, repo)

			if err := repo.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}

			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}
