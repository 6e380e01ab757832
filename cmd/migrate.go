package cmd

import (
	"fmt"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/config"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.DBDriver == config.DriverMemory {
				return fmt.Errorf("nothing to migrate for driver %s", cfg.DBDriver)
			}

			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			return database.Migrate(db)
		},
	}
}
