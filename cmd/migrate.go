package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"loginpage/internal/db"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations for the postgres document store",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, sync, err := bootstrap()
		if err != nil {
			return err
		}
		defer sync()

		if cfg.Database.Driver != "postgres" {
			return errors.New("migrations only apply to database.driver: postgres")
		}
		conn, err := db.OpenPostgres(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := db.MigrateUp(conn); err != nil {
			return err
		}
		log.Infow("[migrate] up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
}
