package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"loginpage/internal/app"
)

var dbcheckCmd = &cobra.Command{
	Use:   "dbcheck",
	Short: "Connects to the configured document store and pings it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, sync, err := bootstrap()
		if err != nil {
			return err
		}
		defer sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		users, closeStore, err := app.OpenUserRepository(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore(context.Background()) }()

		if err := users.Ping(ctx); err != nil {
			return fmt.Errorf("ping %s: %w", cfg.Database.Driver, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbcheckCmd)
}
