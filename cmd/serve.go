package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"loginpage/internal/app"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the account API server",
	Long: `Starts the account API server. Usage:

	loginpage serve --config config/config.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, sync, err := bootstrap()
		if err != nil {
			return err
		}
		defer sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.Run(ctx, cfg, log); err != nil {
			log.Errorw("[serve] stopped with error", "err", err)
			return err
		}
		log.Infow("[serve] stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
