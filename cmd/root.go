package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"loginpage/internal/config"
	"loginpage/internal/logger"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "loginpage",
	Short: "Account registration, email verification and login backend",
	Long: `loginpage serves the account API used by the login page frontend:
registration with email verification, login and logout.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")
}

// bootstrap loads the config and builds the process logger from it.
func bootstrap() (*config.Config, *zap.SugaredLogger, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Dev:    cfg.Log.Dev,
		File:   cfg.Log.File,
		MaxAge: cfg.Log.MaxAge,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, zl.Sugar(), func() { _ = zl.Sync() }, nil
}
