package main

import (
	"fmt"
	"os"

	"noteful/internal/config"
	"noteful/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "noteful",
	Short: "Personal notes API with folders, tags and full-text search",
	Long: `Noteful serves a JSON API for per-user notes stored in MongoDB.
Notes can be filed in folders, tagged, and searched by relevance.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		log = logger.New(logger.Options{
			FilePath:   cfg.App.LogFilePath,
			Production: cfg.IsProduction(),
			Debug:      verbose,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
