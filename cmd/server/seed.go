package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"noteful/internal/auth"
	"noteful/internal/db"
	"noteful/internal/seed"

	"github.com/spf13/cobra"
)

var (
	seedFile string
	seedDrop bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture of users, folders, tags and notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer f.Close()

		fixture, err := seed.Parse(f)
		if err != nil {
			return fmt.Errorf("%s: %w", seedFile, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		ds, err := fixture.Dataset(ctx, auth.BcryptHasher{Cost: cfg.Auth.BcryptCost}, time.Now())
		if err != nil {
			return fmt.Errorf("%s: %w", seedFile, err)
		}

		database, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return err
		}
		defer database.Client().Disconnect(context.Background())

		return seed.Load(ctx, database, ds, seedDrop, log)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture to load")
	seedCmd.Flags().BoolVar(&seedDrop, "drop", false, "Drop the database before loading")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
