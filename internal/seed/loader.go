package seed

import (
	"context"
	"fmt"

	"noteful/internal/folders"
	"noteful/internal/notes"
	"noteful/internal/tags"
	"noteful/internal/users"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Load writes ds into database. With drop set the database is dropped
// first; indexes are (re)built after the inserts.
func Load(ctx context.Context, database *mongo.Database, ds *Dataset, drop bool, log *zap.Logger) error {
	if drop {
		log.Info("dropping database", zap.String("database", database.Name()))
		if err := database.Drop(ctx); err != nil {
			return fmt.Errorf("drop database: %w", err)
		}
	}

	userRepo := users.NewRepo(database)
	folderRepo := folders.NewRepo(database)
	tagRepo := tags.NewRepo(database)
	noteRepo := notes.NewRepo(database)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return userRepo.InsertMany(gctx, ds.Users) })
	g.Go(func() error { return folderRepo.InsertMany(gctx, ds.Folders) })
	g.Go(func() error { return tagRepo.InsertMany(gctx, ds.Tags) })
	g.Go(func() error { return noteRepo.InsertMany(gctx, ds.Notes) })
	if err := g.Wait(); err != nil {
		return err
	}

	for _, repo := range []interface {
		EnsureIndexes(context.Context) error
	}{userRepo, folderRepo, tagRepo, noteRepo} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	log.Info("seeded database",
		zap.Int("users", len(ds.Users)),
		zap.Int("folders", len(ds.Folders)),
		zap.Int("tags", len(ds.Tags)),
		zap.Int("notes", len(ds.Notes)),
	)
	return nil
}
