package notes

import (
	"context"
	"fmt"
	"sync"

	"noteful/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FolderLookup reports whether a folder with id exists and belongs to owner.
type FolderLookup interface {
	FolderOwned(ctx context.Context, owner, id primitive.ObjectID) (bool, error)
}

// TagLookup counts how many of ids name tags belonging to owner.
type TagLookup interface {
	CountOwnedTags(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
}

// ReferenceValidator gates note writes on the folder and tags they reference
// being owned by the writer.
type ReferenceValidator struct {
	folders FolderLookup
	tags    TagLookup
}

func NewReferenceValidator(folders FolderLookup, tags TagLookup) *ReferenceValidator {
	return &ReferenceValidator{folders: folders, tags: tags}
}

// Validate runs the folder and tag checks concurrently and returns once
// both have finished. A folder failure is reported ahead of a tag failure.
func (v *ReferenceValidator) Validate(ctx context.Context, owner primitive.ObjectID, folderID *primitive.ObjectID, tagIDs []primitive.ObjectID) error {
	var folderErr, tagErr error
	var wg sync.WaitGroup

	if folderID != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			folderErr = v.checkFolder(ctx, owner, *folderID)
		}()
	}
	if len(tagIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tagErr = v.checkTags(ctx, owner, tagIDs)
		}()
	}
	wg.Wait()

	if folderErr != nil {
		return folderErr
	}
	return tagErr
}

func (v *ReferenceValidator) checkFolder(ctx context.Context, owner, id primitive.ObjectID) error {
	ok, err := v.folders.FolderOwned(ctx, owner, id)
	if err != nil {
		return fmt.Errorf("lookup folder: %w", err)
	}
	if !ok {
		return apperr.ErrFolderInvalid
	}
	return nil
}

func (v *ReferenceValidator) checkTags(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) error {
	unique := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	n, err := v.tags.CountOwnedTags(ctx, owner, ids)
	if err != nil {
		return fmt.Errorf("lookup tags: %w", err)
	}
	if n < int64(len(unique)) {
		return apperr.ErrTagsInvalid
	}
	return nil
}
