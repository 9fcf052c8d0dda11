package folders

import (
	"context"
	"errors"
	"fmt"

	"noteful/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(database *mongo.Database) *Repo {
	return &Repo{coll: database.Collection("folders")}
}

// EnsureIndexes makes folder names unique per owner.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create folder indexes: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) List(ctx context.Context, owner primitive.ObjectID) ([]*Folder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", db.Classify(err))
	}
	defer cursor.Close(ctx)

	folders := []*Folder{}
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("decode folders: %w", db.Classify(err))
	}
	return folders, nil
}

func (r *Repo) FindOne(ctx context.Context, owner, id primitive.ObjectID) (*Folder, error) {
	var f Folder
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": owner}).Decode(&f); err != nil {
		return nil, fmt.Errorf("find folder %s: %w", id.Hex(), db.Classify(err))
	}
	return &f, nil
}

// FolderOwned reports whether folder id exists and belongs to owner.
func (r *Repo) FolderOwned(ctx context.Context, owner, id primitive.ObjectID) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": owner},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find folder %s: %w", id.Hex(), db.Classify(err))
	}
	return true, nil
}

func (r *Repo) Insert(ctx context.Context, f *Folder) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert folder: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) InsertMany(ctx context.Context, list []*Folder) error {
	if len(list) == 0 {
		return nil
	}
	docs := make([]interface{}, len(list))
	for i, f := range list {
		docs[i] = f
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert folders: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) Rename(ctx context.Context, owner, id primitive.ObjectID, name string) (*Folder, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var f Folder
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": owner},
		bson.M{"$set": bson.M{"name": name}},
		opts,
	).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("update folder %s: %w", id.Hex(), db.Classify(err))
	}
	return &f, nil
}

func (r *Repo) Delete(ctx context.Context, owner, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("delete folder: %w", db.Classify(err))
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete folder %s: %w", id.Hex(), db.Classify(mongo.ErrNoDocuments))
	}
	return nil
}
