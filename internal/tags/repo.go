package tags

import (
	"context"
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
	return &Repo{coll: database.Collection("tags")}
}

func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create tag indexes: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) List(ctx context.Context, owner primitive.ObjectID) ([]*Tag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", db.Classify(err))
	}
	defer cursor.Close(ctx)

	tags := []*Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", db.Classify(err))
	}
	return tags, nil
}

func (r *Repo) FindOne(ctx context.Context, owner, id primitive.ObjectID) (*Tag, error) {
	var t Tag
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": owner}).Decode(&t); err != nil {
		return nil, fmt.Errorf("find tag %s: %w", id.Hex(), db.Classify(err))
	}
	return &t, nil
}

// CountOwnedTags counts how many of ids are tags belonging to owner.
func (r *Repo) CountOwnedTags(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"_id":      bson.M{"$in": ids},
		"owner_id": owner,
	})
	if err != nil {
		return 0, fmt.Errorf("count tags: %w", db.Classify(err))
	}
	return n, nil
}

// TagNames implements notes.TagNamer.
func (r *Repo) TagNames(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "owner_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tag names: %w", db.Classify(err))
	}
	defer cursor.Close(ctx)

	var found []*Tag
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode tag names: %w", db.Classify(err))
	}
	for _, t := range found {
		names[t.ID] = t.Name
	}
	return names, nil
}

func (r *Repo) Insert(ctx context.Context, t *Tag) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert tag: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) InsertMany(ctx context.Context, list []*Tag) error {
	if len(list) == 0 {
		return nil
	}
	docs := make([]interface{}, len(list))
	for i, t := range list {
		docs[i] = t
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert tags: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) Rename(ctx context.Context, owner, id primitive.ObjectID, name string) (*Tag, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t Tag
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": owner},
		bson.M{"$set": bson.M{"name": name}},
		opts,
	).Decode(&t)
	if err != nil {
		return nil, fmt.Errorf("update tag %s: %w", id.Hex(), db.Classify(err))
	}
	return &t, nil
}

func (r *Repo) Delete(ctx context.Context, owner, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("delete tag: %w", db.Classify(err))
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete tag %s: %w", id.Hex(), db.Classify(mongo.ErrNoDocuments))
	}
	return nil
}
