package notes

import (
	"context"
	"fmt"
	"time"

	"noteful/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewRepo(database *mongo.Database) *Repo {
	return &Repo{coll: database.Collection("notes"), now: time.Now}
}

// EnsureIndexes creates the weighted text index and the owner-scoped
// lookup indexes for the notes collection.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
			Options: options.Index().
				SetName("notes_text").
				SetWeights(bson.D{{Key: "title", Value: titleWeight}, {Key: "content", Value: contentWeight}}),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "folder_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "tags", Value: 1}},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create note indexes: %w", db.Classify(err))
	}
	return nil
}

// Insert creates a new note, assigning its id and timestamps.
func (r *Repo) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	n.UpdatedAt = n.CreatedAt
	if n.Tags == nil {
		n.Tags = []primitive.ObjectID{}
	}

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert note: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) InsertMany(ctx context.Context, list []*Note) error {
	if len(list) == 0 {
		return nil
	}
	docs := make([]interface{}, len(list))
	for i, n := range list {
		docs[i] = n
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert notes: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) FindOne(ctx context.Context, owner, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": owner}).Decode(&note)
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id.Hex(), db.Classify(err))
	}
	return &note, nil
}

func (r *Repo) Find(ctx context.Context, q NoteQuery) ([]*Note, error) {
	cursor, err := r.coll.Find(ctx, q.Filter(), q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", db.Classify(err))
	}
	defer cursor.Close(ctx)

	notes := []*Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", db.Classify(err))
	}
	return notes, nil
}

// Replace overwrites the replaceable fields of the owner's note and returns
// the updated document.
func (r *Repo) Replace(ctx context.Context, owner, id primitive.ObjectID, f Fields) (*Note, error) {
	set := bson.M{
		"title":      f.Title,
		"content":    f.Content,
		"tags":       f.Tags,
		"updated_at": r.now().UTC().Truncate(time.Millisecond),
	}
	update := bson.M{"$set": set}
	if f.FolderID != nil {
		set["folder_id"] = *f.FolderID
	} else {
		update["$unset"] = bson.M{"folder_id": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var note Note
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner_id": owner}, update, opts).Decode(&note)
	if err != nil {
		return nil, fmt.Errorf("update note %s: %w", id.Hex(), db.Classify(err))
	}
	return &note, nil
}

func (r *Repo) Delete(ctx context.Context, owner, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("delete note: %w", db.Classify(err))
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete note %s: %w", id.Hex(), db.Classify(mongo.ErrNoDocuments))
	}
	return nil
}

// CountInFolder counts the owner's notes filed under folder.
func (r *Repo) CountInFolder(ctx context.Context, owner, folder primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"owner_id": owner, "folder_id": folder})
	if err != nil {
		return 0, fmt.Errorf("count notes in folder: %w", db.Classify(err))
	}
	return count, nil
}

// PullTag removes tag from every note of owner.
func (r *Repo) PullTag(ctx context.Context, owner, tag primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"owner_id": owner, "tags": tag},
		bson.M{"$pull": bson.M{"tags": tag}},
	)
	if err != nil {
		return fmt.Errorf("pull tag from notes: %w", db.Classify(err))
	}
	return nil
}
