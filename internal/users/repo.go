package users

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
	return &Repo{coll: database.Collection("users")}
}

func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) Insert(ctx context.Context, u *User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", db.Classify(err))
	}
	return nil
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, fmt.Errorf("find user: %w", db.Classify(err))
	}
	return &u, nil
}

func (r *Repo) InsertMany(ctx context.Context, list []*User) error {
	if len(list) == 0 {
		return nil
	}
	docs := make([]interface{}, len(list))
	for i, u := range list {
		docs[i] = u
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert users: %w", db.Classify(err))
	}
	return nil
}
