package notes

import (
	"fmt"
	"strings"

	"noteful/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Text index weights. Title matches count five times as much as content.
const (
	titleWeight   = 5
	contentWeight = 1
)

// NoteQuery is a fully parsed, owner-scoped note listing. Without a search
// term results are ordered newest first; with one, by descending relevance.
type NoteQuery struct {
	OwnerID    primitive.ObjectID
	SearchTerm string
	FolderID   *primitive.ObjectID
	TagIDs     []primitive.ObjectID
	Limit      int64
	Offset     int64
}

// BuildNoteQuery parses opts into a query scoped to owner. It performs no
// I/O and only fails on malformed identifiers.
func BuildNoteQuery(owner primitive.ObjectID, opts ListOptions) (NoteQuery, error) {
	if owner.IsZero() {
		return NoteQuery{}, fmt.Errorf("%w (owner)", apperr.ErrInvalidID)
	}

	q := NoteQuery{
		OwnerID:    owner,
		SearchTerm: strings.TrimSpace(opts.SearchTerm),
		Limit:      int64(opts.Limit),
		Offset:     int64(opts.Offset),
	}

	if opts.FolderID != "" {
		id, err := parseID(opts.FolderID, "folderId")
		if err != nil {
			return NoteQuery{}, err
		}
		q.FolderID = &id
	}

	tags, err := parseIDs(opts.TagIDs, "tagId")
	if err != nil {
		return NoteQuery{}, err
	}
	q.TagIDs = tags

	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q, nil
}

// Filter is the conjunction of every restriction in q, owner first.
func (q NoteQuery) Filter() bson.D {
	filter := bson.D{{Key: "owner_id", Value: q.OwnerID}}
	if q.SearchTerm != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.M{"$search": q.SearchTerm}})
	}
	if q.FolderID != nil {
		filter = append(filter, bson.E{Key: "folder_id", Value: *q.FolderID})
	}
	if len(q.TagIDs) > 0 {
		filter = append(filter, bson.E{Key: "tags", Value: bson.M{"$all": q.TagIDs}})
	}
	return filter
}

func (q NoteQuery) Sort() bson.D {
	if q.SearchTerm != "" {
		return bson.D{
			{Key: "score", Value: bson.M{"$meta": "textScore"}},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}
	}
	return bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}
}

// Projection surfaces the relevance score for text searches and is nil otherwise.
func (q NoteQuery) Projection() bson.M {
	if q.SearchTerm == "" {
		return nil
	}
	return bson.M{"score": bson.M{"$meta": "textScore"}}
}

func (q NoteQuery) FindOptions() *options.FindOptions {
	opts := options.Find().
		SetLimit(q.Limit).
		SetSkip(q.Offset).
		SetSort(q.Sort())
	if p := q.Projection(); p != nil {
		opts.SetProjection(p)
	}
	return opts
}

func parseID(s, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w (%s)", apperr.ErrInvalidID, field)
	}
	return id, nil
}

// parseIDs parses and de-duplicates ids, keeping first-seen order.
func parseIDs(ss []string, field string) ([]primitive.ObjectID, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(ss))
	seen := make(map[primitive.ObjectID]struct{}, len(ss))
	for _, s := range ss {
		id, err := parseID(s, field)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
