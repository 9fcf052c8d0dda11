package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is the stored form of a note. Every note belongs to exactly one owner.
type Note struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	OwnerID   primitive.ObjectID   `bson:"owner_id"`
	Title     string               `bson:"title"`
	Content   string               `bson:"content"`
	FolderID  *primitive.ObjectID  `bson:"folder_id,omitempty"`
	Tags      []primitive.ObjectID `bson:"tags"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`

	// Score is the text-search relevance, only populated by searches.
	Score float64 `bson:"score,omitempty"`
}

// Fields are the replaceable fields of a note, with references already
// parsed into identifiers.
type Fields struct {
	Title    string
	Content  string
	FolderID *primitive.ObjectID
	Tags     []primitive.ObjectID
}

// NoteInput is the body of create and update requests.
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FolderID string   `json:"folderId"`
	Tags     []string `json:"tags"`
}

// ListOptions are the caller-supplied note listing parameters.
type ListOptions struct {
	SearchTerm string
	FolderID   string
	// TagIDs restricts results to notes carrying every listed tag.
	TagIDs []string
	Limit  int
	Offset int
}

// NoteView is the external representation of a note.
type NoteView struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	FolderID string    `json:"folderId,omitempty"`
	Tags     []string  `json:"tags"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	Score    float64   `json:"score,omitempty"`
}

// ToView maps a stored note to its external representation. The owner is
// implied by the request and is not part of the view.
func ToView(n *Note) *NoteView {
	v := &NoteView{
		ID:      n.ID.Hex(),
		Title:   n.Title,
		Content: n.Content,
		Tags:    make([]string, len(n.Tags)),
		Created: n.CreatedAt,
		Updated: n.UpdatedAt,
		Score:   n.Score,
	}
	if n.FolderID != nil {
		v.FolderID = n.FolderID.Hex()
	}
	for i, tag := range n.Tags {
		v.Tags[i] = tag.Hex()
	}
	return v
}

func toViews(list []*Note) []*NoteView {
	views := make([]*NoteView, len(list))
	for i, n := range list {
		views[i] = ToView(n)
	}
	return views
}
