package notes

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"noteful/internal/apperr"

	"github.com/yuin/goldmark"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence the service needs. Every call is scoped to an
// owner; a note owned by someone else behaves exactly like a missing one.
type Store interface {
	Find(ctx context.Context, q NoteQuery) ([]*Note, error)
	FindOne(ctx context.Context, owner, id primitive.ObjectID) (*Note, error)
	Insert(ctx context.Context, n *Note) error
	Replace(ctx context.Context, owner, id primitive.ObjectID, f Fields) (*Note, error)
	Delete(ctx context.Context, owner, id primitive.ObjectID) error
}

type Service struct {
	store Store
	refs  *ReferenceValidator
	md    goldmark.Markdown
}

func NewService(store Store, refs *ReferenceValidator) *Service {
	return &Service{
		store: store,
		refs:  refs,
		md:    goldmark.New(),
	}
}

// List returns the owner's notes matching opts.
func (s *Service) List(ctx context.Context, owner primitive.ObjectID, opts ListOptions) ([]*NoteView, error) {
	q, err := BuildNoteQuery(owner, opts)
	if err != nil {
		return nil, err
	}
	list, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return toViews(list), nil
}

func (s *Service) Get(ctx context.Context, owner primitive.ObjectID, id string) (*NoteView, error) {
	oid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	n, err := s.store.FindOne(ctx, owner, oid)
	if err != nil {
		return nil, err
	}
	return ToView(n), nil
}

// Create validates input and its references, then inserts one note.
// Nothing is written when any check fails.
func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, input NoteInput) (*NoteView, error) {
	fields, err := s.prepare(ctx, owner, input)
	if err != nil {
		return nil, err
	}

	n := &Note{
		OwnerID:  owner,
		Title:    fields.Title,
		Content:  fields.Content,
		FolderID: fields.FolderID,
		Tags:     fields.Tags,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}
	return ToView(n), nil
}

// Update replaces every field of the owner's note id with input.
func (s *Service) Update(ctx context.Context, owner primitive.ObjectID, id string, input NoteInput) (*NoteView, error) {
	oid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	fields, err := s.prepare(ctx, owner, input)
	if err != nil {
		return nil, err
	}

	n, err := s.store.Replace(ctx, owner, oid, fields)
	if err != nil {
		return nil, err
	}
	return ToView(n), nil
}

func (s *Service) Delete(ctx context.Context, owner primitive.ObjectID, id string) error {
	oid, err := parseID(id, "id")
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, owner, oid)
}

// RenderMarkdown converts markdown content to HTML.
func (s *Service) RenderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// prepare performs the pre-write checks in order: title, identifier
// syntax, then the referential gate.
func (s *Service) prepare(ctx context.Context, owner primitive.ObjectID, input NoteInput) (Fields, error) {
	if owner.IsZero() {
		return Fields{}, fmt.Errorf("%w (owner)", apperr.ErrInvalidID)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Fields{}, apperr.ErrMissingTitle
	}

	f := Fields{Title: title, Content: input.Content}
	if input.FolderID != "" {
		id, err := parseID(input.FolderID, "folderId")
		if err != nil {
			return Fields{}, err
		}
		f.FolderID = &id
	}
	tags, err := parseIDs(input.Tags, "tags")
	if err != nil {
		return Fields{}, err
	}
	f.Tags = tags
	if f.Tags == nil {
		f.Tags = []primitive.ObjectID{}
	}

	if err := s.refs.Validate(ctx, owner, f.FolderID, f.Tags); err != nil {
		return Fields{}, err
	}
	return f, nil
}
