package tags

import (
	"context"
	"strings"

	"noteful/internal/apperr"
	"noteful/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tag struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID primitive.ObjectID `bson:"owner_id"`
	Name    string             `bson:"name"`
}

type TagView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Input struct {
	Name string `json:"name" validate:"required,max=100"`
}

func ToView(t *Tag) *TagView {
	return &TagView{ID: t.ID.Hex(), Name: t.Name}
}

type Store interface {
	List(ctx context.Context, owner primitive.ObjectID) ([]*Tag, error)
	FindOne(ctx context.Context, owner, id primitive.ObjectID) (*Tag, error)
	Insert(ctx context.Context, t *Tag) error
	Rename(ctx context.Context, owner, id primitive.ObjectID, name string) (*Tag, error)
	Delete(ctx context.Context, owner, id primitive.ObjectID) error
}

// NoteTagger detaches a tag from every note of an owner.
type NoteTagger interface {
	PullTag(ctx context.Context, owner, tag primitive.ObjectID) error
}

type Service struct {
	store Store
	notes NoteTagger
}

func NewService(store Store, notes NoteTagger) *Service {
	return &Service{store: store, notes: notes}
}

func (s *Service) List(ctx context.Context, owner primitive.ObjectID) ([]*TagView, error) {
	list, err := s.store.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]*TagView, len(list))
	for i, t := range list {
		views[i] = ToView(t)
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, owner primitive.ObjectID, id string) (*TagView, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	t, err := s.store.FindOne(ctx, owner, oid)
	if err != nil {
		return nil, err
	}
	return ToView(t), nil
}

func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, input Input) (*TagView, error) {
	name, err := validName(input.Name)
	if err != nil {
		return nil, err
	}
	t := &Tag{OwnerID: owner, Name: name}
	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}
	return ToView(t), nil
}

func (s *Service) Update(ctx context.Context, owner primitive.ObjectID, id string, input Input) (*TagView, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	name, err := validName(input.Name)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Rename(ctx, owner, oid, name)
	if err != nil {
		return nil, err
	}
	return ToView(t), nil
}

// Delete removes the owner's tag and then strips it from the owner's notes.
func (s *Service) Delete(ctx context.Context, owner primitive.ObjectID, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, owner, oid); err != nil {
		return err
	}
	return s.notes.PullTag(ctx, owner, oid)
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrInvalidID
	}
	return id, nil
}

// validName trims the name and applies Input's rules to it.
func validName(name string) (string, error) {
	in := Input{Name: strings.TrimSpace(name)}
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	return in.Name, nil
}
