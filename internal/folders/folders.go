// Package folders manages owner-scoped folders. A folder that still holds
// notes cannot be deleted.
package folders

import (
	"context"
	"fmt"
	"strings"

	"noteful/internal/apperr"
	"noteful/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Folder struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID primitive.ObjectID `bson:"owner_id"`
	Name    string             `bson:"name"`
}

type FolderView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Input struct {
	Name string `json:"name" validate:"required,max=100"`
}

func ToView(f *Folder) *FolderView {
	return &FolderView{ID: f.ID.Hex(), Name: f.Name}
}

type Store interface {
	List(ctx context.Context, owner primitive.ObjectID) ([]*Folder, error)
	FindOne(ctx context.Context, owner, id primitive.ObjectID) (*Folder, error)
	Insert(ctx context.Context, f *Folder) error
	Rename(ctx context.Context, owner, id primitive.ObjectID, name string) (*Folder, error)
	Delete(ctx context.Context, owner, id primitive.ObjectID) error
}

// NoteCounter counts the owner's notes filed in a folder.
type NoteCounter interface {
	CountInFolder(ctx context.Context, owner, folder primitive.ObjectID) (int64, error)
}

type Service struct {
	store Store
	notes NoteCounter
}

func NewService(store Store, notes NoteCounter) *Service {
	return &Service{store: store, notes: notes}
}

func (s *Service) List(ctx context.Context, owner primitive.ObjectID) ([]*FolderView, error) {
	list, err := s.store.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]*FolderView, len(list))
	for i, f := range list {
		views[i] = ToView(f)
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, owner primitive.ObjectID, id string) (*FolderView, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	f, err := s.store.FindOne(ctx, owner, oid)
	if err != nil {
		return nil, err
	}
	return ToView(f), nil
}

func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, input Input) (*FolderView, error) {
	name, err := validName(input.Name)
	if err != nil {
		return nil, err
	}
	f := &Folder{OwnerID: owner, Name: name}
	if err := s.store.Insert(ctx, f); err != nil {
		return nil, err
	}
	return ToView(f), nil
}

func (s *Service) Update(ctx context.Context, owner primitive.ObjectID, id string, input Input) (*FolderView, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	name, err := validName(input.Name)
	if err != nil {
		return nil, err
	}
	f, err := s.store.Rename(ctx, owner, oid, name)
	if err != nil {
		return nil, err
	}
	return ToView(f), nil
}

// Delete removes the owner's folder unless notes still reference it.
func (s *Service) Delete(ctx context.Context, owner primitive.ObjectID, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := s.notes.CountInFolder(ctx, owner, oid)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d notes", apperr.ErrFolderNotEmpty, n)
	}
	return s.store.Delete(ctx, owner, oid)
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
