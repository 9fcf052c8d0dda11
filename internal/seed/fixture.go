// Package seed loads a YAML fixture of users, folders, tags and notes into
// an empty database.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"noteful/internal/auth"
	"noteful/internal/folders"
	"noteful/internal/notes"
	"noteful/internal/tags"
	"noteful/internal/users"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Fixture mirrors the YAML file. Every record carries a fixed hex id so
// fixtures can reference each other.
type Fixture struct {
	Users   []UserRecord  `yaml:"users"`
	Folders []NamedRecord `yaml:"folders"`
	Tags    []NamedRecord `yaml:"tags"`
	Notes   []NoteRecord  `yaml:"notes"`
}

type UserRecord struct {
	ID       string `yaml:"id"`
	FullName string `yaml:"fullName"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NamedRecord is a folder or a tag.
type NamedRecord struct {
	ID    string `yaml:"id"`
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

type NoteRecord struct {
	ID      string    `yaml:"id"`
	Owner   string    `yaml:"owner"`
	Title   string    `yaml:"title"`
	Content string    `yaml:"content"`
	Folder  string    `yaml:"folder"`
	Tags    []string  `yaml:"tags"`
	Created time.Time `yaml:"created"`
}

// Parse decodes a fixture, rejecting unknown keys.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return &f, nil
}

// Dataset is a fixture converted to storable documents.
type Dataset struct {
	Users   []*users.User
	Folders []*folders.Folder
	Tags    []*tags.Tag
	Notes   []*notes.Note
}

const hashWorkers = 4

// Dataset converts the fixture and hashes every password. A note may only
// reference folders and tags of its own owner, the same rule the API enforces.
func (f *Fixture) Dataset(ctx context.Context, hasher auth.PasswordHasher, now time.Time) (*Dataset, error) {
	ds := &Dataset{}
	owners := map[primitive.ObjectID]bool{}
	folderOwner := map[primitive.ObjectID]primitive.ObjectID{}
	tagOwner := map[primitive.ObjectID]primitive.ObjectID{}

	for i, rec := range f.Users {
		id, err := hexID(rec.ID, "users", i)
		if err != nil {
			return nil, err
		}
		if rec.Username == "" || rec.Password == "" {
			return nil, fmt.Errorf("users[%d]: username and password are required", i)
		}
		owners[id] = true
		ds.Users = append(ds.Users, &users.User{
			ID:       id,
			FullName: rec.FullName,
			Username: rec.Username,
			Password: rec.Password,
		})
	}

	for i, rec := range f.Folders {
		id, owner, err := namedIDs(rec, "folders", i, owners)
		if err != nil {
			return nil, err
		}
		folderOwner[id] = owner
		ds.Folders = append(ds.Folders, &folders.Folder{ID: id, OwnerID: owner, Name: rec.Name})
	}

	for i, rec := range f.Tags {
		id, owner, err := namedIDs(rec, "tags", i, owners)
		if err != nil {
			return nil, err
		}
		tagOwner[id] = owner
		ds.Tags = append(ds.Tags, &tags.Tag{ID: id, OwnerID: owner, Name: rec.Name})
	}

	for i, rec := range f.Notes {
		note, err := noteFromRecord(rec, i, owners, folderOwner, tagOwner, now)
		if err != nil {
			return nil, err
		}
		ds.Notes = append(ds.Notes, note)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(hashWorkers)
	for _, u := range ds.Users {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			digest, err := hasher.Hash(u.Password)
			if err != nil {
				return fmt.Errorf("hash password of %s: %w", u.Username, err)
			}
			u.Password = digest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func noteFromRecord(
	rec NoteRecord,
	i int,
	owners map[primitive.ObjectID]bool,
	folderOwner, tagOwner map[primitive.ObjectID]primitive.ObjectID,
	now time.Time,
) (*notes.Note, error) {
	id, err := hexID(rec.ID, "notes", i)
	if err != nil {
		return nil, err
	}
	owner, err := ownerID(rec.Owner, "notes", i, owners)
	if err != nil {
		return nil, err
	}
	if rec.Title == "" {
		return nil, fmt.Errorf("notes[%d]: title is required", i)
	}

	n := &notes.Note{
		ID:        id,
		OwnerID:   owner,
		Title:     rec.Title,
		Content:   rec.Content,
		Tags:      []primitive.ObjectID{},
		CreatedAt: rec.Created.UTC(),
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now.UTC()
	}
	n.UpdatedAt = n.CreatedAt

	if rec.Folder != "" {
		fid, err := primitive.ObjectIDFromHex(rec.Folder)
		if fo, known := folderOwner[fid]; err != nil || !known || fo != owner {
			return nil, fmt.Errorf("notes[%d]: folder %q is not a folder of its owner", i, rec.Folder)
		}
		n.FolderID = &fid
	}
	for _, raw := range rec.Tags {
		tid, err := primitive.ObjectIDFromHex(raw)
		if to, known := tagOwner[tid]; err != nil || !known || to != owner {
			return nil, fmt.Errorf("notes[%d]: tag %q is not a tag of its owner", i, raw)
		}
		n.Tags = append(n.Tags, tid)
	}
	return n, nil
}

func namedIDs(rec NamedRecord, kind string, i int, owners map[primitive.ObjectID]bool) (primitive.ObjectID, primitive.ObjectID, error) {
	id, err := hexID(rec.ID, kind, i)
	if err != nil {
		return id, id, err
	}
	owner, err := ownerID(rec.Owner, kind, i, owners)
	if err != nil {
		return id, owner, err
	}
	if rec.Name == "" {
		return id, owner, fmt.Errorf("%s[%d]: name is required", kind, i)
	}
	return id, owner, nil
}

func hexID(s, kind string, i int) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return id, fmt.Errorf("%s[%d]: invalid id %q", kind, i, s)
	}
	return id, nil
}

func ownerID(s, kind string, i int, owners map[primitive.ObjectID]bool) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil || !owners[id] {
		return id, fmt.Errorf("%s[%d]: unknown owner %q", kind, i, s)
	}
	return id, nil
}
