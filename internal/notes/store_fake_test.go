package notes

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"noteful/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for the notes, folders and tags
// collections. Its text search is a crude stemmed word match weighted like
// the real index.
type memStore struct {
	mu      sync.Mutex
	notes   map[primitive.ObjectID]*Note
	folders map[primitive.ObjectID]primitive.ObjectID
	tags    map[primitive.ObjectID]primitive.ObjectID
	clock   time.Time
	calls   int
}

func newMemStore() *memStore {
	return &memStore{
		notes:   make(map[primitive.ObjectID]*Note),
		folders: make(map[primitive.ObjectID]primitive.ObjectID),
		tags:    make(map[primitive.ObjectID]primitive.ObjectID),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addFolder(owner primitive.ObjectID) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	m.folders[id] = owner
	return id
}

func (m *memStore) addTag(owner primitive.ObjectID) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	m.tags[id] = owner
	return id
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}

func (m *memStore) storageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *memStore) FolderOwned(_ context.Context, owner, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	o, ok := m.folders[id]
	return ok && o == owner, nil
}

func (m *memStore) CountOwnedTags(_ context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var n int64
	for _, id := range ids {
		if o, ok := m.tags[id]; ok && o == owner {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Insert(_ context.Context, n *Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.clock = m.clock.Add(time.Second)
	n.ID = primitive.NewObjectID()
	n.CreatedAt = m.clock
	n.UpdatedAt = m.clock
	m.notes[n.ID] = clone(n)
	return nil
}

func (m *memStore) FindOne(_ context.Context, owner, id primitive.ObjectID) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	n, ok := m.notes[id]
	if !ok || n.OwnerID != owner {
		return nil, fmt.Errorf("find note %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return clone(n), nil
}

func (m *memStore) Replace(_ context.Context, owner, id primitive.ObjectID, f Fields) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	n, ok := m.notes[id]
	if !ok || n.OwnerID != owner {
		return nil, fmt.Errorf("update note %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	m.clock = m.clock.Add(time.Second)
	n.Title = f.Title
	n.Content = f.Content
	n.FolderID = f.FolderID
	n.Tags = slices.Clone(f.Tags)
	n.UpdatedAt = m.clock
	return clone(n), nil
}

func (m *memStore) Delete(_ context.Context, owner, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	n, ok := m.notes[id]
	if !ok || n.OwnerID != owner {
		return fmt.Errorf("delete note %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) Find(_ context.Context, q NoteQuery) ([]*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	terms := stems(q.SearchTerm)
	var out []*Note
	for _, n := range m.notes {
		if n.OwnerID != q.OwnerID {
			continue
		}
		if q.FolderID != nil && (n.FolderID == nil || *n.FolderID != *q.FolderID) {
			continue
		}
		if !containsAll(n.Tags, q.TagIDs) {
			continue
		}
		c := clone(n)
		if len(terms) > 0 {
			c.Score = float64(titleWeight*hits(n.Title, terms) + contentWeight*hits(n.Content, terms))
			if c.Score == 0 {
				continue
			}
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if int(q.Offset) >= len(out) {
		return []*Note{}, nil
	}
	out = out[q.Offset:]
	if int(q.Limit) < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func clone(n *Note) *Note {
	c := *n
	c.Tags = slices.Clone(n.Tags)
	if n.FolderID != nil {
		id := *n.FolderID
		c.FolderID = &id
	}
	return &c
}

func containsAll(have, want []primitive.ObjectID) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

func stems(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		out = append(out, strings.TrimSuffix(w, "s"))
	}
	return out
}

func hits(text string, terms []string) int {
	n := 0
	for _, w := range stems(text) {
		if slices.Contains(terms, w) {
			n++
		}
	}
	return n
}
