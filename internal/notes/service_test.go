package notes

import (
	"context"
	"encoding/json"
	"testing"

	"noteful/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pgregory.net/rapid"
)

type fixture struct {
	store  *memStore
	svc    *Service
	u1, u2 primitive.ObjectID
	f1, f2 primitive.ObjectID
	g1, g2 primitive.ObjectID
}

// newFixture sets up owner U1 with folder F1 and tag G1, and owner U2 with
// folder F2 and tag G2.
func newFixture() *fixture {
	store := newMemStore()
	fx := &fixture{
		store: store,
		svc:   NewService(store, NewReferenceValidator(store, store)),
		u1:    primitive.NewObjectID(),
		u2:    primitive.NewObjectID(),
	}
	fx.f1, fx.f2 = store.addFolder(fx.u1), store.addFolder(fx.u2)
	fx.g1, fx.g2 = store.addTag(fx.u1), store.addTag(fx.u2)
	return fx
}

func TestCreateNote(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	note, err := fx.svc.Create(ctx, fx.u1, NoteInput{
		Title:    "Shopping",
		FolderID: fx.f1.Hex(),
		Tags:     []string{fx.g1.Hex()},
	})
	require.NoError(t, err)
	assert.Equal(t, "Shopping", note.Title)
	assert.Equal(t, fx.f1.Hex(), note.FolderID)
	assert.Equal(t, []string{fx.g1.Hex()}, note.Tags)
	assert.False(t, note.Created.IsZero())

	_, err = fx.svc.Create(ctx, fx.u1, NoteInput{Title: "Shopping", FolderID: fx.f2.Hex()})
	assert.ErrorIs(t, err, apperr.ErrFolderInvalid)
	assert.Equal(t, 1, fx.store.count(), "rejected create must not write")
}

func TestCreateNoteForeignTag(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Create(context.Background(), fx.u1, NoteInput{
		Title: "Groceries",
		Tags:  []string{fx.g1.Hex(), fx.g2.Hex()},
	})

	assert.ErrorIs(t, err, apperr.ErrTagsInvalid)
	assert.Zero(t, fx.store.count())
}

func TestCreateNoteValidatesBeforeStorage(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		input   NoteInput
		wantErr error
	}{
		{"no title", NoteInput{Content: "no title"}, apperr.ErrMissingTitle},
		{"blank title", NoteInput{Title: "   \t"}, apperr.ErrMissingTitle},
		{"bad folder id", NoteInput{Title: "T", FolderID: "xyz"}, apperr.ErrInvalidID},
		{"bad tag id", NoteInput{Title: "T", Tags: []string{"xyz"}}, apperr.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Create(ctx, fx.u1, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, fx.store.storageCalls(), "storage must not be contacted")
}

func TestNoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	created, err := fx.svc.Create(ctx, fx.u1, NoteInput{Title: "T", Content: "C", Tags: []string{fx.g1.Hex()}})
	require.NoError(t, err)

	got, err := fx.svc.Get(ctx, fx.u1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "C", got.Content)
	assert.Equal(t, []string{fx.g1.Hex()}, got.Tags)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "id")
	for _, private := range []string{"_id", "__v", "owner_id", "ownerId", "score"} {
		assert.NotContains(t, fields, private)
	}
}

func TestUpdateNote(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	created, err := fx.svc.Create(ctx, fx.u1, NoteInput{Title: "Old", Content: "body", FolderID: fx.f1.Hex(), Tags: []string{fx.g1.Hex()}})
	require.NoError(t, err)

	updated, err := fx.svc.Update(ctx, fx.u1, created.ID, NoteInput{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "New", updated.Title)
	assert.Empty(t, updated.Content, "update replaces every field")
	assert.Empty(t, updated.FolderID)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, created.Created, updated.Created)

	_, err = fx.svc.Update(ctx, fx.u1, created.ID, NoteInput{Title: "New", Tags: []string{fx.g2.Hex()}})
	assert.ErrorIs(t, err, apperr.ErrTagsInvalid)

	_, err = fx.svc.Update(ctx, fx.u1, "not-an-id", NoteInput{Title: "New"})
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = fx.svc.Update(ctx, fx.u1, created.ID, NoteInput{})
	assert.ErrorIs(t, err, apperr.ErrMissingTitle)
}

func TestForeignAndMissingNotesLookAlike(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	theirs, err := fx.svc.Create(ctx, fx.u2, NoteInput{Title: "private"})
	require.NoError(t, err)
	missing := primitive.NewObjectID().Hex()

	for _, id := range []string{theirs.ID, missing} {
		_, getErr := fx.svc.Get(ctx, fx.u1, id)
		_, updErr := fx.svc.Update(ctx, fx.u1, id, NoteInput{Title: "hijack"})
		delErr := fx.svc.Delete(ctx, fx.u1, id)

		assert.ErrorIs(t, getErr, apperr.ErrNotFound)
		assert.ErrorIs(t, updErr, apperr.ErrNotFound)
		assert.ErrorIs(t, delErr, apperr.ErrNotFound)
	}

	still, err := fx.svc.Get(ctx, fx.u2, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", still.Title)
}

func TestDeleteNote(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	created, err := fx.svc.Create(ctx, fx.u1, NoteInput{Title: "bye"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, fx.u1, created.ID))
	assert.ErrorIs(t, fx.svc.Delete(ctx, fx.u1, created.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, fx.svc.Delete(ctx, fx.u1, "zzz"), apperr.ErrInvalidID)
}

func TestListNotes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	g3 := fx.store.addTag(fx.u1)

	mk := func(owner primitive.ObjectID, in NoteInput) *NoteView {
		n, err := fx.svc.Create(ctx, owner, in)
		require.NoError(t, err)
		return n
	}
	first := mk(fx.u1, NoteInput{Title: "Why cats are great", Content: "long story", FolderID: fx.f1.Hex(), Tags: []string{fx.g1.Hex(), g3.Hex()}})
	second := mk(fx.u1, NoteInput{Title: "Dogs", Content: "my cat disagrees", Tags: []string{fx.g1.Hex()}})
	third := mk(fx.u1, NoteInput{Title: "Lady Gaga", Content: "songs"})
	mk(fx.u2, NoteInput{Title: "cats cats cats", Content: "cats"})

	t.Run("newest first", func(t *testing.T) {
		list, err := fx.svc.List(ctx, fx.u1, ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(list))
	})

	t.Run("search by relevance", func(t *testing.T) {
		list, err := fx.svc.List(ctx, fx.u1, ListOptions{SearchTerm: "cats"})
		require.NoError(t, err)
		assert.Equal(t, []string{first.ID, second.ID}, ids(list), "title match outranks content match")
		assert.Greater(t, list[0].Score, list[1].Score)
	})

	t.Run("folder", func(t *testing.T) {
		list, err := fx.svc.List(ctx, fx.u1, ListOptions{FolderID: fx.f1.Hex()})
		require.NoError(t, err)
		assert.Equal(t, []string{first.ID}, ids(list))
	})

	t.Run("tags are conjunctive", func(t *testing.T) {
		list, err := fx.svc.List(ctx, fx.u1, ListOptions{TagIDs: []string{fx.g1.Hex()}})
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID, first.ID}, ids(list))

		list, err = fx.svc.List(ctx, fx.u1, ListOptions{TagIDs: []string{fx.g1.Hex(), g3.Hex()}})
		require.NoError(t, err)
		assert.Equal(t, []string{first.ID}, ids(list))
	})

	t.Run("search and tag", func(t *testing.T) {
		list, err := fx.svc.List(ctx, fx.u1, ListOptions{SearchTerm: "cat", TagIDs: []string{g3.Hex()}})
		require.NoError(t, err)
		assert.Equal(t, []string{first.ID}, ids(list))
	})

	t.Run("pagination", func(t *testing.T) {
		list, err := fx.svc.List(ctx, fx.u1, ListOptions{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID}, ids(list))
	})

	t.Run("invalid filter id", func(t *testing.T) {
		_, err := fx.svc.List(ctx, fx.u1, ListOptions{FolderID: "bad"})
		assert.ErrorIs(t, err, apperr.ErrInvalidID)
	})
}

// Nothing one owner creates is visible to another owner's queries.
func TestOwnerIsolationProperty(t *testing.T) {
	words := []string{"cats", "dogs", "gaga", "shopping", "ideas"}

	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		fx := newFixture()

		n := rapid.IntRange(1, 8).Draw(rt, "notes")
		others := map[string]bool{}
		for i := 0; i < n; i++ {
			owner := fx.u1
			if rapid.Bool().Draw(rt, "ownedByB") {
				owner = fx.u2
			}
			title := rapid.SampledFrom(words).Draw(rt, "title")
			note, err := fx.svc.Create(ctx, owner, NoteInput{Title: title})
			if err != nil {
				rt.Fatalf("create: %v", err)
			}
			if owner == fx.u2 {
				others[note.ID] = true
			}
		}

		term := ""
		if rapid.Bool().Draw(rt, "search") {
			term = rapid.SampledFrom(words).Draw(rt, "term")
		}
		list, err := fx.svc.List(ctx, fx.u1, ListOptions{SearchTerm: term, Limit: maxLimit})
		if err != nil {
			rt.Fatalf("list: %v", err)
		}
		for _, v := range list {
			if others[v.ID] {
				rt.Fatalf("owner B's note %s leaked into owner A's results", v.ID)
			}
		}
	})
}

func TestRenderMarkdown(t *testing.T) {
	svc := NewService(newMemStore(), nil)

	html, err := svc.RenderMarkdown("# Title\n\n*hi*")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<em>hi</em>")
}

func ids(list []*NoteView) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.ID
	}
	return out
}
