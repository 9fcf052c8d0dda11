package notes

import (
	"context"
	"testing"
	"time"

	"noteful/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func mockRepo(mt *mtest.T) *Repo {
	return &Repo{coll: mt.Coll, now: func() time.Time { return fixedNow }}
}

// sentCommand decodes the first command the driver sent into v.
func sentCommand(mt *mtest.T, v any) {
	mt.Helper()
	ev := mt.GetStartedEvent()
	require.NotNil(mt, ev)
	require.NoError(mt, bson.Unmarshal(ev.Command, v))
}

func TestRepoReplace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	owner, id, folder := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	tag := primitive.NewObjectID()

	type findAndModify struct {
		Query  bson.M `bson:"query"`
		Update bson.M `bson:"update"`
	}

	mt.Run("sets folder", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "owner_id", Value: owner},
			{Key: "title", Value: "Cats"},
			{Key: "folder_id", Value: folder},
			{Key: "tags", Value: bson.A{tag}},
		}}))

		note, err := mockRepo(mt).Replace(ctx, owner, id, Fields{
			Title: "Cats", Content: "purr", FolderID: &folder, Tags: []primitive.ObjectID{tag},
		})
		require.NoError(mt, err)
		assert.Equal(mt, "Cats", note.Title)
		require.NotNil(mt, note.FolderID)
		assert.Equal(mt, folder, *note.FolderID)

		var cmd findAndModify
		sentCommand(mt, &cmd)
		assert.Equal(mt, bson.M{"_id": id, "owner_id": owner}, cmd.Query)
		set, ok := cmd.Update["$set"].(bson.M)
		require.True(mt, ok)
		assert.Equal(mt, folder, set["folder_id"])
		assert.Equal(mt, "purr", set["content"])
		assert.Equal(mt, bson.A{tag}, set["tags"])
		assert.Equal(mt, primitive.NewDateTimeFromTime(fixedNow), set["updated_at"])
		assert.NotContains(mt, cmd.Update, "$unset")
	})

	mt.Run("unsets folder", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "owner_id", Value: owner},
			{Key: "title", Value: "Cats"},
		}}))

		note, err := mockRepo(mt).Replace(ctx, owner, id, Fields{Title: "Cats", Tags: []primitive.ObjectID{}})
		require.NoError(mt, err)
		assert.Nil(mt, note.FolderID)

		var cmd findAndModify
		sentCommand(mt, &cmd)
		set := cmd.Update["$set"].(bson.M)
		assert.NotContains(mt, set, "folder_id")
		assert.Equal(mt, bson.M{"folder_id": ""}, cmd.Update["$unset"])
	})

	mt.Run("missing note", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := mockRepo(mt).Replace(ctx, owner, id, Fields{Title: "Cats"})
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
	})
}

func TestRepoFindOneAndDeleteNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	owner, id := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("find", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.notes", mtest.FirstBatch))

		_, err := mockRepo(mt).FindOne(ctx, owner, id)
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := mockRepo(mt).Delete(ctx, owner, id)
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
	})

	mt.Run("delete found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, mockRepo(mt).Delete(ctx, owner, id))
	})
}

func TestRepoFolderAndTagMaintenance(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	owner, folder, tag := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("count in folder", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.notes", mtest.FirstBatch, bson.D{{Key: "n", Value: 3}}))

		n, err := mockRepo(mt).CountInFolder(ctx, owner, folder)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)

		var cmd struct {
			Pipeline []bson.M `bson:"pipeline"`
		}
		sentCommand(mt, &cmd)
		require.NotEmpty(mt, cmd.Pipeline)
		assert.Equal(mt, bson.M{"owner_id": owner, "folder_id": folder}, cmd.Pipeline[0]["$match"])
	})

	mt.Run("pull tag", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}))

		require.NoError(mt, mockRepo(mt).PullTag(ctx, owner, tag))

		var cmd struct {
			Updates []struct {
				Q     bson.M `bson:"q"`
				U     bson.M `bson:"u"`
				Multi bool   `bson:"multi"`
			} `bson:"updates"`
		}
		sentCommand(mt, &cmd)
		require.Len(mt, cmd.Updates, 1)
		assert.Equal(mt, bson.M{"owner_id": owner, "tags": tag}, cmd.Updates[0].Q)
		assert.Equal(mt, bson.M{"$pull": bson.M{"tags": tag}}, cmd.Updates[0].U)
		assert.True(mt, cmd.Updates[0].Multi)
	})
}

func TestRepoEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("text weights", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, mockRepo(mt).EnsureIndexes(context.Background()))

		var cmd struct {
			Indexes []struct {
				Name    string `bson:"name"`
				Key     bson.D `bson:"key"`
				Weights bson.M `bson:"weights"`
			} `bson:"indexes"`
		}
		sentCommand(mt, &cmd)
		require.Len(mt, cmd.Indexes, 4)

		text := cmd.Indexes[0]
		assert.Equal(mt, "notes_text", text.Name)
		assert.Equal(mt, bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}}, text.Key)
		assert.EqualValues(mt, 5, text.Weights["title"])
		assert.EqualValues(mt, 1, text.Weights["content"])
	})
}
