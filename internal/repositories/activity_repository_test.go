package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

const activityNS = "test.activities"

func activityDoc(id primitive.ObjectID, userID string, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
		{Key: "verb", Value: "post"},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(at)},
	}
}

func TestMongoActivityRepositoryGetActivities(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}

	mt.Run("first page sorts by time then id and fetches one extra", func(mt *mtest.T) {
		repo := repositories.NewMongoActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, activityNS, mtest.FirstBatch,
			activityDoc(ids[2], "u1", at),
			activityDoc(ids[1], "u1", at),
			activityDoc(ids[0], "u1", at.Add(-time.Minute)),
		))

		page, err := repo.GetActivities(ctx, "u1", pagination.Params{Limit: 2})
		require.NoError(mt, err)
		require.Len(mt, page.Items, 2)
		assert.Equal(mt, ids[2], page.Items[0].ID)
		require.NotNil(mt, page.NextCursor)
		assert.Equal(mt, ids[0].Hex(), *page.NextCursor)

		cmd := mt.GetStartedEvent().Command
		assert.EqualValues(mt, 3, cmd.Lookup("limit").AsInt64())
		filter := cmd.Lookup("filter").Document()
		assert.Equal(mt, "u1", filter.Lookup("user_id").StringValue())
		_, err = filter.LookupErr("$or")
		assert.Error(mt, err)

		sort, err := cmd.Lookup("sort").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, sort, 2)
		assert.Equal(mt, "created_at", sort[0].Key())
		assert.Equal(mt, "_id", sort[1].Key())
	})

	mt.Run("last page has no cursor", func(mt *mtest.T) {
		repo := repositories.NewMongoActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, activityNS, mtest.FirstBatch,
			activityDoc(ids[0], "u1", at),
		))

		page, err := repo.GetActivities(ctx, "u1", pagination.Params{Limit: 2})
		require.NoError(mt, err)
		assert.Len(mt, page.Items, 1)
		assert.Nil(mt, page.NextCursor)
	})

	mt.Run("cursor resolves inside the user's log and is inclusive", func(mt *mtest.T) {
		repo := repositories.NewMongoActivityRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, activityNS, mtest.FirstBatch, activityDoc(ids[1], "u1", at)),
			mtest.CreateCursorResponse(0, activityNS, mtest.FirstBatch,
				activityDoc(ids[1], "u1", at),
				activityDoc(ids[0], "u1", at.Add(-time.Minute)),
			),
		)

		page, err := repo.GetActivities(ctx, "u1", pagination.Params{Limit: 2, Cursor: ids[1].Hex()})
		require.NoError(mt, err)
		require.Len(mt, page.Items, 2)
		assert.Equal(mt, ids[1], page.Items[0].ID)
		assert.Nil(mt, page.NextCursor)

		anchor := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, ids[1], anchor.Lookup("_id").ObjectID())
		assert.Equal(mt, "u1", anchor.Lookup("user_id").StringValue())

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, "u1", filter.Lookup("user_id").StringValue())
		branches, err := filter.Lookup("$or").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, branches, 2)
		inclusive := branches[1].Document()
		assert.Equal(mt, ids[1], inclusive.Lookup("_id", "$lte").ObjectID())
	})

	mt.Run("unknown cursor is rejected", func(mt *mtest.T) {
		repo := repositories.NewMongoActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, activityNS, mtest.FirstBatch))

		_, err := repo.GetActivities(ctx, "u1", pagination.Params{Limit: 2, Cursor: ids[0].Hex()})
		assert.True(mt, apperrors.Is(err, apperrors.CodeBadRequest))
	})

	mt.Run("malformed cursor and bad limit never reach the server", func(mt *mtest.T) {
		repo := repositories.NewMongoActivityRepository(mt.DB)

		_, err := repo.GetActivities(ctx, "u1", pagination.Params{Limit: 2, Cursor: "not-an-object-id"})
		assert.True(mt, apperrors.Is(err, apperrors.CodeBadRequest))
		_, err = repo.GetActivities(ctx, "u1", pagination.Params{Limit: 0})
		assert.True(mt, apperrors.Is(err, apperrors.CodeBadRequest))
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("record assigns id and time", func(mt *mtest.T) {
		repo := repositories.NewMongoActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		activity := &models.Activity{UserID: "u1", Verb: models.VerbPost}
		require.NoError(mt, repo.RecordActivity(ctx, activity))
		assert.False(mt, activity.ID.IsZero())
		assert.False(mt, activity.CreatedAt.IsZero())
		assert.Equal(mt, "insert", mt.GetStartedEvent().CommandName)
	})
}
