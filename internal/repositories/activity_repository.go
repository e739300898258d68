package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository stores the per-user activity log.
type ActivityRepository interface {
	RecordActivity(ctx context.Context, activity *models.Activity) error
	GetActivities(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Activity], error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

// EnsureIndexes creates the index backing GetActivities.
func (r *MongoActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	return err
}

func (r *MongoActivityRepository) RecordActivity(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, activity)
	return err
}

// GetActivities lists the user's activity newest first. The cursor is the hex ObjectID
// of the first activity of the page.
func (r *MongoActivityRepository) GetActivities(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Activity], error) {
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Activity]{}, err
	}

	filter := bson.M{"user_id": userID}
	if p.Cursor != "" {
		anchorID, err := primitive.ObjectIDFromHex(p.Cursor)
		if err != nil {
			return pagination.Page[models.Activity]{}, apperrors.BadRequest("invalid cursor")
		}
		var anchor models.Activity
		err = r.collection.FindOne(ctx, bson.M{"_id": anchorID, "user_id": userID}).Decode(&anchor)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pagination.Page[models.Activity]{}, apperrors.BadRequest("invalid cursor")
		}
		if err != nil {
			return pagination.Page[models.Activity]{}, fmt.Errorf("resolve activity cursor: %w", err)
		}
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": anchor.CreatedAt}},
			bson.M{"created_at": anchor.CreatedAt, "_id": bson.M{"$lte": anchor.ID}},
		}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(p.Limit + 1))
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return pagination.Page[models.Activity]{}, err
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return pagination.Page[models.Activity]{}, err
	}
	return pagination.Trim(activities, p.Limit), nil
}
