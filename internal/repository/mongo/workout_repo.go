package mongo

import (
	"context"
	"errors"
	"time"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/logger"
	"workoutbuddy/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// Listing order everywhere: most recent calendar day first, then most
// recently created. Dates are stored as "YYYY-MM-DD" strings, so the
// lexicographic sort is chronological.
var workoutSortOrder = bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout entry.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Exercise == "" || workout.Date.IsZero() {
		return primitive.NilObjectID, errors.New("workout requires userId, exercise, and date")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByUserID retrieves all workouts owned by a single user.
func (r *mongoWorkoutRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(workoutSortOrder)
	return r.findMany(ctx, filter, findOptions)
}

// GetByUserIDs retrieves the most recent workouts across a set of users,
// capped at limit. Used by the feed.
func (r *mongoWorkoutRepository) GetByUserIDs(ctx context.Context, userIDs []primitive.ObjectID, limit int64) ([]domain.Workout, error) {
	if len(userIDs) == 0 {
		return []domain.Workout{}, nil
	}
	filter := bson.M{"userId": bson.M{"$in": userIDs}}
	findOptions := options.Find().SetSort(workoutSortOrder).SetLimit(limit)
	return r.findMany(ctx, filter, findOptions)
}

// CountByUserSince counts a user's workouts on or after the given calendar
// date; nil counts all of them. Used by the leaderboard period filter.
func (r *mongoWorkoutRepository) CountByUserSince(ctx context.Context, userID primitive.ObjectID, since *domain.CalendarDate) (int64, error) {
	filter := bson.M{"userId": userID}
	if since != nil {
		filter["date"] = bson.M{"$gte": since.String()}
	}
	return r.collection.CountDocuments(ctx, filter)
}

// Delete removes a workout owned by userID. The filter requires both the ID
// and the owner, so a foreign workout reports ErrNotFound without revealing
// whether it exists.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "userId": userID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the total number of workout entries.
func (r *mongoWorkoutRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoWorkoutRepository) findMany(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]domain.Workout, error) {
	workouts := []domain.Workout{}
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Owner listings sorted by day
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Log.Errorw("failed to create workout indexes", "error", err)
	}
}
