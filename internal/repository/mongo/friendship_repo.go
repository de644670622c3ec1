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

const friendshipCollectionName = "friendships"

// mongoFriendshipRepository implements repository.FriendshipRepository.
// Edges are stored once per unordered pair in canonical slot order; the
// unique index on {userA, userB} is what ultimately enforces the
// one-edge-per-pair invariant under concurrent requests.
type mongoFriendshipRepository struct {
	collection *mongo.Collection
}

// NewMongoFriendshipRepository creates a new Friendship repository.
func NewMongoFriendshipRepository(db *mongo.Database) repository.FriendshipRepository {
	return &mongoFriendshipRepository{
		collection: db.Collection(friendshipCollectionName),
	}
}

// Create inserts a new friendship edge. The caller must have canonicalized
// the pair; self-edges are rejected here as a last line of defense.
func (r *mongoFriendshipRepository) Create(ctx context.Context, friendship *domain.Friendship) (primitive.ObjectID, error) {
	if friendship.UserA == primitive.NilObjectID || friendship.UserB == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("friendship requires both pair members")
	}
	if friendship.UserA == friendship.UserB {
		return primitive.NilObjectID, errors.New("friendship pair members must differ")
	}

	friendship.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	friendship.CreatedAt = now
	friendship.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, friendship)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicatePair
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted friendship ID")
	}
	return insertedID, nil
}

// GetByPair retrieves the edge for an unordered pair, in any status.
func (r *mongoFriendshipRepository) GetByPair(ctx context.Context, x, y primitive.ObjectID) (*domain.Friendship, error) {
	a, b := domain.CanonicalPair(x, y)
	var friendship domain.Friendship
	err := r.collection.FindOne(ctx, bson.M{"userA": a, "userB": b}).Decode(&friendship)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &friendship, nil
}

// GetByUser lists edges where userID is either pair member, optionally
// filtered by status.
func (r *mongoFriendshipRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, status domain.FriendshipStatus) ([]domain.Friendship, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"userA": userID},
			{"userB": userID},
		},
	}
	if status != "" {
		filter["status"] = status
	}

	friendships := []domain.Friendship{}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &friendships); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return friendships, nil
}

// Accept flips a pending edge to accepted. The filter is scoped to
// status=pending, membership, and requestedBy != recipient, so only the
// recipient of a still-pending request matches; everything else is
// ErrNotFound by construction.
func (r *mongoFriendshipRepository) Accept(ctx context.Context, id primitive.ObjectID, recipientID primitive.ObjectID) (*domain.Friendship, error) {
	filter := bson.M{
		"_id":         id,
		"status":      domain.FriendshipPending,
		"requestedBy": bson.M{"$ne": recipientID},
		"$or": []bson.M{
			{"userA": recipientID},
			{"userB": recipientID},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.FriendshipAccepted,
			"updatedAt": time.Now().UTC(),
		},
	}

	var friendship domain.Friendship
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&friendship)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &friendship, nil
}

// DeleteForMember removes an edge in the given status when memberID is one of
// the pair. Covers reject (recipient), cancel (requester), and unfriend
// (either side) depending on the status passed.
func (r *mongoFriendshipRepository) DeleteForMember(ctx context.Context, id primitive.ObjectID, memberID primitive.ObjectID, status domain.FriendshipStatus) error {
	filter := bson.M{
		"_id":    id,
		"status": status,
		"$or": []bson.M{
			{"userA": memberID},
			{"userB": memberID},
		},
	}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the total number of friendship edges.
func (r *mongoFriendshipRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsureFriendshipIndexes creates necessary indexes. The unique pair index
// backs the at-most-one-edge-per-pair invariant.
func EnsureFriendshipIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userA", Value: 1}, {Key: "userB", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userB", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Log.Errorw("failed to create friendship indexes", "error", err)
	}
}
