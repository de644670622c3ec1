package repository

import (
	"context"

	"workoutbuddy/server/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer. Uniqueness violations surface as
// the specific conflict errors so the service layer can report which field
// collided even when the write lost a race against the unique index.
var (
	ErrNotFound          = RepositoryError("not found")
	ErrDuplicateEmail    = RepositoryError("email already registered")
	ErrDuplicateUsername = RepositoryError("username already taken")
	ErrDuplicatePair     = RepositoryError("friendship already exists for this pair")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	// Search matches the query case-insensitively against username and email,
	// excluding the given IDs, capped at limit results.
	Search(ctx context.Context, query string, excludeIDs []primitive.ObjectID, limit int64) ([]domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// WorkoutRepository defines the interface for interacting with workout entries.
// All listings are ordered by date descending, then creation time descending.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	GetByUserIDs(ctx context.Context, userIDs []primitive.ObjectID, limit int64) ([]domain.Workout, error)
	// CountByUserSince counts a user's workouts with date >= since; a nil
	// since counts everything.
	CountByUserSince(ctx context.Context, userID primitive.ObjectID, since *domain.CalendarDate) (int64, error)
	// Delete removes a workout only when owned by userID; a missing or
	// foreign ID reports ErrNotFound either way.
	Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// FriendshipRepository defines the interface for interacting with friendship
// edges. Edges are stored once per unordered pair in canonical slot order.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *domain.Friendship) (primitive.ObjectID, error)
	GetByPair(ctx context.Context, a, b primitive.ObjectID) (*domain.Friendship, error)
	// GetByUser lists edges where userID is either pair member, optionally
	// filtered by status ("" means any).
	GetByUser(ctx context.Context, userID primitive.ObjectID, status domain.FriendshipStatus) ([]domain.Friendship, error)
	// Accept transitions a pending edge to accepted. The filter is scoped to
	// status=pending and recipient=recipientID, so accepting an already
	// accepted edge (or someone else's request) reports ErrNotFound.
	Accept(ctx context.Context, id primitive.ObjectID, recipientID primitive.ObjectID) (*domain.Friendship, error)
	// DeleteForMember removes an edge in the given status when memberID is
	// either pair member.
	DeleteForMember(ctx context.Context, id primitive.ObjectID, memberID primitive.ObjectID, status domain.FriendshipStatus) error
	Count(ctx context.Context) (int64, error)
}
