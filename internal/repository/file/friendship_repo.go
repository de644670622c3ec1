package file

import (
	"context"
	"errors"
	"time"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fileFriendshipRepository implements repository.FriendshipRepository over a Store.
type fileFriendshipRepository struct {
	store *Store
}

// NewFriendshipRepository creates a friendship repository backed by the
// flat-file store.
func NewFriendshipRepository(store *Store) repository.FriendshipRepository {
	return &fileFriendshipRepository{store: store}
}

func (r *fileFriendshipRepository) Create(ctx context.Context, friendship *domain.Friendship) (primitive.ObjectID, error) {
	if friendship.UserA == primitive.NilObjectID || friendship.UserB == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("friendship requires both pair members")
	}
	if friendship.UserA == friendship.UserB {
		return primitive.NilObjectID, errors.New("friendship pair members must differ")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.data.Friendships {
		existing := &r.store.data.Friendships[i]
		if existing.UserA == friendship.UserA && existing.UserB == friendship.UserB {
			return primitive.NilObjectID, repository.ErrDuplicatePair
		}
	}

	friendship.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	friendship.CreatedAt = now
	friendship.UpdatedAt = now

	r.store.data.Friendships = append(r.store.data.Friendships, *friendship)
	if err := r.store.persistLocked(); err != nil {
		r.store.data.Friendships = r.store.data.Friendships[:len(r.store.data.Friendships)-1]
		return primitive.NilObjectID, err
	}
	return friendship.ID, nil
}

func (r *fileFriendshipRepository) GetByPair(ctx context.Context, x, y primitive.ObjectID) (*domain.Friendship, error) {
	a, b := domain.CanonicalPair(x, y)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, f := range r.store.data.Friendships {
		if f.UserA == a && f.UserB == b {
			found := f
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fileFriendshipRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, status domain.FriendshipStatus) ([]domain.Friendship, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	friendships := []domain.Friendship{}
	for _, f := range r.store.data.Friendships {
		if !f.Involves(userID) {
			continue
		}
		if status != "" && f.Status != status {
			continue
		}
		friendships = append(friendships, f)
	}
	return friendships, nil
}

func (r *fileFriendshipRepository) Accept(ctx context.Context, id primitive.ObjectID, recipientID primitive.ObjectID) (*domain.Friendship, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.data.Friendships {
		f := &r.store.data.Friendships[i]
		if f.ID != id {
			continue
		}
		// Same scoping as the Mongo filter: pending, member, and not the
		// requester. Anything else is not found.
		if f.Status != domain.FriendshipPending || !f.Involves(recipientID) || f.RequestedBy == recipientID {
			return nil, repository.ErrNotFound
		}
		previousStatus := f.Status
		previousUpdated := f.UpdatedAt
		f.Status = domain.FriendshipAccepted
		f.UpdatedAt = time.Now().UTC()
		if err := r.store.persistLocked(); err != nil {
			f.Status = previousStatus
			f.UpdatedAt = previousUpdated
			return nil, err
		}
		accepted := *f
		return &accepted, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fileFriendshipRepository) DeleteForMember(ctx context.Context, id primitive.ObjectID, memberID primitive.ObjectID, status domain.FriendshipStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, f := range r.store.data.Friendships {
		if f.ID != id {
			continue
		}
		if f.Status != status || !f.Involves(memberID) {
			return repository.ErrNotFound
		}
		removed := f
		r.store.data.Friendships = append(r.store.data.Friendships[:i], r.store.data.Friendships[i+1:]...)
		if err := r.store.persistLocked(); err != nil {
			r.store.data.Friendships = append(r.store.data.Friendships, removed)
			return err
		}
		return nil
	}
	return repository.ErrNotFound
}

func (r *fileFriendshipRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.data.Friendships)), nil
}
