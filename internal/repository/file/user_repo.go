package file

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fileUserRepository implements repository.UserRepository over a Store.
type fileUserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository backed by the flat-file store.
func NewUserRepository(store *Store) repository.UserRepository {
	return &fileUserRepository{store: store}
}

func (r *fileUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user username, email, and password hash are required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// The uniqueness checks Mongo delegates to its indexes happen here,
	// under the store lock.
	for i := range r.store.data.Users {
		existing := &r.store.data.Users[i]
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return primitive.NilObjectID, repository.ErrDuplicateUsername
		}
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.store.data.Users = append(r.store.data.Users, *user)
	if err := r.store.persistLocked(); err != nil {
		r.store.data.Users = r.store.data.Users[:len(r.store.data.Users)-1]
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (r *fileUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(func(u *domain.User) bool { return u.ID == id })
}

func (r *fileUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(func(u *domain.User) bool { return u.Email == email })
}

func (r *fileUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(func(u *domain.User) bool { return u.Username == username })
}

func (r *fileUserRepository) findOne(match func(*domain.User) bool) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.data.Users {
		if match(&r.store.data.Users[i]) {
			user := r.store.data.Users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fileUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := []domain.User{}
	for _, u := range r.store.data.Users {
		if wanted[u.ID] {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *fileUserRepository) Search(ctx context.Context, query string, excludeIDs []primitive.ObjectID, limit int64) ([]domain.User, error) {
	excluded := make(map[primitive.ObjectID]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	needle := strings.ToLower(query)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := []domain.User{}
	for _, u := range r.store.data.Users {
		if excluded[u.ID] {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(strings.ToLower(u.Email), needle) {
			users = append(users, u)
			if int64(len(users)) >= limit {
				break
			}
		}
	}
	return users, nil
}

func (r *fileUserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := make([]domain.User, len(r.store.data.Users))
	copy(users, r.store.data.Users)
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *fileUserRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.data.Users)), nil
}
