package file

import (
	"context"
	"errors"
	"sort"
	"time"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fileWorkoutRepository implements repository.WorkoutRepository over a Store.
type fileWorkoutRepository struct {
	store *Store
}

// NewWorkoutRepository creates a workout repository backed by the flat-file store.
func NewWorkoutRepository(store *Store) repository.WorkoutRepository {
	return &fileWorkoutRepository{store: store}
}

func (r *fileWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Exercise == "" || workout.Date.IsZero() {
		return primitive.NilObjectID, errors.New("workout requires userId, exercise, and date")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	r.store.data.Workouts = append(r.store.data.Workouts, *workout)
	if err := r.store.persistLocked(); err != nil {
		r.store.data.Workouts = r.store.data.Workouts[:len(r.store.data.Workouts)-1]
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

func (r *fileWorkoutRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workouts := []domain.Workout{}
	for _, w := range r.store.data.Workouts {
		if w.UserID == userID {
			workouts = append(workouts, w)
		}
	}
	sortWorkouts(workouts)
	return workouts, nil
}

func (r *fileWorkoutRepository) GetByUserIDs(ctx context.Context, userIDs []primitive.ObjectID, limit int64) ([]domain.Workout, error) {
	wanted := make(map[primitive.ObjectID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workouts := []domain.Workout{}
	for _, w := range r.store.data.Workouts {
		if wanted[w.UserID] {
			workouts = append(workouts, w)
		}
	}
	sortWorkouts(workouts)
	if limit > 0 && int64(len(workouts)) > limit {
		workouts = workouts[:limit]
	}
	return workouts, nil
}

func (r *fileWorkoutRepository) CountByUserSince(ctx context.Context, userID primitive.ObjectID, since *domain.CalendarDate) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, w := range r.store.data.Workouts {
		if w.UserID != userID {
			continue
		}
		if since != nil && w.Date.Before(*since) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fileWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, w := range r.store.data.Workouts {
		// Ownership is part of the match: a foreign workout is "not found".
		if w.ID == id && w.UserID == userID {
			removed := w
			r.store.data.Workouts = append(r.store.data.Workouts[:i], r.store.data.Workouts[i+1:]...)
			if err := r.store.persistLocked(); err != nil {
				r.store.data.Workouts = append(r.store.data.Workouts, removed)
				return err
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fileWorkoutRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.data.Workouts)), nil
}

// sortWorkouts orders entries by date descending, then creation time
// descending, matching the Mongo repository's sort.
func sortWorkouts(workouts []domain.Workout) {
	sort.SliceStable(workouts, func(i, j int) bool {
		if !workouts[i].Date.Equal(workouts[j].Date) {
			return workouts[i].Date.After(workouts[j].Date)
		}
		return workouts[i].CreatedAt.After(workouts[j].CreatedAt)
	})
}
