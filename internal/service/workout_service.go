package service

import (
	"context"
	"errors"
	"strings"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseRequired = errors.New("exercise is required")
	ErrDateRequired     = errors.New("date is required")
	ErrInvalidDate      = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrWorkoutNotFound  = errors.New("workout not found")
)

// LogWorkoutInput carries a new workout entry. Pointer fields are optional
// and stored as null when absent — never coerced to zero.
type LogWorkoutInput struct {
	Exercise     string
	Type         string
	Sets         *int
	Reps         *int
	Weight       *float64
	Duration     *float64
	DurationUnit string
	Date         string
	Notes        string
}

// WorkoutStats is the dashboard summary derived from a user's ledger.
type WorkoutStats struct {
	TotalWorkouts int     `json:"totalWorkouts"`
	TodayCount    int     `json:"todayCount"`
	CurrentStreak int     `json:"currentStreak"`
	TotalMinutes  float64 `json:"totalMinutes"`
}

// WorkoutService owns the per-user workout ledger: append, list, delete, and
// the derived stats and calendar groupings.
type WorkoutService interface {
	Log(ctx context.Context, userID primitive.ObjectID, input LogWorkoutInput) (*domain.Workout, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Delete(ctx context.Context, userID, workoutID primitive.ObjectID) error
	Stats(ctx context.Context, userID primitive.ObjectID) (*WorkoutStats, error)
	Calendar(ctx context.Context, userID primitive.ObjectID) (map[string][]domain.Workout, error)
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository) WorkoutService {
	return &workoutService{workoutRepo: workoutRepo}
}

// Log validates and appends a new entry. Entries are immutable afterwards;
// there is no edit operation.
func (s *workoutService) Log(ctx context.Context, userID primitive.ObjectID, input LogWorkoutInput) (*domain.Workout, error) {
	exercise := strings.TrimSpace(input.Exercise)
	if exercise == "" {
		return nil, ErrExerciseRequired
	}
	if strings.TrimSpace(input.Date) == "" {
		return nil, ErrDateRequired
	}
	date, err := domain.ParseCalendarDate(input.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	workoutType := strings.TrimSpace(input.Type)
	if workoutType == "" {
		workoutType = domain.WorkoutTypeDefault
	}

	// The unit only means something next to a duration.
	var durationUnit *string
	if input.Duration != nil {
		unit := input.DurationUnit
		if unit != domain.DurationUnitHours {
			unit = domain.DurationUnitMinutes
		}
		durationUnit = &unit
	}

	workout := &domain.Workout{
		UserID:       userID,
		Exercise:     exercise,
		Type:         workoutType,
		Sets:         input.Sets,
		Reps:         input.Reps,
		Weight:       input.Weight,
		Duration:     input.Duration,
		DurationUnit: durationUnit,
		Date:         date,
		Notes:        input.Notes,
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID
	return workout, nil
}

// List returns the user's entries, most recent day first.
func (s *workoutService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.GetByUserID(ctx, userID)
}

// Delete removes one of the user's own entries. A second delete of the same
// ID, or a delete of someone else's entry, reports ErrWorkoutNotFound.
func (s *workoutService) Delete(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// Stats derives the dashboard numbers: total entries, entries today, current
// streak anchored at today/yesterday, and total logged minutes.
func (s *workoutService) Stats(ctx context.Context, userID primitive.ObjectID) (*WorkoutStats, error) {
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.Today()
	dates := make([]domain.CalendarDate, len(workouts))
	todayCount := 0
	for i := range workouts {
		dates[i] = workouts[i].Date
		if workouts[i].Date.Equal(today) {
			todayCount++
		}
	}

	return &WorkoutStats{
		TotalWorkouts: len(workouts),
		TodayCount:    todayCount,
		CurrentStreak: CurrentStreak(dates, today),
		TotalMinutes:  TotalDurationMinutes(workouts),
	}, nil
}

// Calendar groups the user's entries by calendar day for the calendar view.
func (s *workoutService) Calendar(ctx context.Context, userID primitive.ObjectID) (map[string][]domain.Workout, error) {
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupWorkoutsByDay(workouts), nil
}
