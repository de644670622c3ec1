package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Known workout type values. "Type" is free-form on the wire but the client
// offers this fixed set; unknown values are stored as-is.
const (
	WorkoutTypeDefault = "strength training"
)

// Duration units accepted on a workout entry.
const (
	DurationUnitMinutes = "minutes"
	DurationUnitHours   = "hours"
)

// Workout is a single logged workout entry. Entries are immutable after
// creation: the only lifecycle operations are append and owner-delete.
// Absent numeric fields are stored as null (nil pointers), never as zero.
type Workout struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"` // Owner, immutable
	Exercise     string             `bson:"exercise" json:"exercise"`
	Type         string             `bson:"type" json:"type"`
	Sets         *int               `bson:"sets" json:"sets"`
	Reps         *int               `bson:"reps" json:"reps"`
	Weight       *float64           `bson:"weight" json:"weight"` // Legacy/optional
	Duration     *float64           `bson:"duration" json:"duration"`
	DurationUnit *string            `bson:"durationUnit" json:"durationUnit"` // "minutes" or "hours", set only with Duration
	Date         CalendarDate       `bson:"date" json:"date"`                 // Calendar day, no time-of-day semantics
	Notes        string             `bson:"notes" json:"notes"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DurationMinutes returns the entry's duration normalized to minutes, or 0
// if no duration was logged.
func (w *Workout) DurationMinutes() float64 {
	if w.Duration == nil {
		return 0
	}
	if w.DurationUnit != nil && *w.DurationUnit == DurationUnitHours {
		return *w.Duration * 60
	}
	return *w.Duration
}
