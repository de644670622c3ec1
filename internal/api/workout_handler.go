package api

import (
	"errors"
	"fmt"
	"net/http"

	"workoutbuddy/server/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request Structs ---

// LogWorkoutRequest mirrors the workout entry form. Optional numerics are
// pointers so "absent" and "zero" stay distinguishable all the way down.
type LogWorkoutRequest struct {
	Exercise     string   `json:"exercise" binding:"required"`
	Type         string   `json:"type"`
	Sets         *int     `json:"sets"`
	Reps         *int     `json:"reps"`
	Weight       *float64 `json:"weight"`
	Duration     *float64 `json:"duration"`
	DurationUnit string   `json:"durationUnit"`
	Date         string   `json:"date" binding:"required"`
	Notes        string   `json:"notes"`
}

// --- Handler Methods ---

// ListWorkouts godoc
// @Summary List the authenticated user's workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Workout
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching workouts")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// LogWorkout godoc
// @Summary Log a new workout entry
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body LogWorkoutRequest true "Workout details"
// @Success 201 {object} domain.Workout
// @Failure 400 {object} gin.H "Missing exercise or invalid date"
// @Router /workouts [post]
func (h *WorkoutHandler) LogWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.Log(c.Request.Context(), userID, service.LogWorkoutInput{
		Exercise:     req.Exercise,
		Type:         req.Type,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		Duration:     req.Duration,
		DurationUnit: req.DurationUnit,
		Date:         req.Date,
		Notes:        req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseRequired),
			errors.Is(err, service.ErrDateRequired),
			errors.Is(err, service.ErrInvalidDate):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Error creating workout")
		}
		return
	}

	c.JSON(http.StatusCreated, workout)
}

// DeleteWorkout godoc
// @Summary Delete one of the authenticated user's workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} gin.H "Deletion confirmation"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	// A malformed ID gets the same answer as a foreign or missing one, so
	// the endpoint never confirms what exists.
	workoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrWorkoutNotFound.Error())
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), userID, workoutID); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error deleting workout")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workout deleted successfully"})
}

// WorkoutStats godoc
// @Summary Dashboard stats for the authenticated user
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.WorkoutStats
// @Router /workouts/stats [get]
func (h *WorkoutHandler) WorkoutStats(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	stats, err := h.workoutService.Stats(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error computing stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// WorkoutCalendar godoc
// @Summary Workouts grouped by calendar day
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]domain.Workout
// @Router /workouts/calendar [get]
func (h *WorkoutHandler) WorkoutCalendar(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	calendar, err := h.workoutService.Calendar(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error building calendar")
		return
	}
	c.JSON(http.StatusOK, calendar)
}
