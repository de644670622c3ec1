package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/repository/file"
	"workoutbuddy/server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-do-not-use-in-production"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := file.Open("")
	require.NoError(t, err)
	userRepo := file.NewUserRepository(store)
	workoutRepo := file.NewWorkoutRepository(store)
	friendshipRepo := file.NewFriendshipRepository(store)

	authService := service.NewAuthService(userRepo, testJWTSecret, time.Hour)
	workoutService := service.NewWorkoutService(workoutRepo)
	friendService := service.NewFriendService(userRepo, friendshipRepo)
	socialService := service.NewSocialService(userRepo, workoutRepo, friendshipRepo, friendService)

	router := gin.New()
	SetupRoutes(router, testJWTSecret, "file", authService, workoutService, friendService, socialService)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// registerUser creates an account through the API and returns its token and ID.
func registerUser(t *testing.T, router *gin.Engine, username string) (token, userID string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

// --- Auth ---

func TestRegisterAndLogin(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "ada",
		"email":    "Ada@Example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered AuthResponse
	decode(t, rec, &registered)
	assert.Equal(t, "ada", registered.User.Username)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var logged AuthResponse
	decode(t, rec, &logged)
	assert.Equal(t, registered.User.ID, logged.User.ID)
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "ada")

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "duplicate email", body: gin.H{"username": "grace", "email": "ADA@example.com", "password": "long enough password"}},
		{name: "duplicate username", body: gin.H{"username": "ada", "email": "grace@example.com", "password": "long enough password"}},
		{name: "short password", body: gin.H{"username": "grace", "email": "grace@example.com", "password": "short"}},
		{name: "invalid email", body: gin.H{"username": "grace", "email": "not-an-email", "password": "long enough password"}},
		{name: "missing username", body: gin.H{"email": "grace@example.com", "password": "long enough password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "ada")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "wrong password entirely",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/api/v1/workouts", "/api/v1/friends", "/api/v1/feed", "/api/v1/leaderboard", "/api/v1/me"}
	for _, path := range paths {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/workouts", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	router := newTestRouter(t)
	token, userID := registerUser(t, router, "ada")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, userID, resp["userId"])
	assert.Equal(t, "ada", resp["username"])
}

// --- Workouts ---

func TestWorkoutLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "ada")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/workouts", token, gin.H{
		"exercise": "Bench Press",
		"sets":     3,
		"reps":     8,
		"weight":   80,
		"date":     "2024-06-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Workout
	decode(t, rec, &created)
	assert.Equal(t, "Bench Press", created.Exercise)
	assert.Equal(t, domain.WorkoutTypeDefault, created.Type)
	assert.Equal(t, "2024-06-10", created.Date.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/workouts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var workouts []domain.Workout
	decode(t, rec, &workouts)
	require.Len(t, workouts, 1)
	assert.Equal(t, created.ID, workouts[0].ID)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/workouts/"+created.ID.Hex(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting again, or with a malformed ID, is the same 404.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/workouts/"+created.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/workouts/not-an-id", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkoutDeleteIsOwnerScoped(t *testing.T) {
	router := newTestRouter(t)
	adaToken, _ := registerUser(t, router, "ada")
	graceToken, _ := registerUser(t, router, "grace")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/workouts", adaToken, gin.H{
		"exercise": "Squats",
		"date":     "2024-06-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Workout
	decode(t, rec, &created)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/workouts/"+created.ID.Hex(), graceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "foreign delete must look like a missing workout")

	rec = doJSON(t, router, http.MethodGet, "/api/v1/workouts", adaToken, nil)
	var workouts []domain.Workout
	decode(t, rec, &workouts)
	assert.Len(t, workouts, 1)
}

func TestLogWorkoutValidation(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "ada")

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing exercise", body: gin.H{"date": "2024-06-10"}},
		{name: "missing date", body: gin.H{"exercise": "Squats"}},
		{name: "invalid date", body: gin.H{"exercise": "Squats", "date": "06/10/2024"}},
		{name: "impossible date", body: gin.H{"exercise": "Squats", "date": "2024-02-30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/workouts", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestWorkoutStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "ada")

	today := domain.Today()
	for _, d := range []domain.CalendarDate{today, today.AddDays(-1)} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/workouts", token, gin.H{
			"exercise":     "Run",
			"type":         "cardio",
			"duration":     30,
			"durationUnit": "minutes",
			"date":         d.String(),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/workouts/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats service.WorkoutStats
	decode(t, rec, &stats)
	assert.Equal(t, 2, stats.TotalWorkouts)
	assert.Equal(t, 1, stats.TodayCount)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.InDelta(t, 60.0, stats.TotalMinutes, 1e-9)
}

func TestWorkoutCalendarEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "ada")

	for _, d := range []string{"2024-06-10", "2024-06-10", "2024-06-12"} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/workouts", token, gin.H{
			"exercise": "Rowing",
			"date":     d,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/workouts/calendar", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var calendar map[string][]domain.Workout
	decode(t, rec, &calendar)
	require.Len(t, calendar, 2)
	assert.Len(t, calendar["2024-06-10"], 2)
	assert.Len(t, calendar["2024-06-12"], 1)
}

// --- Friends ---

func TestFriendRequestFlow(t *testing.T) {
	router := newTestRouter(t)
	adaToken, _ := registerUser(t, router, "ada")
	graceToken, graceID := registerUser(t, router, "grace")

	// ada finds grace and sends a request.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/search?query=grace", adaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []UserResponse
	decode(t, rec, &found)
	require.Len(t, found, 1)
	assert.Equal(t, graceID, found[0].ID)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": graceID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sent map[string]string
	decode(t, rec, &sent)
	assert.Equal(t, "pending", sent["status"])
	requestID := sent["requestId"]
	require.NotEmpty(t, requestID)

	// Sending again is a conflict, from both directions.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": graceID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// grace sees the pending request and accepts it.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/friends/requests", graceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var requests FriendRequestsResponse
	decode(t, rec, &requests)
	require.Len(t, requests.Received, 1)
	assert.Empty(t, requests.Sent)
	assert.Equal(t, "ada", requests.Received[0].Username)
	assert.Equal(t, requestID, requests.Received[0].ID)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/friends/requests/"+requestID+"/accept", graceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Both sides now list each other as friends.
	for _, token := range []string{adaToken, graceToken} {
		rec = doJSON(t, router, http.MethodGet, "/api/v1/friends", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var friends []FriendResponse
		decode(t, rec, &friends)
		require.Len(t, friends, 1)
	}

	// Search no longer surfaces the connected user.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/search?query=grace", adaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &found)
	assert.Empty(t, found)
}

func TestFriendRequestRejections(t *testing.T) {
	router := newTestRouter(t)
	adaToken, adaID := registerUser(t, router, "ada")
	_, graceID := registerUser(t, router, "grace")

	// Self-request.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": adaID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown and malformed target IDs.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": "64a000000000000000000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": "not-an-id"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing body field.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Accepting one's own request is not found.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": graceID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sent map[string]string
	decode(t, rec, &sent)
	rec = doJSON(t, router, http.MethodPut, "/api/v1/friends/requests/"+sent["requestId"]+"/accept", adaToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeclineAndUnfriend(t *testing.T) {
	router := newTestRouter(t)
	adaToken, _ := registerUser(t, router, "ada")
	graceToken, graceID := registerUser(t, router, "grace")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": graceID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sent map[string]string
	decode(t, rec, &sent)

	// grace declines; re-requesting immediately afterwards works.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/friends/requests/"+sent["requestId"], graceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/friends/requests/"+sent["requestId"], graceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": graceID})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &sent)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/friends/requests/"+sent["requestId"]+"/accept", graceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accepted map[string]string
	decode(t, rec, &accepted)
	friendshipID := accepted["friendshipId"]
	require.NotEmpty(t, friendshipID)

	// Unfriend from the requester's side.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/friends/"+friendshipID, adaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/friends/"+friendshipID, graceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Social ---

func TestFeedAndLeaderboard(t *testing.T) {
	router := newTestRouter(t)
	adaToken, _ := registerUser(t, router, "ada")
	graceToken, graceID := registerUser(t, router, "grace")
	eveToken, _ := registerUser(t, router, "eve")

	// ada and grace become friends; eve stays unconnected.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/friends", adaToken, gin.H{"friendId": graceID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sent map[string]string
	decode(t, rec, &sent)
	rec = doJSON(t, router, http.MethodPut, "/api/v1/friends/requests/"+sent["requestId"]+"/accept", graceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	today := domain.Today()
	logFor := func(token string, dates ...domain.CalendarDate) {
		for _, d := range dates {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/workouts", token, gin.H{
				"exercise": "Run",
				"type":     "cardio",
				"date":     d.String(),
			})
			require.Equal(t, http.StatusCreated, rec.Code)
		}
	}
	logFor(adaToken, today, today.AddDays(-1), today.AddDays(-2))
	logFor(graceToken, today, today.AddDays(-1), today.AddDays(-2), today.AddDays(-3), today.AddDays(-4))
	logFor(eveToken, today)

	// The feed covers ada and grace only.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/feed", adaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed []FeedItemResponse
	decode(t, rec, &feed)
	require.Len(t, feed, 8)
	for _, item := range feed {
		assert.NotEqual(t, "eve", item.User.Username)
	}

	// Leaderboard: grace 5, ada 3, requester flagged.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/leaderboard?period=week", adaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []service.LeaderboardEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "grace", entries[0].Username)
	assert.Equal(t, int64(5), entries[0].TotalWorkouts)
	assert.Equal(t, "ada", entries[1].Username)
	assert.True(t, entries[1].IsCurrentUser)

	// eve's leaderboard is just eve.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/leaderboard", eveToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "eve", entries[0].Username)
}

func TestPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "ada")
	registerUser(t, router, "grace")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	decode(t, rec, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "file", health["database"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats InstanceStatsResponse
	decode(t, rec, &stats)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(0), stats.TotalWorkouts)
	assert.Len(t, stats.Users, 2)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}
