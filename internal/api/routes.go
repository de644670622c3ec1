package api

import (
	"net/http"

	"workoutbuddy/server/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers onto the router. Everything except auth,
// health, and the public stats page sits behind the JWT middleware.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	storageDriver string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	friendService service.FriendService,
	socialService service.SocialService,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	friendHandler := NewFriendHandler(friendService)
	socialHandler := NewSocialHandler(socialService, storageDriver)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/health", socialHandler.Health)
		apiV1.GET("/stats", socialHandler.Overview)

		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			username, _ := getUsernameFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "username": username})
		})

		// --- Workout Ledger ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("", workoutHandler.LogWorkout)
			workoutGroup.GET("/stats", workoutHandler.WorkoutStats)
			workoutGroup.GET("/calendar", workoutHandler.WorkoutCalendar)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
		}

		// --- Friendship Graph ---
		protected.GET("/users/search", friendHandler.SearchUsers)
		friendGroup := protected.Group("/friends")
		{
			friendGroup.GET("", friendHandler.ListFriends)
			friendGroup.POST("", friendHandler.SendFriendRequest)
			friendGroup.GET("/requests", friendHandler.ListFriendRequests)
			friendGroup.PUT("/requests/:requestId/accept", friendHandler.AcceptFriendRequest)
			friendGroup.DELETE("/requests/:requestId", friendHandler.DeclineFriendRequest)
			friendGroup.DELETE("/:friendshipId", friendHandler.RemoveFriend)
		}

		// --- Social views ---
		protected.GET("/feed", socialHandler.Feed)
		protected.GET("/leaderboard", socialHandler.Leaderboard)
	}
}
