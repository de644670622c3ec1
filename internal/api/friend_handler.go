package api

import (
	"errors"
	"net/http"
	"time"

	"workoutbuddy/server/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendHandler holds the friend service dependency.
type FriendHandler struct {
	friendService service.FriendService
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// --- Request/Response Structs ---

type SendFriendRequestBody struct {
	FriendID string `json:"friendId" binding:"required"`
}

// FriendResponse is an accepted friend plus the edge needed to unfriend.
type FriendResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FriendshipID string    `json:"friendshipId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FriendRequestResponse is one side of a pending request.
type FriendRequestResponse struct {
	ID        string    `json:"id"` // Request ID, used to accept/decline
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type FriendRequestsResponse struct {
	Sent     []FriendRequestResponse `json:"sent"`
	Received []FriendRequestResponse `json:"received"`
}

// --- Handler Methods ---

// SearchUsers godoc
// @Summary Search users to befriend
// @Description Case-insensitive substring match on username and email,
// @Description hiding the caller and anyone already connected to them.
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Param query query string true "Search text"
// @Success 200 {array} UserResponse
// @Router /users/search [get]
func (h *FriendHandler) SearchUsers(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	users, err := h.friendService.Search(c.Request.Context(), userID, c.Query("query"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error searching users")
		return
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		results = append(results, MapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, results)
}

// ListFriends godoc
// @Summary List accepted friends
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Success 200 {array} FriendResponse
// @Router /friends [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	friends, err := h.friendService.ListFriends(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching friends")
		return
	}

	results := make([]FriendResponse, 0, len(friends))
	for _, f := range friends {
		results = append(results, FriendResponse{
			ID:           f.User.ID.Hex(),
			Username:     f.User.Username,
			Email:        f.User.Email,
			FriendshipID: f.FriendshipID.Hex(),
			CreatedAt:    f.Since,
		})
	}
	c.JSON(http.StatusOK, results)
}

// ListFriendRequests godoc
// @Summary List pending friend requests, sent and received
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FriendRequestsResponse
// @Router /friends/requests [get]
func (h *FriendHandler) ListFriendRequests(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	requests, err := h.friendService.ListRequests(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching friend requests")
		return
	}

	c.JSON(http.StatusOK, FriendRequestsResponse{
		Sent:     mapRequestSummaries(requests.Sent),
		Received: mapRequestSummaries(requests.Received),
	})
}

func mapRequestSummaries(summaries []service.RequestSummary) []FriendRequestResponse {
	results := make([]FriendRequestResponse, 0, len(summaries))
	for _, s := range summaries {
		results = append(results, FriendRequestResponse{
			ID:        s.RequestID.Hex(),
			UserID:    s.User.ID.Hex(),
			Username:  s.User.Username,
			Email:     s.User.Email,
			CreatedAt: s.CreatedAt,
		})
	}
	return results
}

// SendFriendRequest godoc
// @Summary Send a friend request
// @Tags Friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendFriendRequestBody true "Target user"
// @Success 201 {object} gin.H "Pending request details"
// @Failure 400 {object} gin.H "Self-request or edge already exists"
// @Failure 404 {object} gin.H "Target user not found"
// @Router /friends [post]
func (h *FriendHandler) SendFriendRequest(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var body SendFriendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, "Friend ID is required")
		return
	}
	friendID, err := primitive.ObjectIDFromHex(body.FriendID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrUserNotFound.Error())
		return
	}

	request, err := h.friendService.SendRequest(c.Request.Context(), userID, friendID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFriend),
			errors.Is(err, service.ErrRequestPending),
			errors.Is(err, service.ErrAlreadyFriends):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Error sending friend request")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        request.User.ID.Hex(),
		"username":  request.User.Username,
		"email":     request.User.Email,
		"requestId": request.RequestID.Hex(),
		"status":    "pending",
	})
}

// AcceptFriendRequest godoc
// @Summary Accept a received friend request
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Param requestId path string true "Request ID"
// @Success 200 {object} gin.H "New friend details"
// @Failure 404 {object} gin.H "Request not found, not pending, or not addressed to caller"
// @Router /friends/requests/{requestId}/accept [put]
func (h *FriendHandler) AcceptFriendRequest(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrRequestNotFound.Error())
		return
	}

	friend, err := h.friendService.AcceptRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error accepting friend request")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           friend.User.ID.Hex(),
		"username":     friend.User.Username,
		"email":        friend.User.Email,
		"friendshipId": friend.FriendshipID.Hex(),
		"message":      "Friend request accepted",
	})
}

// DeclineFriendRequest godoc
// @Summary Reject or cancel a pending friend request
// @Description The recipient rejects, the requester cancels; one operation
// @Description for both sides. The edge is deleted outright.
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Param requestId path string true "Request ID"
// @Success 200 {object} gin.H "Removal confirmation"
// @Failure 404 {object} gin.H "Request not found"
// @Router /friends/requests/{requestId} [delete]
func (h *FriendHandler) DeclineFriendRequest(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrRequestNotFound.Error())
		return
	}

	if err := h.friendService.DeclineRequest(c.Request.Context(), requestID, userID); err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error removing friend request")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request removed"})
}

// RemoveFriend godoc
// @Summary Unfriend (delete an accepted friendship)
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Param friendshipId path string true "Friendship ID"
// @Success 200 {object} gin.H "Removal confirmation"
// @Failure 404 {object} gin.H "Friendship not found"
// @Router /friends/{friendshipId} [delete]
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	friendshipID, err := primitive.ObjectIDFromHex(c.Param("friendshipId"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrFriendshipNotFound.Error())
		return
	}

	if err := h.friendService.RemoveFriend(c.Request.Context(), friendshipID, userID); err != nil {
		if errors.Is(err, service.ErrFriendshipNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error removing friend")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed successfully"})
}
