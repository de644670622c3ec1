package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSelfFriend         = errors.New("cannot add yourself as a friend")
	ErrRequestPending     = errors.New("friend request already sent")
	ErrAlreadyFriends     = errors.New("already friends")
	ErrUserNotFound       = errors.New("user not found")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrFriendshipNotFound = errors.New("friendship not found")
)

const searchResultLimit = 10

// FriendSummary is an accepted friend resolved to the other side of the edge.
type FriendSummary struct {
	User         domain.User
	FriendshipID primitive.ObjectID
	Since        time.Time
}

// RequestSummary is a pending request resolved to the other party.
type RequestSummary struct {
	RequestID primitive.ObjectID
	User      domain.User
	CreatedAt time.Time
}

// FriendRequests are a user's pending edges split by direction.
type FriendRequests struct {
	Sent     []RequestSummary
	Received []RequestSummary
}

// FriendService owns the friendship graph: the request state machine
// (NONE -> PENDING -> ACCEPTED, with deletions back to NONE), membership
// queries, and user search scoped to not-yet-connected users.
type FriendService interface {
	Search(ctx context.Context, userID primitive.ObjectID, query string) ([]domain.User, error)
	SendRequest(ctx context.Context, requesterID, recipientID primitive.ObjectID) (*RequestSummary, error)
	AcceptRequest(ctx context.Context, requestID, userID primitive.ObjectID) (*FriendSummary, error)
	DeclineRequest(ctx context.Context, requestID, userID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, friendshipID, userID primitive.ObjectID) error
	ListFriends(ctx context.Context, userID primitive.ObjectID) ([]FriendSummary, error)
	ListRequests(ctx context.Context, userID primitive.ObjectID) (*FriendRequests, error)
	FriendIDsIncludingSelf(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type friendService struct {
	userRepo       repository.UserRepository
	friendshipRepo repository.FriendshipRepository
}

// NewFriendService creates a new instance of friendService.
func NewFriendService(userRepo repository.UserRepository, friendshipRepo repository.FriendshipRepository) FriendService {
	return &friendService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
	}
}

// Search finds users matching the query, hiding the caller and everyone
// already connected to them by any edge, pending included. An empty query
// returns nothing.
func (s *friendService) Search(ctx context.Context, userID primitive.ObjectID, query string) ([]domain.User, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.User{}, nil
	}

	edges, err := s.friendshipRepo.GetByUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	excludeIDs := make([]primitive.ObjectID, 0, len(edges)+1)
	excludeIDs = append(excludeIDs, userID)
	for i := range edges {
		excludeIDs = append(excludeIDs, edges[i].OtherSide(userID))
	}

	return s.userRepo.Search(ctx, query, excludeIDs, searchResultLimit)
}

// SendRequest creates a pending edge from requester to recipient.
// Preconditions: distinct users, recipient exists, and no edge of any status
// already connects the pair.
func (s *friendService) SendRequest(ctx context.Context, requesterID, recipientID primitive.ObjectID) (*RequestSummary, error) {
	if requesterID == recipientID {
		return nil, ErrSelfFriend
	}

	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.friendshipRepo.GetByPair(ctx, requesterID, recipientID)
	if err == nil {
		if existing.Status == domain.FriendshipAccepted {
			return nil, ErrAlreadyFriends
		}
		return nil, ErrRequestPending
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	a, b := domain.CanonicalPair(requesterID, recipientID)
	friendship := &domain.Friendship{
		UserA:       a,
		UserB:       b,
		RequestedBy: requesterID,
		Status:      domain.FriendshipPending,
	}

	requestID, err := s.friendshipRepo.Create(ctx, friendship)
	if err != nil {
		// Lost a race against a simultaneous request for the same pair.
		if errors.Is(err, repository.ErrDuplicatePair) {
			return nil, ErrRequestPending
		}
		return nil, err
	}

	return &RequestSummary{
		RequestID: requestID,
		User:      *recipient,
		CreatedAt: friendship.CreatedAt,
	}, nil
}

// AcceptRequest transitions a pending edge to accepted. Only the recipient
// of a still-pending request can accept; an already accepted edge is not
// found, because acceptance is scoped to pending.
func (s *friendService) AcceptRequest(ctx context.Context, requestID, userID primitive.ObjectID) (*FriendSummary, error) {
	friendship, err := s.friendshipRepo.Accept(ctx, requestID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	requester, err := s.userRepo.GetByID(ctx, friendship.RequestedBy)
	if err != nil {
		return nil, err
	}

	return &FriendSummary{
		User:         *requester,
		FriendshipID: friendship.ID,
		Since:        friendship.CreatedAt,
	}, nil
}

// DeclineRequest deletes a pending edge. Either party may invoke it: the
// recipient rejects, the requester cancels — one operation for both. The
// edge is gone entirely afterwards, so the pair may re-request immediately.
func (s *friendService) DeclineRequest(ctx context.Context, requestID, userID primitive.ObjectID) error {
	err := s.friendshipRepo.DeleteForMember(ctx, requestID, userID, domain.FriendshipPending)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	return nil
}

// RemoveFriend deletes an accepted edge (unfriend), from either side.
func (s *friendService) RemoveFriend(ctx context.Context, friendshipID, userID primitive.ObjectID) error {
	err := s.friendshipRepo.DeleteForMember(ctx, friendshipID, userID, domain.FriendshipAccepted)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFriendshipNotFound
		}
		return err
	}
	return nil
}

// ListFriends resolves each accepted edge to the user on the other side.
func (s *friendService) ListFriends(ctx context.Context, userID primitive.ObjectID) ([]FriendSummary, error) {
	edges, err := s.friendshipRepo.GetByUser(ctx, userID, domain.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	friends := []FriendSummary{}
	for i := range edges {
		friend, err := s.userRepo.GetByID(ctx, edges[i].OtherSide(userID))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // Dangling edge; skip rather than fail the listing
			}
			return nil, err
		}
		friends = append(friends, FriendSummary{
			User:         *friend,
			FriendshipID: edges[i].ID,
			Since:        edges[i].CreatedAt,
		})
	}
	return friends, nil
}

// ListRequests splits the user's pending edges into sent and received,
// resolving the other party on each.
func (s *friendService) ListRequests(ctx context.Context, userID primitive.ObjectID) (*FriendRequests, error) {
	edges, err := s.friendshipRepo.GetByUser(ctx, userID, domain.FriendshipPending)
	if err != nil {
		return nil, err
	}

	requests := &FriendRequests{
		Sent:     []RequestSummary{},
		Received: []RequestSummary{},
	}
	for i := range edges {
		other, err := s.userRepo.GetByID(ctx, edges[i].OtherSide(userID))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		summary := RequestSummary{
			RequestID: edges[i].ID,
			User:      *other,
			CreatedAt: edges[i].CreatedAt,
		}
		if edges[i].RequestedBy == userID {
			requests.Sent = append(requests.Sent, summary)
		} else {
			requests.Received = append(requests.Received, summary)
		}
	}
	return requests, nil
}

// FriendIDsIncludingSelf returns {userID} union accepted friends. The
// aggregation engine scopes the feed and leaderboard with it.
func (s *friendService) FriendIDsIncludingSelf(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	edges, err := s.friendshipRepo.GetByUser(ctx, userID, domain.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(edges)+1)
	ids = append(ids, userID)
	for i := range edges {
		ids = append(ids, edges[i].OtherSide(userID))
	}
	return ids, nil
}
