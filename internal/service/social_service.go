package service

import (
	"context"
	"sort"

	"workoutbuddy/server/internal/domain"
	"workoutbuddy/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const feedLimit = 50

// FeedItem is a workout annotated with its owner for the social feed.
type FeedItem struct {
	Workout domain.Workout
	User    domain.User
}

// LeaderboardEntry is one member of the requester's friend circle ranked by
// workout count within the period.
type LeaderboardEntry struct {
	UserID        primitive.ObjectID `json:"userId"`
	Username      string             `json:"username"`
	TotalWorkouts int64              `json:"totalWorkouts"`
	IsCurrentUser bool               `json:"isCurrentUser"`
}

// InstanceStats is the public instance overview.
type InstanceStats struct {
	TotalUsers       int64
	TotalWorkouts    int64
	TotalFriendships int64
	Users            []domain.User
}

// SocialService derives the feed and leaderboard from the workout ledger
// scoped by the friendship graph. It is read-only and stateless: everything
// is computed at request time.
type SocialService interface {
	Feed(ctx context.Context, userID primitive.ObjectID) ([]FeedItem, error)
	Leaderboard(ctx context.Context, userID primitive.ObjectID, period string) ([]LeaderboardEntry, error)
	Overview(ctx context.Context) (*InstanceStats, error)
}

type socialService struct {
	userRepo       repository.UserRepository
	workoutRepo    repository.WorkoutRepository
	friendshipRepo repository.FriendshipRepository
	friendService  FriendService
}

// NewSocialService creates a new instance of socialService.
func NewSocialService(
	userRepo repository.UserRepository,
	workoutRepo repository.WorkoutRepository,
	friendshipRepo repository.FriendshipRepository,
	friendService FriendService,
) SocialService {
	return &socialService{
		userRepo:       userRepo,
		workoutRepo:    workoutRepo,
		friendshipRepo: friendshipRepo,
		friendService:  friendService,
	}
}

// Feed returns the most recent entries across the requester's accepted
// friends and themselves, most recent day first. Pending connections are
// not part of the set.
func (s *socialService) Feed(ctx context.Context, userID primitive.ObjectID) ([]FeedItem, error) {
	memberIDs, err := s.friendService.FriendIDsIncludingSelf(ctx, userID)
	if err != nil {
		return nil, err
	}

	workouts, err := s.workoutRepo.GetByUserIDs(ctx, memberIDs, feedLimit)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	feed := []FeedItem{}
	for _, w := range workouts {
		owner, ok := byID[w.UserID]
		if !ok {
			continue
		}
		feed = append(feed, FeedItem{Workout: w, User: owner})
	}
	return feed, nil
}

// Leaderboard ranks the requester's friend circle (including themselves) by
// workout count within the period window, highest first. The sort is stable,
// so ties keep the member ordering.
func (s *socialService) Leaderboard(ctx context.Context, userID primitive.ObjectID, period string) ([]LeaderboardEntry, error) {
	memberIDs, err := s.friendService.FriendIDsIncludingSelf(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	cutoff := periodCutoff(period, domain.Today())

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		count, err := s.workoutRepo.CountByUserSince(ctx, u.ID, cutoff)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			UserID:        u.ID,
			Username:      u.Username,
			TotalWorkouts: count,
			IsCurrentUser: u.ID == userID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalWorkouts > entries[j].TotalWorkouts
	})
	return entries, nil
}

// Overview reports instance-wide totals and the registered users, newest
// first. Served without authentication.
func (s *socialService) Overview(ctx context.Context) (*InstanceStats, error) {
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalWorkouts, err := s.workoutRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalFriendships, err := s.friendshipRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return &InstanceStats{
		TotalUsers:       totalUsers,
		TotalWorkouts:    totalWorkouts,
		TotalFriendships: totalFriendships,
		Users:            users,
	}, nil
}
