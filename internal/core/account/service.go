// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package account

import (
	"context"
	"log/slog"

	"github.com/questline/questline/internal/core/mission"
	"github.com/questline/questline/internal/core/reward"
	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/validate"
	"github.com/questline/questline/pkg/uuid"
)

// # Service Layer

// MissionViews is the slice of the mission catalogue the profile summary needs.
type MissionViews interface {
	ListActiveForUser(context context.Context, userID string) ([]*mission.Mission, error)
	ListParticipatingByUser(context context.Context, userID string) ([]*mission.Mission, error)
	ListCompletedByUser(context context.Context, userID string) ([]*mission.Mission, error)
}

// RewardViews is the slice of the reward catalogue the profile summary needs.
type RewardViews interface {
	ListAvailableForUser(context context.Context, userID string) ([]*reward.Reward, error)
	ListClaimedByUser(context context.Context, userID string) ([]*reward.Reward, error)
	ListHandedToUser(context context.Context, userID string) ([]*reward.Reward, error)
}

// Service orchestrates user profile management and the per-user summaries
// of mission and reward state.
type Service struct {
	repo     Repository
	missions MissionViews
	rewards  RewardViews
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(repo Repository, missions MissionViews, rewards RewardViews, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		missions: missions,
		rewards:  rewards,
		logger:   logger,
	}
}

// # Inputs & Views

// AddUserInput carries the fields for a new user profile.
type AddUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserMissions is the per-user mission summary.
type UserMissions struct {
	Active        []*mission.Mission `json:"active"`
	Participating []*mission.Mission `json:"participating"`
	Completed     []*mission.Mission `json:"completed"`
}

// ReceivedReward pairs a reward with the number of times it was handed to
// the user.
type ReceivedReward struct {
	Reward *reward.Reward `json:"reward"`
	Count  int            `json:"count"`
}

// UserRewards is the per-user reward summary.
type UserRewards struct {
	Available []*reward.Reward `json:"available"`
	Claimed   []*reward.Reward `json:"claimed"`
	Received  []ReceivedReward `json:"received"`
}

// # Profile Management

// GetUsers retrieves a paginated collection of user profiles.
func (service *Service) GetUsers(context context.Context, limit, offset int) ([]*User, int, error) {
	return service.repo.List(context, limit, offset)
}

// GetUser fetches a single profile by UUID.
func (service *Service) GetUser(context context.Context, id string) (*User, error) {
	return service.repo.GetByID(context, id)
}

/*
AddUser creates a profile with a fresh ledger (zero balance, zero lifetime
total) and a generated UUID.

Parameters:
  - context: context.Context
  - input: AddUserInput (Profile fields)

Returns:
  - *User: The created profile
  - error: Validation or repository errors
*/
func (service *Service) AddUser(context context.Context, input AddUserInput) (*User, error) {
	v := &validate.Validator{}
	err := v.
		Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		Required("email", input.Email).
		Email("email", input.Email).
		Err()
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	user := &User{ID: id, Name: input.Name, Email: input.Email}
	if err := service.repo.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

/*
CreateProfile creates a profile for an already-assigned UUID. Used by the
registration flow, where the identity record owns the id.
*/
func (service *Service) CreateProfile(context context.Context, id, name, email string) (*User, error) {
	user := &User{ID: id, Name: name, Email: email}
	if err := service.repo.Create(context, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a profile. Whether the user has recorded history is
// the caller's responsibility to check; this operation does not.
func (service *Service) DeleteUser(context context.Context, id string) error {
	return service.repo.Delete(context, id)
}

// # Per-User Summaries

/*
GetUserMissions assembles the user's mission summary: missions still open
to them, missions they participate in, and missions they completed.

Returns:
  - *UserMissions: The three mission lists
  - error: apperr.NotFound if the user is absent
*/
func (service *Service) GetUserMissions(context context.Context, userID string) (*UserMissions, error) {
	if err := service.requireUser(context, userID); err != nil {
		return nil, err
	}

	active, err := service.missions.ListActiveForUser(context, userID)
	if err != nil {
		return nil, err
	}

	participating, err := service.missions.ListParticipatingByUser(context, userID)
	if err != nil {
		return nil, err
	}

	completed, err := service.missions.ListCompletedByUser(context, userID)
	if err != nil {
		return nil, err
	}

	return &UserMissions{
		Active:        active,
		Participating: participating,
		Completed:     completed,
	}, nil
}

/*
GetUserRewards assembles the user's reward summary: rewards they could
claim, outstanding claims, and rewards already handed to them with repeat
counts.

Returns:
  - *UserRewards: The three reward lists
  - error: apperr.NotFound if the user is absent
*/
func (service *Service) GetUserRewards(context context.Context, userID string) (*UserRewards, error) {
	if err := service.requireUser(context, userID); err != nil {
		return nil, err
	}

	available, err := service.rewards.ListAvailableForUser(context, userID)
	if err != nil {
		return nil, err
	}

	claimed, err := service.rewards.ListClaimedByUser(context, userID)
	if err != nil {
		return nil, err
	}

	handed, err := service.rewards.ListHandedToUser(context, userID)
	if err != nil {
		return nil, err
	}

	received := make([]ReceivedReward, 0, len(handed))
	for _, r := range handed {
		received = append(received, ReceivedReward{Reward: r, Count: r.HandedCount(userID)})
	}

	return &UserRewards{
		Available: available,
		Claimed:   claimed,
		Received:  received,
	}, nil
}

// requireUser maps a missing profile to NotFound.
func (service *Service) requireUser(context context.Context, userID string) error {
	exists, err := service.repo.Exists(context, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("User")
	}
	return nil
}
