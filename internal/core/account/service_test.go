// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package account_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline/internal/core/account"
	"github.com/questline/questline/internal/core/mission"
	"github.com/questline/questline/internal/core/reward"
	"github.com/questline/questline/internal/platform/apperr"
)

// # Test Doubles

type memoryRepo struct {
	users map[string]*account.User
}

func newMemoryRepo(users ...*account.User) *memoryRepo {
	repo := &memoryRepo{users: map[string]*account.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (repo *memoryRepo) List(_ context.Context, limit, offset int) ([]*account.User, int, error) {
	var all []*account.User
	for _, u := range repo.users {
		all = append(all, u)
	}
	return all, len(all), nil
}

func (repo *memoryRepo) GetByID(_ context.Context, id string) (*account.User, error) {
	u, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return u, nil
}

func (repo *memoryRepo) Create(_ context.Context, u *account.User) error {
	if _, ok := repo.users[u.ID]; ok {
		return apperr.ErrAccountExists
	}
	repo.users[u.ID] = u
	return nil
}

func (repo *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := repo.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repo.users, id)
	return nil
}

func (repo *memoryRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := repo.users[id]
	return ok, nil
}

func (repo *memoryRepo) FindBalance(_ context.Context, id string) (int, error) {
	u, ok := repo.users[id]
	if !ok {
		return 0, apperr.NotFound("User")
	}
	return u.Balance, nil
}

func (repo *memoryRepo) GivePoints(_ context.Context, id string, points int) error {
	u := repo.users[id]
	u.Balance += points
	u.TotalPoints += points
	return nil
}

func (repo *memoryRepo) WithdrawPoints(_ context.Context, id string, amount int) error {
	u := repo.users[id]
	if u.Balance < amount {
		return apperr.ErrInsufficientBalance
	}
	u.Balance -= amount
	return nil
}

func (repo *memoryRepo) RefundPoints(_ context.Context, id string, amount int) error {
	repo.users[id].Balance += amount
	return nil
}

type fakeMissionViews struct {
	active, participating, completed []*mission.Mission
}

func (views *fakeMissionViews) ListActiveForUser(_ context.Context, _ string) ([]*mission.Mission, error) {
	return views.active, nil
}

func (views *fakeMissionViews) ListParticipatingByUser(_ context.Context, _ string) ([]*mission.Mission, error) {
	return views.participating, nil
}

func (views *fakeMissionViews) ListCompletedByUser(_ context.Context, _ string) ([]*mission.Mission, error) {
	return views.completed, nil
}

type fakeRewardViews struct {
	available, claimed, handed []*reward.Reward
}

func (views *fakeRewardViews) ListAvailableForUser(_ context.Context, _ string) ([]*reward.Reward, error) {
	return views.available, nil
}

func (views *fakeRewardViews) ListClaimedByUser(_ context.Context, _ string) ([]*reward.Reward, error) {
	return views.claimed, nil
}

func (views *fakeRewardViews) ListHandedToUser(_ context.Context, _ string) ([]*reward.Reward, error) {
	return views.handed, nil
}

const aliceID = "0192cccc-0000-7000-8000-000000000001"

func newService(repo *memoryRepo, missions account.MissionViews, rewards account.RewardViews) *account.Service {
	return account.NewService(repo, missions, rewards, slog.New(slog.DiscardHandler))
}

// # Tests

/*
TestAddUser validates profile creation and its input rules.
*/
func TestAddUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_profile_with_zero_ledger", func(t *testing.T) {
		repo := newMemoryRepo()
		service := newService(repo, &fakeMissionViews{}, &fakeRewardViews{})

		user, err := service.AddUser(ctx, account.AddUserInput{Name: "Alice", Email: "alice@example.com"})

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, 0, user.Balance)
		assert.Equal(t, 0, user.TotalPoints)
	})

	t.Run("rejects_invalid_email", func(t *testing.T) {
		service := newService(newMemoryRepo(), &fakeMissionViews{}, &fakeRewardViews{})

		_, err := service.AddUser(ctx, account.AddUserInput{Name: "Alice", Email: "not-an-email"})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})
}

/*
TestGetUserRewards verifies the reward summary assembly including repeat
hand-out counts.
*/
func TestGetUserRewards(t *testing.T) {
	ctx := context.Background()

	handed := &reward.Reward{
		ID: "r1",
		Handed: []reward.Claim{
			{UserID: aliceID},
			{UserID: aliceID},
			{UserID: "someone-else"},
		},
	}

	repo := newMemoryRepo(&account.User{ID: aliceID})
	service := newService(repo, &fakeMissionViews{}, &fakeRewardViews{handed: []*reward.Reward{handed}})

	summary, err := service.GetUserRewards(ctx, aliceID)

	require.NoError(t, err)
	require.Len(t, summary.Received, 1)
	assert.Equal(t, 2, summary.Received[0].Count)
}

/*
TestGetUserMissions_UnknownUser verifies the existence probe ahead of the
summary queries.
*/
func TestGetUserMissions_UnknownUser(t *testing.T) {
	service := newService(newMemoryRepo(), &fakeMissionViews{}, &fakeRewardViews{})

	_, err := service.GetUserMissions(context.Background(), aliceID)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}
