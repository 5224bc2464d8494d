// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package mission_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/core/mission"
)

// # Test Doubles

// memoryRepo is an in-memory [mission.Repository] that mirrors the guarded
// update semantics of the Postgres store.
type memoryRepo struct {
	missions map[string]*mission.Mission
}

func newMemoryRepo(missions ...*mission.Mission) *memoryRepo {
	repo := &memoryRepo{missions: map[string]*mission.Mission{}}
	for _, m := range missions {
		repo.missions[m.ID] = m
	}
	return repo
}

func (repo *memoryRepo) List(_ context.Context, limit, offset int) ([]*mission.Mission, int, error) {
	var all []*mission.Mission
	for _, m := range repo.missions {
		all = append(all, m)
	}
	return all, len(all), nil
}

func (repo *memoryRepo) GetByID(_ context.Context, id string) (*mission.Mission, error) {
	m, ok := repo.missions[id]
	if !ok {
		return nil, apperr.NotFound("Mission")
	}
	return m, nil
}

func (repo *memoryRepo) Create(_ context.Context, m *mission.Mission) error {
	repo.missions[m.ID] = m
	return nil
}

func (repo *memoryRepo) Update(_ context.Context, m *mission.Mission) error {
	if _, ok := repo.missions[m.ID]; !ok {
		return apperr.NotFound("Mission")
	}
	repo.missions[m.ID] = m
	return nil
}

func (repo *memoryRepo) Delete(_ context.Context, id string) error {
	m, ok := repo.missions[id]
	if !ok || len(m.Completers) > 0 {
		return apperr.ErrInvalidRequest
	}
	delete(repo.missions, id)
	return nil
}

func (repo *memoryRepo) Deactivate(_ context.Context, id string) error {
	m, ok := repo.missions[id]
	if !ok {
		return apperr.NotFound("Mission")
	}
	m.Active = false
	return nil
}

func contains(entries []mission.Participation, userID string) bool {
	for _, entry := range entries {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}

func (repo *memoryRepo) Subscribe(_ context.Context, missionID string, entry mission.Participation) error {
	m, ok := repo.missions[missionID]
	if !ok || !m.Active || m.IsExpired() || m.CreatedBy == entry.UserID ||
		contains(m.Participants, entry.UserID) || contains(m.Completers, entry.UserID) {
		return apperr.ErrAlreadySubscribed
	}
	m.Participants = append(m.Participants, entry)
	return nil
}

func (repo *memoryRepo) Complete(_ context.Context, missionID string, entry mission.Participation) error {
	m, ok := repo.missions[missionID]
	if !ok || !m.Active || !contains(m.Participants, entry.UserID) || contains(m.Completers, entry.UserID) {
		return apperr.ErrCantCompleteMission
	}

	var remaining []mission.Participation
	for _, p := range m.Participants {
		if p.UserID != entry.UserID {
			remaining = append(remaining, p)
		}
	}
	m.Participants = remaining
	m.Completers = append(m.Completers, entry)
	return nil
}

func (repo *memoryRepo) ListActiveForUser(_ context.Context, userID string) ([]*mission.Mission, error) {
	return nil, nil
}

func (repo *memoryRepo) ListParticipatingByUser(_ context.Context, userID string) ([]*mission.Mission, error) {
	return nil, nil
}

func (repo *memoryRepo) ListCompletedByUser(_ context.Context, userID string) ([]*mission.Mission, error) {
	return nil, nil
}

// memoryLedger is an in-memory user ledger.
type memoryLedger struct {
	balances map[string]int
	totals   map[string]int
}

func newMemoryLedger(userIDs ...string) *memoryLedger {
	ledger := &memoryLedger{balances: map[string]int{}, totals: map[string]int{}}
	for _, id := range userIDs {
		ledger.balances[id] = 0
	}
	return ledger
}

func (ledger *memoryLedger) Exists(_ context.Context, userID string) (bool, error) {
	_, ok := ledger.balances[userID]
	return ok, nil
}

func (ledger *memoryLedger) GivePoints(_ context.Context, userID string, points int) error {
	ledger.balances[userID] += points
	ledger.totals[userID] += points
	return nil
}

// # Fixtures

const (
	adminID = "0192aaaa-0000-7000-8000-00000000000a"
	aliceID = "0192aaaa-0000-7000-8000-000000000001"
	bobID   = "0192aaaa-0000-7000-8000-000000000002"
)

func activeMission(id string, points int) *mission.Mission {
	return &mission.Mission{
		ID:             id,
		Name:           "Weekly challenge",
		Points:         points,
		ExpirationDate: time.Now().Add(72 * time.Hour),
		CreatedBy:      adminID,
		Active:         true,
	}
}

func newService(repo *memoryRepo, ledger *memoryLedger) *mission.Service {
	return mission.NewService(repo, ledger, slog.New(slog.DiscardHandler))
}

// # Tests

/*
TestSubscribe_Transitions covers the NONE → PARTICIPATING transition and its
single rejection kind.
*/
func TestSubscribe_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("subscribes_fresh_user", func(t *testing.T) {
		repo := newMemoryRepo(activeMission("m1", 50))
		service := newService(repo, newMemoryLedger(aliceID))

		err := service.Subscribe(ctx, "m1", aliceID, aliceID)

		require.NoError(t, err)
		assert.True(t, contains(repo.missions["m1"].Participants, aliceID))
	})

	t.Run("second_subscribe_rejected_state_unchanged", func(t *testing.T) {
		repo := newMemoryRepo(activeMission("m1", 50))
		service := newService(repo, newMemoryLedger(aliceID))

		require.NoError(t, service.Subscribe(ctx, "m1", aliceID, aliceID))
		err := service.Subscribe(ctx, "m1", aliceID, aliceID)

		assert.True(t, apperr.Is(err, apperr.ErrAlreadySubscribed))
		assert.Len(t, repo.missions["m1"].Participants, 1)
	})

	t.Run("creator_cannot_self_subscribe", func(t *testing.T) {
		repo := newMemoryRepo(activeMission("m1", 50))
		service := newService(repo, newMemoryLedger(adminID))

		err := service.Subscribe(ctx, "m1", adminID, adminID)

		assert.True(t, apperr.Is(err, apperr.ErrAlreadySubscribed))
	})

	t.Run("expired_mission_rejected", func(t *testing.T) {
		expired := activeMission("m1", 50)
		expired.ExpirationDate = time.Now().Add(-time.Hour)
		repo := newMemoryRepo(expired)
		service := newService(repo, newMemoryLedger(aliceID))

		err := service.Subscribe(ctx, "m1", aliceID, aliceID)

		assert.True(t, apperr.Is(err, apperr.ErrAlreadySubscribed))
	})

	t.Run("missing_mission_is_not_found", func(t *testing.T) {
		service := newService(newMemoryRepo(), newMemoryLedger(aliceID))

		err := service.Subscribe(ctx, "nope", aliceID, aliceID)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})

	t.Run("missing_user_is_not_found", func(t *testing.T) {
		service := newService(newMemoryRepo(activeMission("m1", 50)), newMemoryLedger())

		err := service.Subscribe(ctx, "m1", aliceID, aliceID)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}

/*
TestComplete_AwardsPoints covers the PARTICIPATING → COMPLETED transition,
the exclusivity of the two lists, and the points award that follows.
*/
func TestComplete_AwardsPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("completion_moves_user_and_awards", func(t *testing.T) {
		repo := newMemoryRepo(activeMission("m1", 150))
		ledger := newMemoryLedger(aliceID)
		service := newService(repo, ledger)

		require.NoError(t, service.Subscribe(ctx, "m1", aliceID, aliceID))
		require.NoError(t, service.Complete(ctx, "m1", aliceID, adminID))

		m := repo.missions["m1"]
		assert.False(t, contains(m.Participants, aliceID))
		assert.True(t, contains(m.Completers, aliceID))
		assert.Equal(t, 150, ledger.balances[aliceID])
		assert.Equal(t, 150, ledger.totals[aliceID])
	})

	t.Run("complete_without_participation_rejected", func(t *testing.T) {
		repo := newMemoryRepo(activeMission("m1", 150))
		ledger := newMemoryLedger(aliceID)
		service := newService(repo, ledger)

		err := service.Complete(ctx, "m1", aliceID, adminID)

		assert.True(t, apperr.Is(err, apperr.ErrCantCompleteMission))
		assert.Equal(t, 0, ledger.balances[aliceID])
	})

	t.Run("no_transition_back_from_completed", func(t *testing.T) {
		repo := newMemoryRepo(activeMission("m1", 150))
		ledger := newMemoryLedger(aliceID)
		service := newService(repo, ledger)

		require.NoError(t, service.Subscribe(ctx, "m1", aliceID, aliceID))
		require.NoError(t, service.Complete(ctx, "m1", aliceID, adminID))

		assert.True(t, apperr.Is(service.Subscribe(ctx, "m1", aliceID, aliceID), apperr.ErrAlreadySubscribed))
		assert.True(t, apperr.Is(service.Complete(ctx, "m1", aliceID, adminID), apperr.ErrCantCompleteMission))

		// Awarded exactly once.
		assert.Equal(t, 150, ledger.balances[aliceID])
	})
}

/*
TestUpdateMission_ExpirationExtendOnly verifies the extend-only rule for
expiration dates.
*/
func TestUpdateMission_ExpirationExtendOnly(t *testing.T) {
	ctx := context.Background()
	stored := activeMission("m1", 50)
	service := newService(newMemoryRepo(stored), newMemoryLedger())

	t.Run("shortening_rejected", func(t *testing.T) {
		_, err := service.UpdateMission(ctx, "m1", mission.UpdateMissionInput{
			Name:           stored.Name,
			Points:         stored.Points,
			ExpirationDate: stored.ExpirationDate.Add(-24 * time.Hour),
		})

		assert.True(t, apperr.Is(err, apperr.ErrInvalidExpirationDate))
	})

	t.Run("extension_accepted", func(t *testing.T) {
		extended := stored.ExpirationDate.Add(24 * time.Hour)

		updated, err := service.UpdateMission(ctx, "m1", mission.UpdateMissionInput{
			Name:           stored.Name,
			Points:         stored.Points,
			ExpirationDate: extended,
		})

		require.NoError(t, err)
		assert.Equal(t, extended, updated.ExpirationDate)
	})
}

/*
TestDeleteMission_HistoryGuard verifies that missions with completion
history cannot be hard-deleted.
*/
func TestDeleteMission_HistoryGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("clean_mission_deleted", func(t *testing.T) {
		repo := newMemoryRepo(activeMission("m1", 50))
		service := newService(repo, newMemoryLedger())

		require.NoError(t, service.DeleteMission(ctx, "m1"))
		assert.Empty(t, repo.missions)
	})

	t.Run("completed_mission_rejected", func(t *testing.T) {
		m := activeMission("m1", 50)
		m.Completers = []mission.Participation{{UserID: bobID, Date: time.Now()}}
		repo := newMemoryRepo(m)
		service := newService(repo, newMemoryLedger())

		err := service.DeleteMission(ctx, "m1")

		assert.True(t, apperr.Is(err, apperr.ErrInvalidRequest))
		assert.Len(t, repo.missions, 1)
	})
}
