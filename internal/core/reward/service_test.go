// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package reward_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/core/reward"
)

// # Test Doubles

// memoryRepo is an in-memory [reward.Repository] that mirrors the guarded
// update semantics of the Postgres store.
type memoryRepo struct {
	rewards map[string]*reward.Reward
}

func newMemoryRepo(rewards ...*reward.Reward) *memoryRepo {
	repo := &memoryRepo{rewards: map[string]*reward.Reward{}}
	for _, r := range rewards {
		repo.rewards[r.ID] = r
	}
	return repo
}

func (repo *memoryRepo) List(_ context.Context, limit, offset int) ([]*reward.Reward, int, error) {
	var all []*reward.Reward
	for _, r := range repo.rewards {
		all = append(all, r)
	}
	return all, len(all), nil
}

func (repo *memoryRepo) GetByID(_ context.Context, id string) (*reward.Reward, error) {
	r, ok := repo.rewards[id]
	if !ok {
		return nil, apperr.NotFound("Reward")
	}
	return r, nil
}

func (repo *memoryRepo) Create(_ context.Context, r *reward.Reward) error {
	repo.rewards[r.ID] = r
	return nil
}

func (repo *memoryRepo) Delete(_ context.Context, id string) error {
	r, ok := repo.rewards[id]
	if !ok || len(r.Handed) > 0 {
		return apperr.ErrInvalidRequest
	}
	delete(repo.rewards, id)
	return nil
}

func isClaimer(r *reward.Reward, userID string) bool {
	for _, entry := range r.Claimers {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}

func (repo *memoryRepo) Reserve(_ context.Context, rewardID string, entry reward.Claim) error {
	r, ok := repo.rewards[rewardID]
	if !ok || !r.Active || r.Availability <= 0 || isClaimer(r, entry.UserID) {
		return apperr.ErrRewardUnavailable
	}
	r.Availability--
	r.Claimers = append(r.Claimers, entry)
	return nil
}

func (repo *memoryRepo) ReleaseClaim(_ context.Context, rewardID, userID string) error {
	r, ok := repo.rewards[rewardID]
	if !ok || !isClaimer(r, userID) {
		return apperr.ErrCantHandOrCancelReward
	}

	var remaining []reward.Claim
	for _, entry := range r.Claimers {
		if entry.UserID != userID {
			remaining = append(remaining, entry)
		}
	}
	r.Claimers = remaining
	r.Availability++
	return nil
}

func (repo *memoryRepo) Hand(_ context.Context, rewardID string, entry reward.Claim) error {
	r, ok := repo.rewards[rewardID]
	if !ok || !r.Active || !isClaimer(r, entry.UserID) {
		return apperr.ErrCantHandOrCancelReward
	}

	var remaining []reward.Claim
	for _, claim := range r.Claimers {
		if claim.UserID != entry.UserID {
			remaining = append(remaining, claim)
		}
	}
	r.Claimers = remaining
	r.Handed = append(r.Handed, entry)
	return nil
}

func (repo *memoryRepo) Deactivate(_ context.Context, rewardID string) ([]reward.Claim, error) {
	r, ok := repo.rewards[rewardID]
	if !ok || !r.Active {
		return nil, apperr.ErrRewardAlreadyInactive
	}
	r.Active = false
	claimers := make([]reward.Claim, len(r.Claimers))
	copy(claimers, r.Claimers)
	return claimers, nil
}

func (repo *memoryRepo) ListClaimed(_ context.Context) ([]*reward.Reward, error) { return nil, nil }

func (repo *memoryRepo) ListAvailableForUser(_ context.Context, userID string) ([]*reward.Reward, error) {
	return nil, nil
}

func (repo *memoryRepo) ListClaimedByUser(_ context.Context, userID string) ([]*reward.Reward, error) {
	return nil, nil
}

func (repo *memoryRepo) ListHandedToUser(_ context.Context, userID string) ([]*reward.Reward, error) {
	return nil, nil
}

// memoryLedger is an in-memory user ledger with guarded withdrawal.
type memoryLedger struct {
	balances map[string]int
	totals   map[string]int

	// withdrawBlocked simulates losing the race between the optimistic
	// balance pre-check and the guarded charge.
	withdrawBlocked bool
}

func newMemoryLedger(balances map[string]int) *memoryLedger {
	ledger := &memoryLedger{balances: map[string]int{}, totals: map[string]int{}}
	for id, balance := range balances {
		ledger.balances[id] = balance
	}
	return ledger
}

func (ledger *memoryLedger) Exists(_ context.Context, userID string) (bool, error) {
	_, ok := ledger.balances[userID]
	return ok, nil
}

func (ledger *memoryLedger) FindBalance(_ context.Context, userID string) (int, error) {
	balance, ok := ledger.balances[userID]
	if !ok {
		return 0, apperr.NotFound("User")
	}
	return balance, nil
}

func (ledger *memoryLedger) WithdrawPoints(_ context.Context, userID string, amount int) error {
	if ledger.withdrawBlocked || ledger.balances[userID] < amount {
		return apperr.ErrInsufficientBalance
	}
	ledger.balances[userID] -= amount
	return nil
}

func (ledger *memoryLedger) RefundPoints(_ context.Context, userID string, amount int) error {
	ledger.balances[userID] += amount
	return nil
}

// # Fixtures

const (
	adminID = "0192bbbb-0000-7000-8000-00000000000a"
	aliceID = "0192bbbb-0000-7000-8000-000000000001"
	bobID   = "0192bbbb-0000-7000-8000-000000000002"
)

func activeReward(id string, price, availability int) *reward.Reward {
	return &reward.Reward{
		ID:           id,
		Name:         "Coffee voucher",
		Price:        price,
		Availability: availability,
		Active:       true,
	}
}

func newService(repo *memoryRepo, ledger *memoryLedger) *reward.Service {
	return reward.NewService(repo, ledger, slog.New(slog.DiscardHandler))
}

// # Tests

/*
TestClaim_ReserveThenCharge covers the two-phase claim protocol including
the exact-balance scenario and the duplicate-claim rejection.
*/
func TestClaim_ReserveThenCharge(t *testing.T) {
	ctx := context.Background()

	t.Run("exact_balance_claim_succeeds", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 150, 3))
		ledger := newMemoryLedger(map[string]int{aliceID: 150})
		service := newService(repo, ledger)

		require.NoError(t, service.Claim(ctx, "r1", aliceID, aliceID))

		r := repo.rewards["r1"]
		assert.Equal(t, 0, ledger.balances[aliceID])
		assert.Equal(t, 2, r.Availability)
		assert.True(t, isClaimer(r, aliceID))
	})

	t.Run("second_claim_by_same_user_rejected", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 50, 5))
		ledger := newMemoryLedger(map[string]int{aliceID: 500})
		service := newService(repo, ledger)

		require.NoError(t, service.Claim(ctx, "r1", aliceID, aliceID))
		err := service.Claim(ctx, "r1", aliceID, aliceID)

		assert.True(t, apperr.Is(err, apperr.ErrRewardUnavailable))
		assert.Equal(t, 450, ledger.balances[aliceID])
	})

	t.Run("insufficient_balance_leaves_inventory_unchanged", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 200, 3))
		ledger := newMemoryLedger(map[string]int{aliceID: 100})
		service := newService(repo, ledger)

		err := service.Claim(ctx, "r1", aliceID, aliceID)

		assert.True(t, apperr.Is(err, apperr.ErrInsufficientBalance))
		assert.Equal(t, 3, repo.rewards["r1"].Availability)
		assert.Empty(t, repo.rewards["r1"].Claimers)
	})

	t.Run("exhausted_availability_rejected", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 50, 0))
		ledger := newMemoryLedger(map[string]int{aliceID: 500})
		service := newService(repo, ledger)

		err := service.Claim(ctx, "r1", aliceID, aliceID)

		assert.True(t, apperr.Is(err, apperr.ErrRewardUnavailable))
	})
}

/*
TestClaim_ChargeFailureCompensates verifies the reservation rollback when
the guarded charge loses the race after the optimistic pre-check passed.
*/
func TestClaim_ChargeFailureCompensates(t *testing.T) {
	ctx := context.Background()

	repo := newMemoryRepo(activeReward("r1", 100, 2))
	ledger := newMemoryLedger(map[string]int{aliceID: 150})
	ledger.withdrawBlocked = true
	service := newService(repo, ledger)

	err := service.Claim(ctx, "r1", aliceID, aliceID)

	assert.True(t, apperr.Is(err, apperr.ErrInsufficientBalance))

	// Reservation rolled back: unit back on the shelf, no claimer entry.
	r := repo.rewards["r1"]
	assert.Equal(t, 2, r.Availability)
	assert.Empty(t, r.Claimers)
	assert.Equal(t, 150, ledger.balances[aliceID])
}

/*
TestCancelClaim verifies the claim/cancel inverse pair: inventory
conservation and the refund that restores balance without touching the
lifetime total.
*/
func TestCancelClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel_restores_inventory_and_balance", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 100, 2))
		ledger := newMemoryLedger(map[string]int{aliceID: 100})
		service := newService(repo, ledger)

		require.NoError(t, service.Claim(ctx, "r1", aliceID, aliceID))
		require.NoError(t, service.CancelClaim(ctx, "r1", aliceID))

		r := repo.rewards["r1"]
		assert.Equal(t, 2, r.Availability)
		assert.Empty(t, r.Claimers)
		assert.Equal(t, 100, ledger.balances[aliceID])

		// Refund is restore, not earn.
		assert.Equal(t, 0, ledger.totals[aliceID])
	})

	t.Run("cancel_unclaimed_rejected_without_refund", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 100, 2))
		ledger := newMemoryLedger(map[string]int{aliceID: 40})
		service := newService(repo, ledger)

		err := service.CancelClaim(ctx, "r1", aliceID)

		assert.True(t, apperr.Is(err, apperr.ErrCantHandOrCancelReward))
		assert.Equal(t, 40, ledger.balances[aliceID])
	})
}

/*
TestHand verifies the delivery confirmation: claimer entry moves to handed,
availability stays consumed, no points move.
*/
func TestHand(t *testing.T) {
	ctx := context.Background()

	repo := newMemoryRepo(activeReward("r1", 100, 2))
	ledger := newMemoryLedger(map[string]int{aliceID: 100})
	service := newService(repo, ledger)

	require.NoError(t, service.Claim(ctx, "r1", aliceID, aliceID))
	require.NoError(t, service.Hand(ctx, "r1", aliceID, adminID))

	r := repo.rewards["r1"]
	assert.Empty(t, r.Claimers)
	assert.Equal(t, 1, r.HandedCount(aliceID))
	assert.Equal(t, 1, r.Availability)
	assert.Equal(t, 0, ledger.balances[aliceID])

	// Handing twice is rejected.
	err := service.Hand(ctx, "r1", aliceID, adminID)
	assert.True(t, apperr.Is(err, apperr.ErrCantHandOrCancelReward))
}

/*
TestDeactivateReward_FanOutRefund covers the fan-out compensation over the
outstanding claimer list.
*/
func TestDeactivateReward_FanOutRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("all_outstanding_claims_refunded", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 100, 5))
		ledger := newMemoryLedger(map[string]int{aliceID: 100, bobID: 100})
		service := newService(repo, ledger)

		require.NoError(t, service.Claim(ctx, "r1", aliceID, aliceID))
		require.NoError(t, service.Claim(ctx, "r1", bobID, bobID))
		require.Equal(t, 0, ledger.balances[aliceID])
		require.Equal(t, 0, ledger.balances[bobID])

		require.NoError(t, service.DeactivateReward(ctx, "r1"))

		r := repo.rewards["r1"]
		assert.False(t, r.Active)
		assert.Empty(t, r.Claimers)
		assert.Equal(t, 100, ledger.balances[aliceID])
		assert.Equal(t, 100, ledger.balances[bobID])
	})

	t.Run("second_deactivation_rejected", func(t *testing.T) {
		repo := newMemoryRepo(activeReward("r1", 100, 5))
		service := newService(repo, newMemoryLedger(nil))

		require.NoError(t, service.DeactivateReward(ctx, "r1"))
		err := service.DeactivateReward(ctx, "r1")

		assert.True(t, apperr.Is(err, apperr.ErrRewardAlreadyInactive))
	})
}

/*
TestDeleteReward_HistoryGuard verifies that rewards with hand-out history
cannot be hard-deleted.
*/
func TestDeleteReward_HistoryGuard(t *testing.T) {
	ctx := context.Background()

	r := activeReward("r1", 100, 2)
	r.Handed = []reward.Claim{{UserID: aliceID, Date: time.Now()}}
	repo := newMemoryRepo(r)
	service := newService(repo, newMemoryLedger(nil))

	err := service.DeleteReward(ctx, "r1")

	assert.True(t, apperr.Is(err, apperr.ErrInvalidRequest))
	assert.Len(t, repo.rewards, 1)
}
