// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package reward

import (
	"context"
	"log/slog"
	"time"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/validate"
	"github.com/questline/questline/pkg/uuid"
)

// # Service Layer

// Service owns the claim/hand/cancel inventory protocol and the
// point-ledger compensation that keeps inventory and balances consistent
// without a cross-entity transaction.
type Service struct {
	repo   Repository
	users  UserLedger
	logger *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(repo Repository, users UserLedger, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// # Inputs

// AddRewardInput carries the admin-supplied fields for a new reward.
type AddRewardInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        int    `json:"price"`
	Availability int    `json:"availability"`
}

// # Catalogue

/*
ListRewards retrieves a paginated collection of rewards, newest first.

Parameters:
  - context: context.Context
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Reward: Slice of reward records
  - int: Total count for pagination metadata
  - error: System or repository level errors
*/
func (service *Service) ListRewards(context context.Context, limit, offset int) ([]*Reward, int, error) {
	return service.repo.List(context, limit, offset)
}

// GetReward fetches a single reward by UUID.
func (service *Service) GetReward(context context.Context, id string) (*Reward, error) {
	return service.repo.GetByID(context, id)
}

// ListClaimed returns all rewards with outstanding claims, newest first.
func (service *Service) ListClaimed(context context.Context) ([]*Reward, error) {
	return service.repo.ListClaimed(context)
}

/*
AddReward publishes a new reward with a finite availability pool.

Parameters:
  - context: context.Context
  - input: AddRewardInput (Admin-supplied reward fields)

Returns:
  - *Reward: The created record with generated id and sequence number
  - error: Validation or repository errors
*/
func (service *Service) AddReward(context context.Context, input AddRewardInput) (*Reward, error) {
	v := &validate.Validator{}
	err := v.
		Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		MaxLen("description", input.Description, 1000).
		Positive("price", input.Price).
		NonNegative("availability", input.Availability).
		Err()
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	reward := &Reward{
		ID:           id,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Availability: input.Availability,
		Active:       true,
		Claimers:     []Claim{},
		Handed:       []Claim{},
	}

	if err := service.repo.Create(context, reward); err != nil {
		return nil, err
	}

	return reward, nil
}

/*
DeleteReward hard-deletes a reward that was never handed out.

Returns:
  - error: apperr.NotFound if absent; apperr.ErrInvalidRequest if the
    reward has hand-out history
*/
func (service *Service) DeleteReward(context context.Context, id string) error {
	if _, err := service.repo.GetByID(context, id); err != nil {
		return err
	}

	return service.repo.Delete(context, id)
}

// # Inventory Protocol

/*
Claim reserves one unit of the reward for the user and charges its price.

Description: This is a manual two-phase reserve-then-charge. The two writes
hit different rows and are not wrapped in a transaction; instead, each write
re-validates its own precondition, and a charge that loses the race against
a concurrent spend triggers an explicit rollback of the reservation. The
protocol guarantees availability never goes negative, balances never go
negative, and a user holds at most one simultaneous claim per reward.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)
  - userID: string (Claiming user UUID)
  - actorID: string (Authenticated caller, recorded on the entry)

Returns:
  - error: apperr.NotFound, apperr.ErrInsufficientBalance,
    apperr.ErrRewardUnavailable, or repository errors
*/
func (service *Service) Claim(context context.Context, rewardID, userID, actorID string) error {
	reward, err := service.repo.GetByID(context, rewardID)
	if err != nil {
		return err
	}

	// Optimistic pre-check. The balance can still change before the
	// charge below, which re-validates atomically.
	balance, err := service.users.FindBalance(context, userID)
	if err != nil {
		return err
	}
	if balance < reward.Price {
		return apperr.ErrInsufficientBalance
	}

	entry := Claim{
		UserID:    userID,
		Date:      time.Now().UTC(),
		CreatedBy: actorID,
	}

	// Phase 1: reserve inventory.
	if err := service.repo.Reserve(context, rewardID, entry); err != nil {
		return err
	}

	// Phase 2: charge the ledger. On failure, release the reservation so
	// the unit goes back on the shelf.
	if err := service.users.WithdrawPoints(context, userID, reward.Price); err != nil {
		if rollbackErr := service.repo.ReleaseClaim(context, rewardID, userID); rollbackErr != nil {
			service.logger.ErrorContext(context, "reward_claim_rollback_failed",
				slog.String("reward_id", rewardID),
				slog.String("user_id", userID),
				slog.Any("error", rollbackErr),
			)
			return rollbackErr
		}
		return err
	}

	service.logger.InfoContext(context, "reward_claimed",
		slog.String("reward_id", rewardID),
		slog.String("user_id", userID),
		slog.Int("price", reward.Price),
	)

	return nil
}

/*
Hand confirms the physical delivery of a claimed reward.

Description: Admin action. Moves the user's entry from claimers to handed;
no points move, the charge already happened at claim time.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)
  - userID: string (Receiving user UUID)
  - actorID: string (Acting admin, recorded on the entry)

Returns:
  - error: apperr.NotFound or apperr.ErrCantHandOrCancelReward
*/
func (service *Service) Hand(context context.Context, rewardID, userID, actorID string) error {
	if _, err := service.repo.GetByID(context, rewardID); err != nil {
		return err
	}

	if err := service.requireUser(context, userID); err != nil {
		return err
	}

	entry := Claim{
		UserID:    userID,
		Date:      time.Now().UTC(),
		CreatedBy: actorID,
	}

	return service.repo.Hand(context, rewardID, entry)
}

/*
CancelClaim releases a user's outstanding claim and refunds its price.

Description: The inverse of Claim on both invariants: the unit returns to
availability and the price returns to the balance. The refund restores
spendable points only; the lifetime total is deliberately untouched because
restored points are not newly earned points.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)
  - userID: string (Claiming user UUID)

Returns:
  - error: apperr.NotFound, apperr.ErrCantHandOrCancelReward, or ledger errors
*/
func (service *Service) CancelClaim(context context.Context, rewardID, userID string) error {
	reward, err := service.repo.GetByID(context, rewardID)
	if err != nil {
		return err
	}

	if err := service.repo.ReleaseClaim(context, rewardID, userID); err != nil {
		return err
	}

	if err := service.users.RefundPoints(context, userID, reward.Price); err != nil {
		return err
	}

	service.logger.InfoContext(context, "reward_claim_cancelled",
		slog.String("reward_id", rewardID),
		slog.String("user_id", userID),
		slog.Int("refunded", reward.Price),
	)

	return nil
}

/*
DeactivateReward soft-deletes the reward and unwinds every outstanding claim.

Description: After the conditional deactivation, each prior claimer gets an
independent release-and-refund pair. The fan-out is not globally atomic: a
failed leg is logged and the loop continues with the remaining claimers
rather than aborting the whole deactivation, and already-processed refunds
are never rolled back.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)

Returns:
  - error: apperr.NotFound or apperr.ErrRewardAlreadyInactive
*/
func (service *Service) DeactivateReward(context context.Context, rewardID string) error {
	reward, err := service.repo.GetByID(context, rewardID)
	if err != nil {
		return err
	}

	claimers, err := service.repo.Deactivate(context, rewardID)
	if err != nil {
		return err
	}

	for _, claimer := range claimers {
		if err := service.repo.ReleaseClaim(context, rewardID, claimer.UserID); err != nil {
			service.logger.ErrorContext(context, "reward_deactivation_release_failed",
				slog.String("reward_id", rewardID),
				slog.String("user_id", claimer.UserID),
				slog.Any("error", err),
			)
			continue
		}

		if err := service.users.RefundPoints(context, claimer.UserID, reward.Price); err != nil {
			service.logger.ErrorContext(context, "reward_deactivation_refund_failed",
				slog.String("reward_id", rewardID),
				slog.String("user_id", claimer.UserID),
				slog.Any("error", err),
			)
		}
	}

	service.logger.InfoContext(context, "reward_deactivated",
		slog.String("reward_id", rewardID),
		slog.Int("claims_unwound", len(claimers)),
	)

	return nil
}

// requireUser maps a missing ledger row to NotFound.
func (service *Service) requireUser(context context.Context, userID string) error {
	exists, err := service.users.Exists(context, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("User")
	}
	return nil
}
