// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package reward

import "context"

// Repository defines the data access contract for rewards.
//
// Reserve, ReleaseClaim, and Hand are single conditional updates whose
// predicates are evaluated at write time; a zero-row match surfaces as the
// matching domain error. Concurrent claims contend on the same
// availability > 0 predicate, so inventory never oversells.
type Repository interface {
	List(context context.Context, limit, offset int) ([]*Reward, int, error)
	GetByID(context context.Context, id string) (*Reward, error)
	Create(context context.Context, reward *Reward) error

	// Delete removes the reward only while its handed list is empty.
	// Returns apperr.ErrInvalidRequest on a zero-row match.
	Delete(context context.Context, id string) error

	// Reserve decrements availability and appends the entry to claimers in
	// one write, gated on: active, availability > 0, entry user not already
	// a claimer. Returns apperr.ErrRewardUnavailable on a zero-row match.
	Reserve(context context.Context, rewardID string, entry Claim) error

	// ReleaseClaim removes the user's claimer entry and restores one unit
	// of availability, gated on the user being a claimer. Returns
	// apperr.ErrCantHandOrCancelReward on a zero-row match. Used both for
	// cancellation and for rolling back a reservation whose charge failed.
	ReleaseClaim(context context.Context, rewardID, userID string) error

	// Hand moves the user's entry from claimers to handed, gated on:
	// active, user currently a claimer. Availability is not restored (the
	// unit was consumed). Returns apperr.ErrCantHandOrCancelReward on a
	// zero-row match.
	Hand(context context.Context, rewardID string, entry Claim) error

	// Deactivate sets active=false gated on the reward currently being
	// active, returning the claimer list as it stood at deactivation for
	// the fan-out refund. Returns apperr.ErrRewardAlreadyInactive on a
	// zero-row match.
	Deactivate(context context.Context, rewardID string) ([]Claim, error)

	// Outstanding claims across all rewards, newest first.
	ListClaimed(context context.Context) ([]*Reward, error)

	// Per-user views.
	ListAvailableForUser(context context.Context, userID string) ([]*Reward, error)
	ListClaimedByUser(context context.Context, userID string) ([]*Reward, error)
	ListHandedToUser(context context.Context, userID string) ([]*Reward, error)
}

// UserLedger is the slice of the account ledger the reward engine needs.
type UserLedger interface {
	Exists(context context.Context, userID string) (bool, error)
	FindBalance(context context.Context, userID string) (int, error)
	WithdrawPoints(context context.Context, userID string, amount int) error
	RefundPoints(context context.Context, userID string, amount int) error
}
