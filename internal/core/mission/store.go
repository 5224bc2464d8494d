// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package mission

import "context"

// Repository defines the data access contract for missions.
//
// Subscribe and Complete are single conditional updates: the full transition
// predicate is evaluated at write time and a zero-row match surfaces as the
// matching domain error. Callers must not rely on an earlier read staying
// valid across these calls.
type Repository interface {
	List(context context.Context, limit, offset int) ([]*Mission, int, error)
	GetByID(context context.Context, id string) (*Mission, error)
	Create(context context.Context, mission *Mission) error
	Update(context context.Context, mission *Mission) error

	// Delete removes the mission only while its completer list is empty.
	// Returns apperr.ErrInvalidRequest on a zero-row match.
	Delete(context context.Context, id string) error

	// Deactivate soft-deletes the mission unconditionally.
	Deactivate(context context.Context, id string) error

	// Subscribe appends the entry to participants, gated on: active, not
	// expired, entry user not already a participant or completer, and not
	// the mission creator. Returns apperr.ErrAlreadySubscribed on a
	// zero-row match.
	Subscribe(context context.Context, missionID string, entry Participation) error

	// Complete moves the entry's user from participants to completers in
	// one write, gated on: active, user currently a participant and not a
	// completer. Returns apperr.ErrCantCompleteMission on a zero-row match.
	Complete(context context.Context, missionID string, entry Participation) error

	// Per-user views.
	ListActiveForUser(context context.Context, userID string) ([]*Mission, error)
	ListParticipatingByUser(context context.Context, userID string) ([]*Mission, error)
	ListCompletedByUser(context context.Context, userID string) ([]*Mission, error)
}

// UserLedger is the slice of the account ledger the mission engine needs.
type UserLedger interface {
	Exists(context context.Context, userID string) (bool, error)
	GivePoints(context context.Context, userID string, points int) error
}
