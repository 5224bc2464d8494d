// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package account

import "context"

// Repository defines the data access contract for user profiles and their
// point ledger.
//
// The ledger mutations (GivePoints, WithdrawPoints, RefundPoints) are single
// conditional UPDATE statements. A zero-row match means the guarding
// predicate did not hold at write time and surfaces as a domain error.
type Repository interface {
	List(context context.Context, limit, offset int) ([]*User, int, error)
	GetByID(context context.Context, id string) (*User, error)
	Create(context context.Context, user *User) error
	Delete(context context.Context, id string) error

	// Exists is a lightweight existence probe used by the mission and
	// reward engines before their conditional writes.
	Exists(context context.Context, id string) (bool, error)

	// FindBalance returns the current spendable balance.
	FindBalance(context context.Context, id string) (int, error)

	// GivePoints increments both balance and lifetime total.
	GivePoints(context context.Context, id string, points int) error

	// WithdrawPoints decrements balance only if balance >= amount.
	WithdrawPoints(context context.Context, id string, amount int) error

	// RefundPoints increments balance without touching the lifetime total.
	RefundPoints(context context.Context, id string, amount int) error
}
