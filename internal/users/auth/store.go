// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package auth

import (
	"context"
	"time"
)

// # Credential Data Access

// Repository defines the data access contract for credential records.
type Repository interface {

	/*
		Create persists a brand-new credential record.

		Parameters:
		  - context: context.Context
		  - user: *UserAuth

		Returns:
		  - error: apperr.ErrAccountExists when the registration is taken,
		    or persistence failures
	*/
	Create(context context.Context, user *UserAuth) error

	/*
		GetByRegistration returns the credential record for a registration number.

		Parameters:
		  - context: context.Context
		  - registration: string

		Returns:
		  - *UserAuth: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	GetByRegistration(context context.Context, registration string) (*UserAuth, error)

	/*
		GetByUUID returns the credential record for a user id.

		Parameters:
		  - context: context.Context
		  - uuid: string

		Returns:
		  - *UserAuth: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	GetByUUID(context context.Context, uuid string) (*UserAuth, error)

	/*
		EnableUser flips an inactive account to active.

		Description: Conditional update gated on the account being inactive.
		Zero affected rows map to apperr.ErrCantEnableUser.

		Parameters:
		  - context: context.Context
		  - uuid: string

		Returns:
		  - error: apperr.ErrCantEnableUser or persistence failures
	*/
	EnableUser(context context.Context, uuid string) error

	/*
		DisableUser flips an active account to inactive.

		Description: Conditional update gated on the account being active.
		Zero affected rows map to apperr.ErrCantDisableUser.

		Parameters:
		  - context: context.Context
		  - uuid: string

		Returns:
		  - error: apperr.ErrCantDisableUser or persistence failures
	*/
	DisableUser(context context.Context, uuid string) error

	/*
		GiveAdminPrivileges appends the admin role to the account's role set.

		Description: Conditional update gated on the role being absent. Zero
		affected rows map to apperr.ErrCantGiveAdminPrivileges.

		Parameters:
		  - context: context.Context
		  - uuid: string

		Returns:
		  - error: apperr.ErrCantGiveAdminPrivileges or persistence failures
	*/
	GiveAdminPrivileges(context context.Context, uuid string) error

	/*
		RevokeAdminPrivileges removes the admin role from the account's role set.

		Description: Conditional update gated on the role being present. Zero
		affected rows map to apperr.ErrCantRevokeAdminPrivileges.

		Parameters:
		  - context: context.Context
		  - uuid: string

		Returns:
		  - error: apperr.ErrCantRevokeAdminPrivileges or persistence failures
	*/
	RevokeAdminPrivileges(context context.Context, uuid string) error
}

// # Session Data Access

// SessionRepository defines the contract for the volatile single-session store.
type SessionRepository interface {

	/*
		Replace atomically swaps the user's active session for a new one.

		Description: Any previously stored session is discarded, which is what
		enforces the one-active-session rule.

		Parameters:
		  - context: context.Context
		  - userUUID: string
		  - session: *Session
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Replace(context context.Context, userUUID string, session *Session, ttl time.Duration) error

	/*
		Get retrieves the user's active session.

		Parameters:
		  - context: context.Context
		  - userUUID: string

		Returns:
		  - *Session: Hydrated session
		  - error: apperr.ErrInvalidToken when absent or expired, or
		    retrieval failures
	*/
	Get(context context.Context, userUUID string) (*Session, error)

	/*
		Delete removes the user's active session, if any.

		Parameters:
		  - context: context.Context
		  - userUUID: string

		Returns:
		  - error: Deletion failures
	*/
	Delete(context context.Context, userUUID string) error
}
