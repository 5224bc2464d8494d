// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (5m) to minimize the impact of a leaked token.
	AccessTokenTTL = 5 * time.Minute

	// RefreshTokenTTLLogin is the session lifetime granted on a fresh
	// login or registration.
	RefreshTokenTTLLogin = 7 * 24 * time.Hour

	// RefreshTokenTTLChained is the shorter session lifetime granted when a
	// pair is issued from an existing refresh token. Chained refreshes
	// cannot extend a session past what repeated 2-day grants allow.
	RefreshTokenTTLChained = 2 * 24 * time.Hour

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)
