// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

/*
Package apperr defines the centralized error handling framework for Questline.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Kinds: A closed set of domain rule violations, each bound to one HTTP status.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Questline API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "ALREADY_SUBSCRIBED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Mission") // Returns "Mission not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError] with a custom code.
//
// The authentication layer distinguishes several 401 kinds (missing headers,
// malformed scheme, failed verification), so the code is caller-supplied.
func Unauthorized(code, msg string) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN_RESOURCE",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(code, msg string) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Domain Rule Violations (400)

// rule constructs a 400 [AppError] for a business rule violation.
func rule(code, msg string) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// The closed set of domain rule violations. Each carries a stable
// machine-readable code so clients never have to compare message strings.
var (
	// ErrInvalidRequest rejects operations on entities that carry history
	// (e.g. deleting a mission that has completers).
	ErrInvalidRequest = rule("INVALID_REQUEST", "Invalid request")

	// ErrAlreadySubscribed covers every cause the subscribe predicate can fail for:
	// already participating, already completed, inactive, expired, or creator.
	ErrAlreadySubscribed = rule("ALREADY_SUBSCRIBED", "User already subscribed or completed the mission")

	// ErrCantCompleteMission rejects completion for non-participants.
	ErrCantCompleteMission = rule("CANT_COMPLETE_MISSION", "User not participating or already completed this mission")

	// ErrRewardUnavailable rejects claims on exhausted, inactive, or already-claimed rewards.
	ErrRewardUnavailable = rule("REWARD_UNAVAILABLE", "Reward is unavailable or already claimed by this user")

	// ErrCantHandOrCancelReward rejects hand/cancel for users without an outstanding claim.
	ErrCantHandOrCancelReward = rule("CANT_HAND_OR_CANCEL_REWARD", "User did not claim this reward")

	// ErrRewardAlreadyInactive rejects a second deactivation.
	ErrRewardAlreadyInactive = rule("REWARD_ALREADY_INACTIVE", "Reward is already inactive")

	// ErrInsufficientBalance rejects claims the user cannot pay for.
	ErrInsufficientBalance = rule("INSUFFICIENT_BALANCE", "User does not have sufficient balance to claim this reward")

	// ErrInvalidExpirationDate rejects mission edits that shorten the expiration.
	ErrInvalidExpirationDate = rule("INVALID_EXPIRATION_DATE", "Mission expiration dates can only be extended")

	// Privilege and status transitions that were already in the requested state.
	ErrCantEnableUser            = rule("CANT_ENABLE_USER", "User is already enabled")
	ErrCantDisableUser           = rule("CANT_DISABLE_USER", "User is already disabled")
	ErrCantGiveAdminPrivileges   = rule("CANT_GIVE_ADMIN_PRIVILEGES", "User already has admin privileges")
	ErrCantRevokeAdminPrivileges = rule("CANT_REVOKE_ADMIN_PRIVILEGES", "User does not have admin privileges")
)

// # Authentication & Authorization Errors

var (
	// ErrInvalidHeaders signals a request missing required headers.
	ErrInvalidHeaders = Unauthorized("INVALID_HEADERS", "Request without necessary headers")

	// ErrInvalidAuthorization signals a malformed Authorization scheme.
	ErrInvalidAuthorization = Unauthorized("INVALID_AUTHORIZATION", "Authorization token needs to be a Bearer token")

	// ErrInvalidToken signals a token that fails signature or session verification.
	ErrInvalidToken = Unauthorized("INVALID_TOKEN", "Invalid token")

	// ErrUnauthorizedClient signals an unknown client id header value.
	ErrUnauthorizedClient = Unauthorized("UNAUTHORIZED_CLIENT", "Unknown client")

	// ErrInvalidCredentials signals a failed login attempt.
	ErrInvalidCredentials = Unauthorized("INVALID_CREDENTIALS", "Invalid credentials")

	// ErrForbiddenResource signals an authenticated but unauthorized request.
	ErrForbiddenResource = Forbidden("Access to this resource is forbidden")

	// ErrAccountExists signals a duplicate registration attempt.
	ErrAccountExists = Conflict("ACCOUNT_EXISTS", "An account already exists for this registration")
)

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for missing required configuration.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Is reports whether err's chain contains an [*AppError] with the same code.
//
// Domain kinds are shared sentinels, but storage layers occasionally rebuild
// them; comparing by code keeps both styles equivalent.
func Is(err error, kind *AppError) bool {
	ae := As(err)
	return ae != nil && kind != nil && ae.Code == kind.Code
}
