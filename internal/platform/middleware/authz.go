// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

// Package middleware provides the HTTP middleware chain for the Questline API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/constants"
	"github.com/questline/questline/internal/platform/ctxutil"
	"github.com/questline/questline/internal/platform/respond"
	"github.com/questline/questline/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec.TokenCodec]
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyAccessToken(tokenStr string) (*sec.AuthClaims, error)
}

// ClientGate rejects requests whose 'clientid' header is missing or does not
// match the configured application client key.
//
// # Flow
//  1. A missing header aborts with INVALID_HEADERS (401).
//  2. A mismatched value aborts with UNAUTHORIZED_CLIENT (401).
//
// This gate runs before token authentication and applies to every API route,
// including signup and login.
func ClientGate(clientID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get(constants.HeaderClientID)

			if header == "" {
				respond.Error(writer, request, apperr.ErrInvalidHeaders)
				return
			}

			if header != clientID {
				respond.Error(writer, request, apperr.ErrUnauthorizedClient)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. A missing 'Authorization' header aborts with INVALID_HEADERS (401).
//  2. A header that is not exactly 'Bearer <token>' aborts with
//     INVALID_AUTHORIZATION (401).
//  3. A token that fails signature or expiry checks aborts with
//     INVALID_TOKEN (401).
//  4. On success, [*sec.AuthClaims] are injected into the request context.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Header Presence ────────────────────────────────────────────
			if authHeader == "" {
				respond.Error(writer, request, apperr.ErrInvalidHeaders)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				respond.Error(writer, request, apperr.ErrInvalidAuthorization)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyAccessToken(parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.ErrInvalidToken)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAdmin blocks requests whose authenticated caller lacks the admin role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := GetUser(request.Context())

		if claims == nil {
			respond.Error(writer, request, apperr.ErrInvalidToken)
			return
		}

		if !claims.IsAdmin() {
			respond.Error(writer, request, apperr.ErrForbiddenResource)
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequireSelfOrAdmin blocks requests unless the authenticated caller either
// owns the resource (their user id equals the named URL parameter) or holds
// the admin role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. The paramName refers
// to a chi URL parameter carrying the target user's UUID.
func RequireSelfOrAdmin(paramName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := GetUser(request.Context())

			if claims == nil {
				respond.Error(writer, request, apperr.ErrInvalidToken)
				return
			}

			targetID := chi.URLParam(request, paramName)
			if claims.UserID() != targetID && !claims.IsAdmin() {
				respond.Error(writer, request, apperr.ErrForbiddenResource)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser retrieves the [*sec.AuthClaims] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.AuthClaims] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *sec.AuthClaims {
	return ctxutil.GetAuthUser(ctx)
}
