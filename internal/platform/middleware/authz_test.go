// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline/internal/platform/middleware"
	"github.com/questline/questline/internal/platform/sec"
)

// fakeVerifier implements middleware.TokenVerifier for unit testing.
type fakeVerifier struct {
	claims *sec.AuthClaims
	err    error
}

func (verifier *fakeVerifier) VerifyAccessToken(string) (*sec.AuthClaims, error) {
	return verifier.claims, verifier.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
}

func adminClaims() *sec.AuthClaims {
	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "0192aaaa-0000-7000-8000-000000000001"},
		Roles:            []string{"user", "admin"},
	}
}

func userClaims(subject string) *sec.AuthClaims {
	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Roles:            []string{"user"},
	}
}

/*
TestClientGate verifies the coarse application key gate that runs before
token authentication.
*/
func TestClientGate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid_client", "questline-mobile", http.StatusOK},
		{"missing_header", "", http.StatusUnauthorized},
		{"wrong_client", "other-app", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.ClientGate("questline-mobile")(okHandler())

			request := httptest.NewRequest(http.MethodGet, "/api/v1/missions", nil)
			if tt.header != "" {
				request.Header.Set("clientid", tt.header)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestAuthenticate verifies the Authorization header parsing and the three
distinct rejection reasons (missing header, malformed header, bad token).
*/
func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing_header",
			header:     "",
			verifier:   &fakeVerifier{claims: userClaims("u1")},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_HEADERS",
		},
		{
			name:       "malformed_header",
			header:     "Token abc",
			verifier:   &fakeVerifier{claims: userClaims("u1")},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_AUTHORIZATION",
		},
		{
			name:       "missing_token_part",
			header:     "Bearer",
			verifier:   &fakeVerifier{claims: userClaims("u1")},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_AUTHORIZATION",
		},
		{
			name:       "verification_failure",
			header:     "Bearer expired-token",
			verifier:   &fakeVerifier{err: errors.New("token expired")},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "valid_token",
			header:     "Bearer good-token",
			verifier:   &fakeVerifier{claims: userClaims("u1")},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.AuthClaims
			inner := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				seen = middleware.GetUser(request.Context())
				writer.WriteHeader(http.StatusOK)
			})

			handler := middleware.Authenticate(tt.verifier)(inner)

			request := httptest.NewRequest(http.MethodGet, "/api/v1/missions", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantCode != "" {
				assert.Contains(t, recorder.Body.String(), tt.wantCode)
			}

			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u1", seen.UserID())
			}
		})
	}
}

/*
TestRequireAdmin verifies role enforcement for admin-only routes.
*/
func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		verifier   *fakeVerifier
		wantStatus int
	}{
		{"admin_allowed", &fakeVerifier{claims: adminClaims()}, http.StatusOK},
		{"user_forbidden", &fakeVerifier{claims: userClaims("u1")}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.Authenticate(tt.verifier)(middleware.RequireAdmin(okHandler()))

			request := httptest.NewRequest(http.MethodPost, "/api/v1/missions", nil)
			request.Header.Set("Authorization", "Bearer good-token")

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
