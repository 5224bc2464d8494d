// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline/internal/core/account"
	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/sec"
	"github.com/questline/questline/internal/users/auth"
)

// # Test Doubles

type memoryRepo struct {
	byRegistration map[string]*auth.UserAuth
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byRegistration: map[string]*auth.UserAuth{}}
}

func (repo *memoryRepo) Create(_ context.Context, user *auth.UserAuth) error {
	if _, ok := repo.byRegistration[user.Registration]; ok {
		return apperr.ErrAccountExists
	}
	repo.byRegistration[user.Registration] = user
	return nil
}

func (repo *memoryRepo) GetByRegistration(_ context.Context, registration string) (*auth.UserAuth, error) {
	user, ok := repo.byRegistration[registration]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (repo *memoryRepo) GetByUUID(_ context.Context, uuid string) (*auth.UserAuth, error) {
	for _, user := range repo.byRegistration {
		if user.UUID == uuid {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryRepo) EnableUser(_ context.Context, uuid string) error {
	for _, user := range repo.byRegistration {
		if user.UUID == uuid && !user.Active {
			user.Active = true
			return nil
		}
	}
	return apperr.ErrCantEnableUser
}

func (repo *memoryRepo) DisableUser(_ context.Context, uuid string) error {
	for _, user := range repo.byRegistration {
		if user.UUID == uuid && user.Active {
			user.Active = false
			return nil
		}
	}
	return apperr.ErrCantDisableUser
}

func (repo *memoryRepo) GiveAdminPrivileges(_ context.Context, uuid string) error {
	for _, user := range repo.byRegistration {
		if user.UUID == uuid && !hasRole(user.Roles, "admin") {
			user.Roles = append(user.Roles, "admin")
			return nil
		}
	}
	return apperr.ErrCantGiveAdminPrivileges
}

func (repo *memoryRepo) RevokeAdminPrivileges(_ context.Context, uuid string) error {
	for _, user := range repo.byRegistration {
		if user.UUID == uuid && hasRole(user.Roles, "admin") {
			kept := make([]string, 0, len(user.Roles))
			for _, role := range user.Roles {
				if role != "admin" {
					kept = append(kept, role)
				}
			}
			user.Roles = kept
			return nil
		}
	}
	return apperr.ErrCantRevokeAdminPrivileges
}

func hasRole(roles []string, target string) bool {
	for _, role := range roles {
		if role == target {
			return true
		}
	}
	return false
}

type memorySessions struct {
	sessions map[string]*auth.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]*auth.Session{}}
}

func (store *memorySessions) Replace(_ context.Context, userUUID string, session *auth.Session, _ time.Duration) error {
	store.sessions[userUUID] = session
	return nil
}

func (store *memorySessions) Get(_ context.Context, userUUID string) (*auth.Session, error) {
	session, ok := store.sessions[userUUID]
	if !ok {
		return nil, apperr.ErrInvalidToken
	}
	return session, nil
}

func (store *memorySessions) Delete(_ context.Context, userUUID string) error {
	delete(store.sessions, userUUID)
	return nil
}

type fakeProfiles struct {
	created map[string]string // id -> email
}

func (profiles *fakeProfiles) CreateProfile(_ context.Context, id, name, email string) (*account.User, error) {
	if profiles.created == nil {
		profiles.created = map[string]string{}
	}
	profiles.created[id] = email
	return &account.User{ID: id, Name: name, Email: email}, nil
}

// # Fixtures

const (
	testRegistration = "12345678901"
	testPassword     = "correct horse battery staple"
	homeIP           = "203.0.113.10"
	strangerIP       = "198.51.100.99"
)

type harness struct {
	service  *auth.Service
	repo     *memoryRepo
	sessions *memorySessions
	profiles *fakeProfiles
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	codec, err := sec.NewTokenCodec("access-secret", "refresh-secret", "questline.test")
	require.NoError(t, err)

	h := &harness{
		repo:     newMemoryRepo(),
		sessions: newMemorySessions(),
		profiles: &fakeProfiles{},
	}
	h.service = auth.NewService(h.repo, h.sessions, h.profiles, codec, slog.New(slog.DiscardHandler))
	return h
}

func (h *harness) register(t *testing.T) *auth.TokenPair {
	t.Helper()

	pair, err := h.service.Register(context.Background(), auth.RegisterInput{
		Registration: testRegistration,
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     testPassword,
		ClientIP:     homeIP,
	})
	require.NoError(t, err)
	return pair
}

// # Tests

/*
TestRegister verifies enrollment: credential plus profile share one id, and a
second signup with the same registration is rejected.
*/
func TestRegister(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	pair := h.register(t)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "alice@example.com", h.profiles.created[pair.UserID])

	_, err := h.service.Register(ctx, auth.RegisterInput{
		Registration: testRegistration,
		Name:         "Mallory",
		Email:        "mallory@example.com",
		Password:     testPassword,
		ClientIP:     strangerIP,
	})
	assert.True(t, apperr.Is(err, apperr.ErrAccountExists))
}

/*
TestLogin verifies the credential checks collapse into one generic error and
that a disabled account cannot sign in.
*/
func TestLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	pair := h.register(t)

	t.Run("valid_credentials", func(t *testing.T) {
		got, err := h.service.Login(ctx, auth.LoginInput{
			Registration: testRegistration,
			Password:     testPassword,
			ClientIP:     homeIP,
		})
		require.NoError(t, err)
		assert.Equal(t, pair.UserID, got.UserID)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := h.service.Login(ctx, auth.LoginInput{
			Registration: testRegistration,
			Password:     "guess",
			ClientIP:     homeIP,
		})
		assert.True(t, apperr.Is(err, apperr.ErrInvalidCredentials))
	})

	t.Run("unknown_registration", func(t *testing.T) {
		_, err := h.service.Login(ctx, auth.LoginInput{
			Registration: "00000000000",
			Password:     testPassword,
			ClientIP:     homeIP,
		})
		assert.True(t, apperr.Is(err, apperr.ErrInvalidCredentials))
	})

	t.Run("disabled_account", func(t *testing.T) {
		require.NoError(t, h.service.DisableUser(ctx, pair.UserID))

		_, err := h.service.Login(ctx, auth.LoginInput{
			Registration: testRegistration,
			Password:     testPassword,
			ClientIP:     homeIP,
		})
		assert.True(t, apperr.Is(err, apperr.ErrInvalidCredentials))
	})
}

/*
TestSessionSingularity verifies that each issuance replaces the stored
session, leaving exactly one live refresh token per user.
*/
func TestSessionSingularity(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	first := h.register(t)

	second, err := h.service.Login(ctx, auth.LoginInput{
		Registration: testRegistration,
		Password:     testPassword,
		ClientIP:     homeIP,
	})
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The replaced session's token must be dead even though its JWT is
	// still signature-valid and unexpired.
	_, err = h.service.Refresh(ctx, first.RefreshToken, homeIP)
	assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))

	_, err = h.service.Refresh(ctx, second.RefreshToken, homeIP)
	assert.NoError(t, err)
}

/*
TestRefresh verifies rotation and the origin binding of the session.
*/
func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates_the_stored_token", func(t *testing.T) {
		h := newHarness(t)
		pair := h.register(t)

		rotated, err := h.service.Refresh(ctx, pair.RefreshToken, homeIP)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		_, err = h.service.Refresh(ctx, pair.RefreshToken, homeIP)
		assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))
	})

	t.Run("rejects_foreign_origin", func(t *testing.T) {
		h := newHarness(t)
		pair := h.register(t)

		_, err := h.service.Refresh(ctx, pair.RefreshToken, strangerIP)
		assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))

		// The failed attempt must not burn the legitimate session.
		_, err = h.service.Refresh(ctx, pair.RefreshToken, homeIP)
		assert.NoError(t, err)
	})

	t.Run("rejects_garbage_token", func(t *testing.T) {
		h := newHarness(t)
		h.register(t)

		_, err := h.service.Refresh(ctx, "not-a-jwt", homeIP)
		assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))
	})
}

/*
TestLogout verifies session destruction and the idempotence boundary: a
second logout fails because the session is already gone.
*/
func TestLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	pair := h.register(t)

	require.NoError(t, h.service.Logout(ctx, pair.RefreshToken, homeIP))

	_, err := h.service.Refresh(ctx, pair.RefreshToken, homeIP)
	assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))

	err = h.service.Logout(ctx, pair.RefreshToken, homeIP)
	assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))
}

/*
TestPrivilegeTransitions verifies conditional role and status flips reject
no-op transitions and destroy the target's session on success.
*/
func TestPrivilegeTransitions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	pair := h.register(t)

	t.Run("grant_then_double_grant", func(t *testing.T) {
		require.NoError(t, h.service.GiveAdminPrivileges(ctx, pair.UserID))

		err := h.service.GiveAdminPrivileges(ctx, pair.UserID)
		assert.True(t, apperr.Is(err, apperr.ErrCantGiveAdminPrivileges))
	})

	t.Run("grant_destroys_session", func(t *testing.T) {
		_, err := h.service.Refresh(ctx, pair.RefreshToken, homeIP)
		assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))
	})

	t.Run("revoke_then_double_revoke", func(t *testing.T) {
		require.NoError(t, h.service.RevokeAdminPrivileges(ctx, pair.UserID))

		err := h.service.RevokeAdminPrivileges(ctx, pair.UserID)
		assert.True(t, apperr.Is(err, apperr.ErrCantRevokeAdminPrivileges))
	})

	t.Run("status_flips", func(t *testing.T) {
		err := h.service.EnableUser(ctx, pair.UserID)
		assert.True(t, apperr.Is(err, apperr.ErrCantEnableUser))

		require.NoError(t, h.service.DisableUser(ctx, pair.UserID))

		err = h.service.DisableUser(ctx, pair.UserID)
		assert.True(t, apperr.Is(err, apperr.ErrCantDisableUser))

		require.NoError(t, h.service.EnableUser(ctx, pair.UserID))
	})
}

/*
TestDisabledUserCannotRefresh verifies that disabling an account cuts off
the refresh chain even if a session were still present.
*/
func TestDisabledUserCannotRefresh(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	pair := h.register(t)

	require.NoError(t, h.service.DisableUser(ctx, pair.UserID))

	_, err := h.service.Refresh(ctx, pair.RefreshToken, homeIP)
	assert.True(t, apperr.Is(err, apperr.ErrInvalidToken))
}
