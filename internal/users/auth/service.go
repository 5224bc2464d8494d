// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/questline/questline/internal/core/account"
	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/sec"
	"github.com/questline/questline/pkg/uuid"
)

// # Contracts & Types

// TokenSigner defines the contract for issuing and verifying security
// tokens. Satisfied by [sec.TokenCodec].
type TokenSigner interface {
	SignAccessToken(userID string, roles []string, timeToLive time.Duration) (string, error)
	SignRefreshToken(userID string, roles []string, timeToLive time.Duration) (string, error)
	VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error)
}

// ProfileDirectory is the port through which registration creates the
// user's profile record alongside the credential record.
type ProfileDirectory interface {
	CreateProfile(context context.Context, id, name, email string) (*account.User, error)
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or session logic must be reviewed before merging.
type Service struct {
	repo     Repository
	sessions SessionRepository
	profiles ProfileDirectory
	tokens   TokenSigner
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(
	repo Repository,
	sessions SessionRepository,
	profiles ProfileDirectory,
	tokens TokenSigner,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		profiles: profiles,
		tokens:   tokens,
		logger:   logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Registration string
	Name         string
	Email        string
	Password     string
	ClientIP     string
}

/*
Register enrolls a new member and signs them in.

Description: Creates the credential record and the companion profile, then
issues a token pair so the caller is authenticated immediately after signup.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *TokenPair: Fresh access and refresh tokens
  - error: apperr.ErrAccountExists or storage failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*TokenPair, error) {

	// Prevent storing plain-text passwords
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable ID shared between the credential and profile records
	user := &UserAuth{
		Registration: input.Registration,
		UUID:         uuid.New(),
		PasswordHash: passwordHash,
		Roles:        sec.RolesToStrings(sec.DefaultRoles()),
		Active:       true,
	}

	// The registration column is the primary key: a duplicate signup is
	// rejected here regardless of interleaving.
	if err := service.repo.Create(context, user); err != nil {
		return nil, err
	}

	// The profile owns the point ledger. It is keyed by the same UUID the
	// tokens will carry as their subject.
	if _, err := service.profiles.CreateProfile(context, user.UUID, input.Name, input.Email); err != nil {
		service.logger.Error("auth_profile_create_failed",
			slog.String("user_id", user.UUID), slog.Any("error", err))
		return nil, fmt.Errorf("auth_service_profile_create_failed: %w", err)
	}

	service.logger.Info("user_registered", slog.String("user_id", user.UUID))

	return service.issueTokenPair(context, user, RefreshTokenTTLLogin, input.ClientIP)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Registration string
	Password     string
	ClientIP     string
}

/*
Login validates user credentials and issues a token pair.

Description: Missing accounts, disabled accounts, and wrong passwords all
collapse into the same generic credential error to prevent enumeration.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Fresh access and refresh tokens
  - error: apperr.ErrInvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {
	user, err := service.repo.GetByRegistration(context, input.Registration)
	if err != nil {
		if apperr.Is(err, apperr.NotFound("User")) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		return nil, apperr.ErrInvalidCredentials
	}

	// Constant-time comparison in bcrypt
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.UUID))

	return service.issueTokenPair(context, user, RefreshTokenTTLLogin, input.ClientIP)
}

// # Session Management

/*
Refresh exchanges a valid refresh token for a new token pair.

Description: The presented token must verify against the refresh secret,
match the single session stored for its subject byte for byte, and arrive
from the same client IP the session was bound to. Every check failure is
reported as the same invalid-token error. The new pair carries the shorter
chained TTL, so a refresh chain cannot outlive repeated 2-day grants.

Parameters:
  - context: context.Context
  - refreshToken: string
  - clientIP: string

Returns:
  - *TokenPair: Rotated access and refresh tokens
  - error: apperr.ErrInvalidToken or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken, clientIP string) (*TokenPair, error) {
	user, err := service.verifySession(context, refreshToken, clientIP)
	if err != nil {
		return nil, err
	}

	return service.issueTokenPair(context, user, RefreshTokenTTLChained, clientIP)
}

/*
Logout verifies the refresh token and destroys its session.

Description: Requires the same token and origin checks as Refresh, so a
stolen token presented from a different address cannot terminate the
legitimate session.

Parameters:
  - context: context.Context
  - refreshToken: string
  - clientIP: string

Returns:
  - error: apperr.ErrInvalidToken or deletion failures
*/
func (service *Service) Logout(context context.Context, refreshToken, clientIP string) error {
	user, err := service.verifySession(context, refreshToken, clientIP)
	if err != nil {
		return err
	}

	if err := service.sessions.Delete(context, user.UUID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.logger.Info("user_logged_out", slog.String("user_id", user.UUID))
	return nil
}

// verifySession runs the full refresh-token admission check and returns the
// current credential record for the token's subject.
func (service *Service) verifySession(context context.Context, refreshToken, clientIP string) (*UserAuth, error) {
	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	session, err := service.sessions.Get(context, claims.UserID())
	if err != nil {
		return nil, err
	}

	// The stored session is the only valid token: an older rotation or a
	// replay from another address fails here.
	if session.Token != refreshToken || session.ClientIP != clientIP {
		return nil, apperr.ErrInvalidToken
	}

	user, err := service.repo.GetByUUID(context, claims.UserID())
	if err != nil {
		if apperr.Is(err, apperr.NotFound("User")) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, err
	}

	if !user.Active {
		return nil, apperr.ErrInvalidToken
	}

	return user, nil
}

// # Privilege & Status Management

/*
GiveAdminPrivileges grants the admin role to a user.

Description: The grant is a conditional update, and on success the user's
session is destroyed so the wider role set only takes effect through a fresh
login.

Parameters:
  - context: context.Context
  - userUUID: string

Returns:
  - error: apperr.ErrCantGiveAdminPrivileges or storage failures
*/
func (service *Service) GiveAdminPrivileges(context context.Context, userUUID string) error {
	if err := service.repo.GiveAdminPrivileges(context, userUUID); err != nil {
		return err
	}
	service.logger.Info("admin_privileges_granted", slog.String("user_id", userUUID))
	service.dropSession(context, userUUID)
	return nil
}

// RevokeAdminPrivileges removes the admin role from a user and destroys
// their session.
func (service *Service) RevokeAdminPrivileges(context context.Context, userUUID string) error {
	if err := service.repo.RevokeAdminPrivileges(context, userUUID); err != nil {
		return err
	}
	service.logger.Info("admin_privileges_revoked", slog.String("user_id", userUUID))
	service.dropSession(context, userUUID)
	return nil
}

// EnableUser reactivates a disabled account.
func (service *Service) EnableUser(context context.Context, userUUID string) error {
	if err := service.repo.EnableUser(context, userUUID); err != nil {
		return err
	}
	service.logger.Info("user_enabled", slog.String("user_id", userUUID))
	service.dropSession(context, userUUID)
	return nil
}

// DisableUser deactivates an account and destroys its session, cutting off
// refresh immediately. Outstanding access tokens expire within minutes.
func (service *Service) DisableUser(context context.Context, userUUID string) error {
	if err := service.repo.DisableUser(context, userUUID); err != nil {
		return err
	}
	service.logger.Info("user_disabled", slog.String("user_id", userUUID))
	service.dropSession(context, userUUID)
	return nil
}

// dropSession removes the user's session after a privilege or status
// change. A failed delete still leaves the change applied, so it is logged
// rather than surfaced.
func (service *Service) dropSession(context context.Context, userUUID string) {
	if err := service.sessions.Delete(context, userUUID); err != nil {
		service.logger.Error("auth_session_delete_failed",
			slog.String("user_id", userUUID), slog.Any("error", err))
	}
}

// # Token Issuance

// issueTokenPair signs a fresh access and refresh token and replaces the
// user's stored session with one bound to the new refresh token and the
// caller's address.
func (service *Service) issueTokenPair(context context.Context, user *UserAuth, refreshTTL time.Duration, clientIP string) (*TokenPair, error) {
	accessToken, err := service.tokens.SignAccessToken(user.UUID, user.Roles, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokens.SignRefreshToken(user.UUID, user.Roles, refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	session := &Session{
		Token:     refreshToken,
		ClientIP:  clientIP,
		CreatedAt: time.Now().UTC(),
	}

	if err := service.sessions.Replace(context, user.UUID, session, refreshTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_store_failed: %w", err)
	}

	return &TokenPair{
		UserID:       user.UUID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
