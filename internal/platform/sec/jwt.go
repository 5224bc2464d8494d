// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small consumer-side interfaces.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/questline/questline/pkg/uuid"
)

// AuthClaims represents the payload embedded inside a Questline JWT.
//
// Access and refresh tokens share this shape; only their secret and
// lifetime differ.
//
// # Why custom claims?
//
// By embedding the role set directly inside the JWT, the authentication
// middleware can reconstruct the active user context WITHOUT querying the
// database on every single API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Roles is the role set granted at token issuance time.
	Roles []string `json:"roles"`
}

// UserID returns the authenticated subject id.
func (claims *AuthClaims) UserID() string {
	return claims.Subject
}

// IsAdmin reports whether the claim's role set grants admin access.
func (claims *AuthClaims) IsAdmin() bool {
	return IsAdmin(RolesFromStrings(claims.Roles))
}

// TokenCodec signs and verifies the two Questline token kinds using HS256.
//
// # Security
//
// Access and refresh tokens are signed with independent secrets, so a
// leaked access token can never be replayed against the refresh endpoint.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

// NewTokenCodec creates a new TokenCodec.
//
// Both secrets are required; the caller (config loading) guarantees their
// presence before the server accepts traffic.
func NewTokenCodec(accessSecret, refreshSecret, issuer string) (*TokenCodec, error) {
	if accessSecret == "" {
		return nil, fmt.Errorf("sec: access token secret is required")
	}
	if refreshSecret == "" {
		return nil, fmt.Errorf("sec: refresh token secret is required")
	}

	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}, nil
}

// SignAccessToken creates a signed access token for the given subject.
func (codec *TokenCodec) SignAccessToken(userID string, roles []string, timeToLive time.Duration) (string, error) {
	return codec.sign(codec.accessSecret, userID, roles, timeToLive)
}

// SignRefreshToken creates a signed refresh token for the given subject.
func (codec *TokenCodec) SignRefreshToken(userID string, roles []string, timeToLive time.Duration) (string, error) {
	return codec.sign(codec.refreshSecret, userID, roles, timeToLive)
}

// VerifyAccessToken checks the signature and validity of an access token.
func (codec *TokenCodec) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	return codec.verify(codec.accessSecret, tokenString)
}

// VerifyRefreshToken checks the signature and validity of a refresh token.
func (codec *TokenCodec) VerifyRefreshToken(tokenString string) (*AuthClaims, error) {
	return codec.verify(codec.refreshSecret, tokenString)
}

// sign builds and signs the shared claim shape with the given secret.
func (codec *TokenCodec) sign(secret []byte, userID string, roles []string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti makes every issued token unique. Session rotation
			// compares token strings, so two tokens signed within the same
			// second must never collide.
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// verify parses and validates a token string against the given secret.
func (codec *TokenCodec) verify(secret []byte, tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
