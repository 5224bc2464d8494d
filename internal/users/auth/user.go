// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

/*
Package auth implements the user identity and session management layer.

It owns the credential records in PostgreSQL, the single active refresh
session per user in Redis, and the token issuance protocol that ties them
together.

# Architecture

Identity and profile are deliberately separate records: this package stores
registration, password hash, roles, and the active flag; the profile (name,
email, point ledger) lives in the account engine and is created through the
[ProfileDirectory] port during registration.
*/
package auth

import "time"

// # Domain Entities

// UserAuth is the credential record backing a Questline account.
type UserAuth struct {
	Registration string    `json:"registration"`
	UUID         string    `json:"uuid"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Roles        []string  `json:"roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the single active refresh session for a user.
//
// Only one session exists per user at any time: issuing a new token pair
// replaces whatever session was stored before, so older refresh tokens
// stop working immediately.
type Session struct {
	Token     string    `json:"token"` // The exact refresh token string that is currently valid.
	ClientIP  string    `json:"client_ip"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is the transport-ready result of a successful authentication.
type TokenPair struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// # Field Identifiers

// Global field names for validation in the authentication domain.
const (
	FieldRegistration = "registration"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refresh_token"
	FieldAdmin        = "admin"
	FieldActive       = "active"
)
