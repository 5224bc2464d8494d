// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/questline/questline/internal/platform/middleware"
	requestutil "github.com/questline/questline/internal/platform/request"
	"github.com/questline/questline/internal/platform/respond"
	"github.com/questline/questline/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for the authentication lifecycle.
//
// The router is mounted outside the authenticated group, because signup,
// login, and refresh must work without an access token. The privilege
// endpoints attach their own authentication inside [Handler.Routes].
type Handler struct {
	service  *Service
	verifier middleware.TokenVerifier
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service, verifier middleware.TokenVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// Routes returns a [chi.Router] configured with authentication endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	// ## Privilege Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticate(handler.verifier))
		admin.Use(middleware.RequireAdmin)

		admin.Patch("/admin/{userID}", handler.setAdmin)
		admin.Patch("/status/{userID}", handler.setStatus)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Registration string `json:"registration"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

type loginRequest struct {
	Registration string `json:"registration"`
	Password     string `json:"password"`
}

type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type setAdminRequest struct {
	Admin bool `json:"admin"`
}

type setStatusRequest struct {
	Active bool `json:"active"`
}

/*
Signup enrolls a new member.

POST /api/v1/auth/signup

Request:
  - Body: signupRequest (Registration, Name, Email, Password)

Response:
  - 201: TokenPair: Fresh credentials for the new account
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrAccountExists: Registration already enrolled
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRegistration, input.Registration).
		Registration(FieldRegistration, input.Registration).
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 100).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.service.Register(request.Context(), RegisterInput{
		Registration: input.Registration,
		Name:         input.Name,
		Email:        input.Email,
		Password:     input.Password,
		ClientIP:     middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, pair)
}

/*
Login authenticates a member.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Registration, Password)

Response:
  - 200: TokenPair: Fresh credentials
  - 401: ErrInvalidCredentials: Unknown, disabled, or mismatched account
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRegistration, input.Registration).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.service.Login(request.Context(), LoginInput{
		Registration: input.Registration,
		Password:     input.Password,
		ClientIP:     middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
Refresh rotates a refresh token into a new token pair.

POST /api/v1/auth/refresh

Request:
  - Body: tokenRequest (RefreshToken)

Response:
  - 200: TokenPair: Rotated credentials
  - 401: ErrInvalidToken: Signature, session, or origin check failed
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.service.Refresh(request.Context(), input.RefreshToken, middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
Logout destroys the caller's session.

POST /api/v1/auth/logout

Request:
  - Body: tokenRequest (RefreshToken)

Response:
  - 204: No Content: Session terminated
  - 401: ErrInvalidToken: Signature, session, or origin check failed
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Logout(request.Context(), input.RefreshToken, middleware.RealIP(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
SetAdmin grants or revokes the admin role.

PATCH /api/v1/auth/admin/{userID}

Request:
  - Body: setAdminRequest (Admin)

Response:
  - 204: No Content: Role updated, target's session destroyed
  - 400: ErrCantGiveAdminPrivileges / ErrCantRevokeAdminPrivileges: No-op transition
  - 403: ErrForbiddenResource: Caller is not an admin
*/
func (handler *Handler) setAdmin(writer http.ResponseWriter, request *http.Request) {
	var input setAdminRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.ID(request, "userID")

	var err error
	if input.Admin {
		err = handler.service.GiveAdminPrivileges(request.Context(), userID)
	} else {
		err = handler.service.RevokeAdminPrivileges(request.Context(), userID)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
SetStatus enables or disables an account.

PATCH /api/v1/auth/status/{userID}

Request:
  - Body: setStatusRequest (Active)

Response:
  - 204: No Content: Status updated, target's session destroyed
  - 400: ErrCantEnableUser / ErrCantDisableUser: No-op transition
  - 403: ErrForbiddenResource: Caller is not an admin
*/
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	var input setStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.ID(request, "userID")

	var err error
	if input.Active {
		err = handler.service.EnableUser(request.Context(), userID)
	} else {
		err = handler.service.DisableUser(request.Context(), userID)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
