// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

/*
Package account provides user profiles, the point ledger backing the
mission and reward engines, and the per-user summary endpoints.

# Routing Strategy

  - Administration (Restricted): Listing, creating, and deleting profiles.
  - Self-Service (Self-or-Admin): A user reads their own profile and
    summaries; admins read anyone's.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/questline/questline/internal/platform/middleware"
	requestutil "github.com/questline/questline/internal/platform/request"
	"github.com/questline/questline/internal/platform/respond"
	"github.com/questline/questline/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for user profiles.
type Handler struct {
	service *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Administration (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)

		admin.Get("/", handler.listUsers)
		admin.Post("/", handler.createUser)
		admin.Delete("/{userID}", handler.deleteUser)
	})

	// ## Self-Service (Self or Admin)
	router.Group(func(self chi.Router) {
		self.Use(middleware.RequireSelfOrAdmin("userID"))

		self.Get("/{userID}", handler.getUser)
		self.Get("/{userID}/missions", handler.getUserMissions)
		self.Get("/{userID}/rewards", handler.getUserRewards)
	})

	return router
}

func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.service.GetUsers(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.GetUser(request.Context(), requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input AddUserInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.AddUser(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteUser(request.Context(), requestutil.ID(request, "userID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) getUserMissions(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.service.GetUserMissions(request.Context(), requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}

func (handler *Handler) getUserRewards(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.service.GetUserRewards(request.Context(), requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}
