// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

/*
Package reward provides the claim/hand/cancel inventory protocol for
redeemable items and its HTTP surface.

# Routing Strategy

  - Catalogue (Authenticated): Browsing for any signed-in user.
  - Management (Restricted): Mutative endpoints requiring the Admin role,
    including hand-off confirmation.
  - Claims (Self-or-Admin): A user claims or cancels for themselves, or an
    admin acts on any user's behalf.
*/
package reward

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/questline/questline/internal/platform/middleware"
	requestutil "github.com/questline/questline/internal/platform/request"
	"github.com/questline/questline/internal/platform/respond"
	"github.com/questline/questline/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for reward management and claims.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reward [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the reward domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Catalogue
	router.Get("/", handler.listRewards)
	router.Get("/{id}", handler.getReward)

	// ## Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)

		admin.Post("/", handler.createReward)
		admin.Delete("/{id}", handler.deleteReward)
		admin.Get("/claimed", handler.listClaimed)
		admin.Patch("/{id}/deactivate", handler.deactivateReward)
		admin.Patch("/{id}/hand/{userID}", handler.handReward)
	})

	// ## Claims (Self or Admin)
	router.Group(func(claimer chi.Router) {
		claimer.Use(middleware.RequireSelfOrAdmin("userID"))

		claimer.Patch("/{id}/claim/{userID}", handler.claimReward)
		claimer.Patch("/{id}/cancel/{userID}", handler.cancelClaim)
	})

	return router
}

func (handler *Handler) listRewards(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	rewards, total, err := handler.service.ListRewards(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, rewards, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getReward(writer http.ResponseWriter, request *http.Request) {
	reward, err := handler.service.GetReward(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reward)
}

func (handler *Handler) listClaimed(writer http.ResponseWriter, request *http.Request) {
	rewards, err := handler.service.ListClaimed(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, rewards)
}

func (handler *Handler) createReward(writer http.ResponseWriter, request *http.Request) {
	var input AddRewardInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reward, err := handler.service.AddReward(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, reward)
}

func (handler *Handler) deleteReward(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteReward(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) deactivateReward(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeactivateReward(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) claimReward(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Claim(request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "userID"),
		actorID,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) handReward(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Hand(request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "userID"),
		actorID,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) cancelClaim(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.CancelClaim(request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "userID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
