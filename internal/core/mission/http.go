// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

/*
Package mission provides the participation state machine for point-earning
tasks and its HTTP surface.

# Routing Strategy

  - Catalogue (Authenticated): Browsing for any signed-in user.
  - Management (Restricted): Mutative endpoints requiring the Admin role.
  - Participation (Self-or-Admin): A user acts on their own entry, or an
    admin acts on any user's behalf.
*/
package mission

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/questline/questline/internal/platform/middleware"
	requestutil "github.com/questline/questline/internal/platform/request"
	"github.com/questline/questline/internal/platform/respond"
	"github.com/questline/questline/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for mission management and participation.
type Handler struct {
	service *Service
}

// NewHandler constructs a new mission [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the mission domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Catalogue
	router.Get("/", handler.listMissions)
	router.Get("/{id}", handler.getMission)

	// ## Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)

		admin.Post("/", handler.createMission)
		admin.Put("/{id}", handler.updateMission)
		admin.Delete("/{id}", handler.deleteMission)
		admin.Patch("/{id}/deactivate", handler.deactivateMission)
	})

	// ## Participation (Self or Admin)
	router.Group(func(participant chi.Router) {
		participant.Use(middleware.RequireSelfOrAdmin("userID"))

		participant.Patch("/{id}/subscribe/{userID}", handler.subscribe)
		participant.Patch("/{id}/complete/{userID}", handler.complete)
	})

	return router
}

func (handler *Handler) listMissions(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	missions, total, err := handler.service.ListMissions(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, missions, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getMission(writer http.ResponseWriter, request *http.Request) {
	mission, err := handler.service.GetMission(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, mission)
}

func (handler *Handler) createMission(writer http.ResponseWriter, request *http.Request) {
	var input AddMissionInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	mission, err := handler.service.AddMission(request.Context(), input, actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, mission)
}

func (handler *Handler) updateMission(writer http.ResponseWriter, request *http.Request) {
	var input UpdateMissionInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	mission, err := handler.service.UpdateMission(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, mission)
}

func (handler *Handler) deleteMission(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteMission(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) deactivateMission(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeactivateMission(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Subscribe(request.Context(),
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

func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Complete(request.Context(),
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
