// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package mission

import (
	"context"
	"log/slog"
	"time"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/validate"
	"github.com/questline/questline/pkg/uuid"
)

// # Service Layer

// Service owns the mission participation state machine and the points award
// that follows a completion.
type Service struct {
	repo   Repository
	users  UserLedger
	logger *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(repo Repository, users UserLedger, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// # Inputs

// AddMissionInput carries the admin-supplied fields for a new mission.
type AddMissionInput struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Points         int       `json:"points"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// UpdateMissionInput carries the editable fields of an existing mission.
type UpdateMissionInput struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Points         int       `json:"points"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// # Catalogue

/*
ListMissions retrieves a paginated collection of missions, newest first.

Parameters:
  - context: context.Context
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Mission: Slice of mission records
  - int: Total count for pagination metadata
  - error: System or repository level errors
*/
func (service *Service) ListMissions(context context.Context, limit, offset int) ([]*Mission, int, error) {
	return service.repo.List(context, limit, offset)
}

// GetMission fetches a single mission by UUID.
func (service *Service) GetMission(context context.Context, id string) (*Mission, error) {
	return service.repo.GetByID(context, id)
}

/*
AddMission publishes a new mission on behalf of the acting admin.

Parameters:
  - context: context.Context
  - input: AddMissionInput (Admin-supplied mission fields)
  - actorID: string (UUID of the creating admin, recorded as createdby)

Returns:
  - *Mission: The created record with generated id and sequence number
  - error: Validation or repository errors
*/
func (service *Service) AddMission(context context.Context, input AddMissionInput, actorID string) (*Mission, error) {
	v := &validate.Validator{}
	err := v.
		Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		MaxLen("description", input.Description, 1000).
		Positive("points", input.Points).
		Future("expiration_date", input.ExpirationDate).
		Err()
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	mission := &Mission{
		ID:             id,
		Name:           input.Name,
		Description:    input.Description,
		Points:         input.Points,
		ExpirationDate: input.ExpirationDate,
		CreatedBy:      actorID,
		Active:         true,
		Participants:   []Participation{},
		Completers:     []Participation{},
	}

	if err := service.repo.Create(context, mission); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "mission_created",
		slog.String("mission_id", mission.ID),
		slog.String("created_by", actorID),
		slog.Int("points", mission.Points),
	)

	return mission, nil
}

/*
UpdateMission edits an existing mission's details.

Description: Expiration dates may only be extended, never shortened, so an
edit can never retroactively invalidate in-flight participation.

Parameters:
  - context: context.Context
  - id: string (Mission UUID)
  - input: UpdateMissionInput (Replacement field values)

Returns:
  - *Mission: The updated record
  - error: apperr.ErrInvalidExpirationDate if the new date is earlier than
    the stored one; validation or repository errors otherwise
*/
func (service *Service) UpdateMission(context context.Context, id string, input UpdateMissionInput) (*Mission, error) {
	v := &validate.Validator{}
	err := v.
		Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		MaxLen("description", input.Description, 1000).
		Positive("points", input.Points).
		Err()
	if err != nil {
		return nil, err
	}

	mission, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.ExpirationDate.Before(mission.ExpirationDate) {
		return nil, apperr.ErrInvalidExpirationDate
	}

	mission.Name = input.Name
	mission.Description = input.Description
	mission.Points = input.Points
	mission.ExpirationDate = input.ExpirationDate

	if err := service.repo.Update(context, mission); err != nil {
		return nil, err
	}

	return mission, nil
}

/*
DeleteMission hard-deletes a mission that has no completion history.

Returns:
  - error: apperr.NotFound if absent; apperr.ErrInvalidRequest if any user
    has already completed the mission
*/
func (service *Service) DeleteMission(context context.Context, id string) error {
	if _, err := service.repo.GetByID(context, id); err != nil {
		return err
	}

	return service.repo.Delete(context, id)
}

// DeactivateMission soft-deletes a mission. Points already awarded for
// completions are kept; no compensation runs.
func (service *Service) DeactivateMission(context context.Context, id string) error {
	if _, err := service.repo.GetByID(context, id); err != nil {
		return err
	}

	return service.repo.Deactivate(context, id)
}

// # Participation State Machine

/*
Subscribe transitions a (mission, user) pair from NONE to PARTICIPATING.

Description: After the existence probes, the transition is one conditional
write. A zero-row match is reported as ALREADY_SUBSCRIBED regardless of the
actual failing clause (already participating, completed, inactive, expired,
or self-subscribing creator) because the predicate is evaluated atomically
and the causes are indistinguishable after the fact.

Parameters:
  - context: context.Context
  - missionID: string (Mission UUID)
  - userID: string (Subscribing user UUID)
  - actorID: string (Authenticated caller, recorded on the entry)

Returns:
  - error: apperr.NotFound, apperr.ErrAlreadySubscribed, or repository errors
*/
func (service *Service) Subscribe(context context.Context, missionID, userID, actorID string) error {
	if _, err := service.repo.GetByID(context, missionID); err != nil {
		return err
	}

	if err := service.requireUser(context, userID); err != nil {
		return err
	}

	entry := Participation{
		UserID:    userID,
		Date:      time.Now().UTC(),
		CreatedBy: actorID,
	}

	return service.repo.Subscribe(context, missionID, entry)
}

/*
Complete transitions a (mission, user) pair from PARTICIPATING to COMPLETED
and awards the mission's points.

Description: The list move and the points award are two independent writes.
The award runs only after the move committed; if the award itself fails the
error surfaces as-is, with no attempt to undo the completed transition.

Parameters:
  - context: context.Context
  - missionID: string (Mission UUID)
  - userID: string (Completing user UUID)
  - actorID: string (Authenticated caller, recorded on the entry)

Returns:
  - error: apperr.NotFound, apperr.ErrCantCompleteMission, or ledger errors
*/
func (service *Service) Complete(context context.Context, missionID, userID, actorID string) error {
	mission, err := service.repo.GetByID(context, missionID)
	if err != nil {
		return err
	}

	if err := service.requireUser(context, userID); err != nil {
		return err
	}

	entry := Participation{
		UserID:    userID,
		Date:      time.Now().UTC(),
		CreatedBy: actorID,
	}

	if err := service.repo.Complete(context, missionID, entry); err != nil {
		return err
	}

	if err := service.users.GivePoints(context, userID, mission.Points); err != nil {
		return err
	}

	service.logger.InfoContext(context, "mission_completed",
		slog.String("mission_id", missionID),
		slog.String("user_id", userID),
		slog.Int("points_awarded", mission.Points),
	)

	return nil
}

// requireUser maps a missing ledger row to NotFound.
func (service *Service) requireUser(context context.Context, userID string) error {
	exists, err := service.users.Exists(context, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("User")
	}
	return nil
}
