// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package mission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/database/schema"
	"github.com/questline/questline/internal/platform/dberr"
)

// userEntry renders a JSONB fragment matching list entries belonging to one
// user. Used with the @> containment operator so membership checks stay
// inside the conditional UPDATE's own predicate.
func userEntry(param string) string {
	return fmt.Sprintf(`jsonb_build_array(jsonb_build_object('user_id', %s::text))`, param)
}

// PostgresRepository implements [Repository] on top of pgxpool.
//
// Participant and completer lists live as JSONB arrays on the mission row
// itself, so every state transition is one conditional UPDATE whose
// RowsAffected count is the modified-count the engine's protocol needs.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func missionColumns(t schema.CoreMissionTable) string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Number, t.Name, t.Description, t.Points, t.ExpirationDate,
		t.CreatedBy, t.Active, t.Participants, t.Completers, t.CreatedAt, t.UpdatedAt)
}

func scanMission(row interface{ Scan(...any) error }) (*Mission, error) {
	m := &Mission{}
	err := row.Scan(
		&m.ID, &m.Number, &m.Name, &m.Description, &m.Points, &m.ExpirationDate,
		&m.CreatedBy, &m.Active, &m.Participants, &m.Completers, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Mission, int, error) {
	t := schema.CoreMission

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, t.Table)

	var total int
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Mission")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2;
	`, missionColumns(t), t.Table, t.Number)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Mission")
	}
	defer rows.Close()

	var missions []*Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Mission")
		}
		missions = append(missions, m)
	}

	return missions, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Mission, error) {
	t := schema.CoreMission

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1;
	`, missionColumns(t), t.Table, t.ID)

	m, err := scanMission(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Mission")
	}

	return m, nil
}

func (repository *PostgresRepository) Create(context context.Context, mission *Mission) error {
	t := schema.CoreMission

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING %s, %s, %s;
	`,
		t.Table,
		t.ID, t.Name, t.Description, t.Points, t.ExpirationDate, t.CreatedBy, t.Active,
		t.Number, t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		mission.ID, mission.Name, mission.Description, mission.Points,
		mission.ExpirationDate, mission.CreatedBy,
	).Scan(&mission.Number, &mission.CreatedAt, &mission.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres_mission_create_failed: %w", err)
	}

	mission.Active = true
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, mission *Mission) error {
	t := schema.CoreMission

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = now()
		WHERE %s = $1
		RETURNING %s;
	`,
		t.Table,
		t.Name, t.Description, t.Points, t.ExpirationDate, t.UpdatedAt,
		t.ID,
		t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		mission.ID, mission.Name, mission.Description, mission.Points, mission.ExpirationDate,
	).Scan(&mission.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Mission")
	}

	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	t := schema.CoreMission

	// Missions with completion history are immutable: only deactivatable.
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = '[]'::jsonb;
	`, t.Table, t.ID, t.Completers)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_mission_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrInvalidRequest
	}

	return nil
}

func (repository *PostgresRepository) Deactivate(context context.Context, id string) error {
	t := schema.CoreMission

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = FALSE, %s = now()
		WHERE %s = $1;
	`, t.Table, t.Active, t.UpdatedAt, t.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_mission_deactivate_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Mission")
	}

	return nil
}

/*
Subscribe appends a participation entry in a single guarded write.

Description: The whole NONE → PARTICIPATING transition predicate lives in
the WHERE clause, so a concurrent subscriber, completer, or deactivation
cannot slip between a check and the write. A zero-row match cannot tell the
caller which clause failed; the engine reports the one rejection kind.

Parameters:
  - context: context.Context
  - missionID: string (Mission UUID)
  - entry: Participation (The subscribing user plus audit fields)

Returns:
  - error: apperr.ErrAlreadySubscribed on a zero-row match
*/
func (repository *PostgresRepository) Subscribe(context context.Context, missionID string, entry Participation) error {
	t := schema.CoreMission

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("postgres_mission_subscribe_encode_failed: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s || $3::jsonb, %s = now()
		WHERE %s = $1
		  AND %s
		  AND %s > now()
		  AND %s <> $2
		  AND NOT %s @> %s
		  AND NOT %s @> %s;
	`,
		t.Table,
		t.Participants, t.Participants, t.UpdatedAt,
		t.ID,
		t.Active,
		t.ExpirationDate,
		t.CreatedBy,
		t.Participants, userEntry("$2"),
		t.Completers, userEntry("$2"),
	)

	tag, err := repository.db.Exec(context, query, missionID, entry.UserID, payload)
	if err != nil {
		return fmt.Errorf("postgres_mission_subscribe_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrAlreadySubscribed
	}

	return nil
}

/*
Complete moves a user from participants to completers in a single write.

Description: The push onto completers and the pull from participants happen
in one UPDATE; the filtered rebuild of the participants array reads the
row's pre-update value, so the exclusivity invariant (a user is never in
both lists) holds at every commit point.

Parameters:
  - context: context.Context
  - missionID: string (Mission UUID)
  - entry: Participation (The completing user plus audit fields)

Returns:
  - error: apperr.ErrCantCompleteMission on a zero-row match
*/
func (repository *PostgresRepository) Complete(context context.Context, missionID string, entry Participation) error {
	t := schema.CoreMission

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("postgres_mission_complete_encode_failed: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s || $3::jsonb,
		    %s = (
		        SELECT COALESCE(jsonb_agg(entry), '[]'::jsonb)
		        FROM jsonb_array_elements(%s) AS entry
		        WHERE entry->>'user_id' <> $2
		    ),
		    %s = now()
		WHERE %s = $1
		  AND %s
		  AND %s @> %s
		  AND NOT %s @> %s;
	`,
		t.Table,
		t.Completers, t.Completers,
		t.Participants,
		t.Participants,
		t.UpdatedAt,
		t.ID,
		t.Active,
		t.Participants, userEntry("$2"),
		t.Completers, userEntry("$2"),
	)

	tag, err := repository.db.Exec(context, query, missionID, entry.UserID, payload)
	if err != nil {
		return fmt.Errorf("postgres_mission_complete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCantCompleteMission
	}

	return nil
}

// # Per-User Views

func (repository *PostgresRepository) ListActiveForUser(context context.Context, userID string) ([]*Mission, error) {
	t := schema.CoreMission

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		  AND %s > now()
		  AND NOT %s @> %s
		  AND NOT %s @> %s
		ORDER BY %s ASC;
	`,
		missionColumns(t), t.Table,
		t.Active,
		t.ExpirationDate,
		t.Participants, userEntry("$1"),
		t.Completers, userEntry("$1"),
		t.ExpirationDate,
	)

	return repository.queryUserView(context, query, userID)
}

func (repository *PostgresRepository) ListParticipatingByUser(context context.Context, userID string) ([]*Mission, error) {
	t := schema.CoreMission

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s @> %s
		ORDER BY %s DESC;
	`,
		missionColumns(t), t.Table,
		t.Participants, userEntry("$1"),
		t.Number,
	)

	return repository.queryUserView(context, query, userID)
}

func (repository *PostgresRepository) ListCompletedByUser(context context.Context, userID string) ([]*Mission, error) {
	t := schema.CoreMission

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s @> %s
		ORDER BY %s DESC;
	`,
		missionColumns(t), t.Table,
		t.Completers, userEntry("$1"),
		t.Number,
	)

	return repository.queryUserView(context, query, userID)
}

// queryUserView runs a view query parameterized only by the user id.
func (repository *PostgresRepository) queryUserView(context context.Context, query, userID string) ([]*Mission, error) {
	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Mission")
	}
	defer rows.Close()

	var missions []*Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Mission")
		}
		missions = append(missions, m)
	}

	return missions, nil
}
