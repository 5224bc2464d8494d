// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package reward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/database/schema"
	"github.com/questline/questline/internal/platform/dberr"
)

// userEntry renders a JSONB fragment matching list entries belonging to one
// user, for use with the @> containment operator.
func userEntry(param string) string {
	return fmt.Sprintf(`jsonb_build_array(jsonb_build_object('user_id', %s::text))`, param)
}

// PostgresRepository implements [Repository] on top of pgxpool.
//
// Claimer and handed lists live as JSONB arrays on the reward row itself,
// so every inventory transition is one conditional UPDATE whose
// RowsAffected count is the modified-count the engine's protocol needs.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func rewardColumns(t schema.CoreRewardTable) string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Number, t.Name, t.Description, t.Price, t.Availability,
		t.Active, t.Claimers, t.Handed, t.CreatedAt, t.UpdatedAt)
}

func scanReward(row interface{ Scan(...any) error }) (*Reward, error) {
	r := &Reward{}
	err := row.Scan(
		&r.ID, &r.Number, &r.Name, &r.Description, &r.Price, &r.Availability,
		&r.Active, &r.Claimers, &r.Handed, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Reward, int, error) {
	t := schema.CoreReward

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, t.Table)

	var total int
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Reward")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2;
	`, rewardColumns(t), t.Table, t.Number)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Reward")
	}
	defer rows.Close()

	var rewards []*Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Reward")
		}
		rewards = append(rewards, r)
	}

	return rewards, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Reward, error) {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1;
	`, rewardColumns(t), t.Table, t.ID)

	r, err := scanReward(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Reward")
	}

	return r, nil
}

func (repository *PostgresRepository) Create(context context.Context, reward *Reward) error {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING %s, %s, %s;
	`,
		t.Table,
		t.ID, t.Name, t.Description, t.Price, t.Availability, t.Active,
		t.Number, t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		reward.ID, reward.Name, reward.Description, reward.Price, reward.Availability,
	).Scan(&reward.Number, &reward.CreatedAt, &reward.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres_reward_create_failed: %w", err)
	}

	reward.Active = true
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	t := schema.CoreReward

	// Rewards that were already handed out are immutable history.
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = '[]'::jsonb;
	`, t.Table, t.ID, t.Handed)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_reward_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrInvalidRequest
	}

	return nil
}

/*
Reserve takes one unit of availability for a claimer in a single guarded write.

Description: The decrement and the claimer push share one WHERE clause, so
two users racing for the last unit contend on the same availability > 0
predicate and exactly one wins. The loser's zero-row match is the
REWARD_UNAVAILABLE rejection.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)
  - entry: Claim (The claiming user plus audit fields)

Returns:
  - error: apperr.ErrRewardUnavailable on a zero-row match
*/
func (repository *PostgresRepository) Reserve(context context.Context, rewardID string, entry Claim) error {
	t := schema.CoreReward

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("postgres_reward_reserve_encode_failed: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s - 1, %s = %s || $3::jsonb, %s = now()
		WHERE %s = $1
		  AND %s
		  AND %s > 0
		  AND NOT %s @> %s;
	`,
		t.Table,
		t.Availability, t.Availability, t.Claimers, t.Claimers, t.UpdatedAt,
		t.ID,
		t.Active,
		t.Availability,
		t.Claimers, userEntry("$2"),
	)

	tag, err := repository.db.Exec(context, query, rewardID, entry.UserID, payload)
	if err != nil {
		return fmt.Errorf("postgres_reward_reserve_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrRewardUnavailable
	}

	return nil
}

/*
ReleaseClaim returns a claimed unit to the availability pool.

Description: The exact inverse of [Reserve] on the conservation invariant:
availability + |claimers| is unchanged by a Reserve/ReleaseClaim pair. The
gate tolerates nothing but a present claimer entry, which also makes the
claim-rollback compensation a no-op-with-error if the claim was already
released by a concurrent cancel.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)
  - userID: string (The claiming user)

Returns:
  - error: apperr.ErrCantHandOrCancelReward on a zero-row match
*/
func (repository *PostgresRepository) ReleaseClaim(context context.Context, rewardID, userID string) error {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + 1,
		    %s = (
		        SELECT COALESCE(jsonb_agg(entry), '[]'::jsonb)
		        FROM jsonb_array_elements(%s) AS entry
		        WHERE entry->>'user_id' <> $2
		    ),
		    %s = now()
		WHERE %s = $1
		  AND %s @> %s;
	`,
		t.Table,
		t.Availability, t.Availability,
		t.Claimers,
		t.Claimers,
		t.UpdatedAt,
		t.ID,
		t.Claimers, userEntry("$2"),
	)

	tag, err := repository.db.Exec(context, query, rewardID, userID)
	if err != nil {
		return fmt.Errorf("postgres_reward_release_claim_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCantHandOrCancelReward
	}

	return nil
}

/*
Hand records the physical delivery of a claimed reward.

Description: Moves the user's entry from claimers to handed in one write.
The consumed unit stays consumed and no points move; the charge already
happened at claim time.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)
  - entry: Claim (The receiving user plus audit fields)

Returns:
  - error: apperr.ErrCantHandOrCancelReward on a zero-row match
*/
func (repository *PostgresRepository) Hand(context context.Context, rewardID string, entry Claim) error {
	t := schema.CoreReward

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("postgres_reward_hand_encode_failed: %w", err)
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
		  AND %s @> %s;
	`,
		t.Table,
		t.Handed, t.Handed,
		t.Claimers,
		t.Claimers,
		t.UpdatedAt,
		t.ID,
		t.Active,
		t.Claimers, userEntry("$2"),
	)

	tag, err := repository.db.Exec(context, query, rewardID, entry.UserID, payload)
	if err != nil {
		return fmt.Errorf("postgres_reward_hand_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCantHandOrCancelReward
	}

	return nil
}

/*
Deactivate soft-deletes the reward and returns its outstanding claims.

Description: The conditional write doubles as the read: RETURNING hands back
the claimer list exactly as it stood when active flipped, which is the
fan-out refund's work list. A reward that is already inactive matches no
row.

Parameters:
  - context: context.Context
  - rewardID: string (Reward UUID)

Returns:
  - []Claim: The outstanding claims at deactivation time
  - error: apperr.ErrRewardAlreadyInactive on a zero-row match
*/
func (repository *PostgresRepository) Deactivate(context context.Context, rewardID string) ([]Claim, error) {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = FALSE, %s = now()
		WHERE %s = $1 AND %s
		RETURNING %s;
	`,
		t.Table,
		t.Active, t.UpdatedAt,
		t.ID, t.Active,
		t.Claimers,
	)

	var claimers []Claim
	err := repository.db.QueryRow(context, query, rewardID).Scan(&claimers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrRewardAlreadyInactive
		}
		return nil, fmt.Errorf("postgres_reward_deactivate_failed: %w", err)
	}

	return claimers, nil
}

// # Claim Views

func (repository *PostgresRepository) ListClaimed(context context.Context) ([]*Reward, error) {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s <> '[]'::jsonb
		ORDER BY %s DESC;
	`, rewardColumns(t), t.Table, t.Claimers, t.UpdatedAt)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Reward")
	}
	defer rows.Close()

	return collectRewards(rows)
}

func (repository *PostgresRepository) ListAvailableForUser(context context.Context, userID string) ([]*Reward, error) {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		  AND %s > 0
		  AND NOT %s @> %s
		ORDER BY %s ASC;
	`,
		rewardColumns(t), t.Table,
		t.Active,
		t.Availability,
		t.Claimers, userEntry("$1"),
		t.Price,
	)

	return repository.queryUserView(context, query, userID)
}

func (repository *PostgresRepository) ListClaimedByUser(context context.Context, userID string) ([]*Reward, error) {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s @> %s
		ORDER BY %s DESC;
	`,
		rewardColumns(t), t.Table,
		t.Claimers, userEntry("$1"),
		t.Number,
	)

	return repository.queryUserView(context, query, userID)
}

func (repository *PostgresRepository) ListHandedToUser(context context.Context, userID string) ([]*Reward, error) {
	t := schema.CoreReward

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s @> %s
		ORDER BY %s DESC;
	`,
		rewardColumns(t), t.Table,
		t.Handed, userEntry("$1"),
		t.Number,
	)

	return repository.queryUserView(context, query, userID)
}

// queryUserView runs a view query parameterized only by the user id.
func (repository *PostgresRepository) queryUserView(context context.Context, query, userID string) ([]*Reward, error) {
	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Reward")
	}
	defer rows.Close()

	return collectRewards(rows)
}

func collectRewards(rows pgx.Rows) ([]*Reward, error) {
	var rewards []*Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Reward")
		}
		rewards = append(rewards, r)
	}
	return rewards, nil
}
