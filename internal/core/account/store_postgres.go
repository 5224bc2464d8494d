// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/database/schema"
	"github.com/questline/questline/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on top of pgxpool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*User, int, error) {
	t := schema.CoreAccount

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, t.Table)

	var total int
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "User")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2;
	`,
		t.ID, t.Name, t.Email, t.Balance, t.TotalPoints, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "User")
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Balance, &u.TotalPoints, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "User")
		}
		users = append(users, u)
	}

	return users, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*User, error) {
	t := schema.CoreAccount

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1;
	`,
		t.ID, t.Name, t.Email, t.Balance, t.TotalPoints, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.ID,
	)

	u := &User{}
	err := repository.db.QueryRow(context, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Balance, &u.TotalPoints, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return u, nil
}

func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	t := schema.CoreAccount

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, 0, 0)
		RETURNING %s, %s;
	`,
		t.Table,
		t.ID, t.Name, t.Email, t.Balance, t.TotalPoints,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, user.ID, user.Name, user.Email).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.ErrAccountExists
		}
		return fmt.Errorf("postgres_account_create_failed: %w", err)
	}

	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	t := schema.CoreAccount

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1;`, t.Table, t.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_account_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

func (repository *PostgresRepository) Exists(context context.Context, id string) (bool, error) {
	t := schema.CoreAccount

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1);`, t.Table, t.ID)

	var exists bool
	if err := repository.db.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_account_exists_failed: %w", err)
	}

	return exists, nil
}

func (repository *PostgresRepository) FindBalance(context context.Context, id string) (int, error) {
	t := schema.CoreAccount

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1;`, t.Balance, t.Table, t.ID)

	var balance int
	if err := repository.db.QueryRow(context, query, id).Scan(&balance); err != nil {
		return 0, dberr.Wrap(err, "User")
	}

	return balance, nil
}

/*
GivePoints credits a mission award to the user's ledger.

Both the spendable balance and the lifetime total grow by the same amount.
This is the only mutation that increases the lifetime total.

Parameters:
  - context: context.Context
  - id: string (User UUID)
  - points: int (Award amount, must be positive)

Returns:
  - error: apperr.NotFound if the user row is missing
*/
func (repository *PostgresRepository) GivePoints(context context.Context, id string, points int) error {
	t := schema.CoreAccount

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = %s + $2, %s = now()
		WHERE %s = $1;
	`,
		t.Table,
		t.Balance, t.Balance, t.TotalPoints, t.TotalPoints, t.UpdatedAt,
		t.ID,
	)

	tag, err := repository.db.Exec(context, query, id, points)
	if err != nil {
		return fmt.Errorf("postgres_account_give_points_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
WithdrawPoints charges a reward price against the user's balance.

The debit is guarded by the balance itself: the UPDATE matches only while
balance >= amount, so a concurrent spend that drains the balance first makes
this call fail instead of driving the balance negative.

Parameters:
  - context: context.Context
  - id: string (User UUID)
  - amount: int (Charge amount, must be positive)

Returns:
  - error: apperr.ErrInsufficientBalance if the guarded update matched no row
*/
func (repository *PostgresRepository) WithdrawPoints(context context.Context, id string, amount int) error {
	t := schema.CoreAccount

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s - $2, %s = now()
		WHERE %s = $1 AND %s >= $2;
	`,
		t.Table,
		t.Balance, t.Balance, t.UpdatedAt,
		t.ID, t.Balance,
	)

	tag, err := repository.db.Exec(context, query, id, amount)
	if err != nil {
		return fmt.Errorf("postgres_account_withdraw_points_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrInsufficientBalance
	}

	return nil
}

/*
RefundPoints restores a previously charged amount to the balance.

A refund restores spendable points only. The lifetime total is untouched:
restored points are not newly earned points.

Parameters:
  - context: context.Context
  - id: string (User UUID)
  - amount: int (Refund amount, must be positive)

Returns:
  - error: apperr.NotFound if the user row is missing
*/
func (repository *PostgresRepository) RefundPoints(context context.Context, id string, amount int) error {
	t := schema.CoreAccount

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = now()
		WHERE %s = $1;
	`,
		t.Table,
		t.Balance, t.Balance, t.UpdatedAt,
		t.ID,
	)

	tag, err := repository.db.Exec(context, query, id, amount)
	if err != nil {
		return fmt.Errorf("postgres_account_refund_points_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
