// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/questline/questline/internal/platform/apperr"
	"github.com/questline/questline/internal/platform/database/schema"
	"github.com/questline/questline/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on top of pgxpool.
//
// Privilege and status flips are single conditional UPDATEs gated on the
// current state, so a no-op transition is detected by RowsAffected alone
// with no read-modify-write window.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func userAuthColumns(t schema.UserAuthTable) string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s",
		t.Registration, t.UUID, t.Password, t.Roles, t.Active, t.CreatedAt, t.UpdatedAt)
}

func scanUserAuth(row interface{ Scan(...any) error }) (*UserAuth, error) {
	user := &UserAuth{}
	err := row.Scan(
		&user.Registration, &user.UUID, &user.PasswordHash, &user.Roles,
		&user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new credential record into the users.auth table.

Description: The registration number is the primary key; a unique violation
is mapped to the client-safe duplicate-account error instead of leaking the
constraint name.

Parameters:
  - context: context.Context
  - user: *UserAuth (Entity to persist)

Returns:
  - error: apperr.ErrAccountExists or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, user *UserAuth) error {
	t := schema.UserAuth

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING %s, %s;
	`,
		t.Table,
		t.Registration, t.UUID, t.Password, t.Roles, t.Active,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		user.Registration, user.UUID, user.PasswordHash, user.Roles,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.ErrAccountExists
		}
		return fmt.Errorf("postgres_auth_create_failed: %w", err)
	}

	user.Active = true
	return nil
}

func (repository *PostgresRepository) GetByRegistration(context context.Context, registration string) (*UserAuth, error) {
	t := schema.UserAuth

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1;
	`, userAuthColumns(t), t.Table, t.Registration)

	user, err := scanUserAuth(repository.db.QueryRow(context, query, registration))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

func (repository *PostgresRepository) GetByUUID(context context.Context, uuid string) (*UserAuth, error) {
	t := schema.UserAuth

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1;
	`, userAuthColumns(t), t.Table, t.UUID)

	user, err := scanUserAuth(repository.db.QueryRow(context, query, uuid))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
EnableUser activates a disabled account.

Description: Gated on the account currently being inactive, so enabling an
already-active account is reported as a no-op violation rather than silently
succeeding.

Parameters:
  - context: context.Context
  - uuid: string

Returns:
  - error: apperr.ErrCantEnableUser or execution failures
*/
func (repository *PostgresRepository) EnableUser(context context.Context, uuid string) error {
	t := schema.UserAuth

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = TRUE, %s = now()
		WHERE %s = $1 AND NOT %s;
	`, t.Table, t.Active, t.UpdatedAt, t.UUID, t.Active)

	tag, err := repository.db.Exec(context, query, uuid)
	if err != nil {
		return fmt.Errorf("postgres_auth_enable_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCantEnableUser
	}

	return nil
}

/*
DisableUser deactivates an active account.

Parameters:
  - context: context.Context
  - uuid: string

Returns:
  - error: apperr.ErrCantDisableUser or execution failures
*/
func (repository *PostgresRepository) DisableUser(context context.Context, uuid string) error {
	t := schema.UserAuth

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = FALSE, %s = now()
		WHERE %s = $1 AND %s;
	`, t.Table, t.Active, t.UpdatedAt, t.UUID, t.Active)

	tag, err := repository.db.Exec(context, query, uuid)
	if err != nil {
		return fmt.Errorf("postgres_auth_disable_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCantDisableUser
	}

	return nil
}

/*
GiveAdminPrivileges appends 'admin' to the account's role array.

Description: The NOT ANY guard keeps the append idempotence check inside the
statement itself, so a concurrent double-grant cannot produce a duplicate
role entry.

Parameters:
  - context: context.Context
  - uuid: string

Returns:
  - error: apperr.ErrCantGiveAdminPrivileges or execution failures
*/
func (repository *PostgresRepository) GiveAdminPrivileges(context context.Context, uuid string) error {
	t := schema.UserAuth

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = array_append(%s, 'admin'), %s = now()
		WHERE %s = $1 AND NOT ('admin' = ANY(%s));
	`, t.Table, t.Roles, t.Roles, t.UpdatedAt, t.UUID, t.Roles)

	tag, err := repository.db.Exec(context, query, uuid)
	if err != nil {
		return fmt.Errorf("postgres_auth_give_admin_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCantGiveAdminPrivileges
	}

	return nil
}

/*
RevokeAdminPrivileges removes 'admin' from the account's role array.

Parameters:
  - context: context.Context
  - uuid: string

Returns:
  - error: apperr.ErrCantRevokeAdminPrivileges or execution failures
*/
func (repository *PostgresRepository) RevokeAdminPrivileges(context context.Context, uuid string) error {
	t := schema.UserAuth

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = array_remove(%s, 'admin'), %s = now()
		WHERE %s = $1 AND 'admin' = ANY(%s);
	`, t.Table, t.Roles, t.Roles, t.UpdatedAt, t.UUID, t.Roles)

	tag, err := repository.db.Exec(context, query, uuid)
	if err != nil {
		return fmt.Errorf("postgres_auth_revoke_admin_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCantRevokeAdminPrivileges
	}

	return nil
}
