// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/scram"
)

// passwordIters is the PBKDF2 iterations count of the role passwords.
const passwordIters = 15000

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func roleIdent(roleSuffix, role repo.Role) string {
	return ident(string(role + roleSuffix))
}

func exec[Q postgres.Queryer](
	ctx context.Context, q Q, sql string, args ...any,
) error {
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("exec(%q): %w", sql, err)
	}
	return nil
}

// DropIfExists drops the `schema` schema with cascade if it exists.
func DropIfExists[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	return exec(ctx, q, "DROP SCHEMA IF EXISTS "+ident(schema)+" CASCADE")
}

// CreateSchema creates the `schema` schema which must not exist.
func CreateSchema[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	return exec(ctx, q, "CREATE SCHEMA "+ident(schema))
}

// CreateRoleIfNotExists creates the `role` role (suffixed by
// `roleSuffix`) with the login option, unless it exists already.
// No password is set for a created role.
func CreateRoleIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role, role repo.Role,
) error {
	var exists bool
	err := q.GORM(ctx).Raw(
		"SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = ?)",
		string(role+roleSuffix),
	).Scan(&exists).Error
	if err != nil {
		return fmt.Errorf("querying pg_roles: %w", err)
	}
	if exists {
		return nil
	}
	return exec(ctx, q, "CREATE ROLE "+roleIdent(roleSuffix, role)+" LOGIN")
}

// GrantPrivileges grants ALL privileges on the `schema` schema to the
// `role` role (suffixed by `roleSuffix`), so it may create tables in
// that schema and query them.
func GrantPrivileges[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	roleSuffix repo.Role,
	schema string,
	role repo.Role,
) error {
	return exec(ctx, q, fmt.Sprintf(
		"GRANT ALL ON SCHEMA %s TO %s",
		ident(schema), roleIdent(roleSuffix, role),
	))
}

// SetSearchPath sets the default search_path of the given role to the
// `schema` schema alone.
func SetSearchPath[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	roleSuffix repo.Role,
	schema string,
	role repo.Role,
) error {
	return exec(ctx, q, fmt.Sprintf(
		"ALTER ROLE %s SET search_path TO %s",
		roleIdent(roleSuffix, role), ident(schema),
	))
}

// ChangePasswords updates the passwords of roles in the tx transaction.
// Passwords are hashed by `hasher` before being sent to the DBMS, so
// they are never logged in plaintext.
func ChangePasswords(
	ctx context.Context,
	tx *postgres.Tx,
	roleSuffix repo.Role,
	hasher scram.Hasher,
	roles []repo.Role,
	passwords []string,
) error {
	if len(roles) != len(passwords) {
		return errors.New("roles and passwords lengths are not equal")
	}
	for i, role := range roles {
		h, err := hasher.Hash(passwords[i], "", passwordIters)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", role, err)
		}
		// The SCRAM hash consists of base64 letters, '$', and ':'.
		q := fmt.Sprintf(
			"ALTER ROLE %s WITH PASSWORD '%s'",
			roleIdent(roleSuffix, role), h,
		)
		if _, err := tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("changing password of %q: %w", role, err)
		}
	}
	return nil
}
