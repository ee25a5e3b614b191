// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schinit provides the Initializer type which creates the
// tables of the current schema major version and fills them with the
// development or production suitable initial data.
package schinit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

// Initializer wraps a single transaction of the normal role. The caller
// is responsible to commit that transaction in order to finalize the
// initialization. The schema must exist and be the default search_path
// of the normal role, so tables are referenced without qualification.
type Initializer struct {
	tx *postgres.Tx
}

// New creates a new Initializer instance, wrapping the given `tx`.
func New(tx repo.Tx) *Initializer {
	return &Initializer{
		tx: tx.(*postgres.Tx),
	}
}

var ddl = []string{
	`CREATE TABLE users (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	username text NOT NULL CONSTRAINT ` + postgres.UsersUsernameKey + ` UNIQUE
		CHECK (username <> ''),
	is_staff boolean NOT NULL DEFAULT FALSE,
	created_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE TABLE books (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	title varchar(255) NOT NULL CHECK (title <> ''),
	author varchar(255) NOT NULL CHECK (author <> ''),
	isbn varchar(20) NOT NULL CONSTRAINT ` + postgres.BooksISBNKey + ` UNIQUE
		CHECK (isbn ~ '^([0-9]{10}|[0-9]{13})$'),
	description text NOT NULL DEFAULT '',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE TABLE loans (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	book_id uuid NOT NULL REFERENCES books (id) ON DELETE RESTRICT,
	user_id uuid NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
	borrowed_at timestamptz NOT NULL,
	due_date timestamptz NOT NULL,
	returned_at timestamptz NULL,
	CHECK (due_date > borrowed_at),
	CHECK (returned_at IS NULL OR returned_at >= borrowed_at)
)`,
	`CREATE UNIQUE INDEX ` + postgres.LoansActiveBookIndex + `
	ON loans (book_id) WHERE returned_at IS NULL`,
	`CREATE INDEX loans_user_active_idx
	ON loans (user_id, due_date) WHERE returned_at IS NULL`,
	`CREATE TABLE settings (
	id integer PRIMARY KEY CHECK (id = 1),
	config jsonb NOT NULL
)`,
}

func (si *Initializer) createTables(ctx context.Context) error {
	for _, q := range ddl {
		if _, err := si.tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("exec(%q): %w", q, err)
		}
	}
	return nil
}

// InitDevSchema creates the tables and fills them with a few users and
// books, so the web API may be tried right away.
func (si *Initializer) InitDevSchema(ctx context.Context) error {
	if err := si.createTables(ctx); err != nil {
		return err
	}
	gdb := si.tx.GORM(ctx)
	users := []struct {
		username string
		isStaff  bool
	}{
		{"librarian", true},
		{"alice", false},
		{"bob", false},
	}
	for _, u := range users {
		err := gdb.Exec(
			"INSERT INTO users (id, username, is_staff) VALUES (?, ?, ?)",
			uuid.New(), u.username, u.isStaff,
		).Error
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", u.username, err)
		}
	}
	books := [][3]string{
		{"The Go Programming Language", "Alan Donovan", "9780134190440"},
		{"Clean Architecture", "Robert C. Martin", "9780134494166"},
		{"Designing Data-Intensive Applications", "Martin Kleppmann", "9781449373320"},
		{"The Pragmatic Programmer", "David Thomas", "9780135957059"},
		{"Refactoring", "Martin Fowler", "0134757599"},
	}
	for _, b := range books {
		err := gdb.Exec(
			"INSERT INTO books (id, title, author, isbn) VALUES (?, ?, ?, ?)",
			uuid.New(), b[0], b[1], b[2],
		).Error
		if err != nil {
			return fmt.Errorf("inserting book %q: %w", b[0], err)
		}
	}
	return nil
}

// InitProdSchema creates empty tables.
func (si *Initializer) InitProdSchema(ctx context.Context) error {
	return si.createTables(ctx)
}

// PersistSettings stores the mutableSettings json document as the
// only row of the settings table.
func (si *Initializer) PersistSettings(
	ctx context.Context, mutableSettings []byte,
) error {
	return PersistSettings(ctx, si.tx, mutableSettings)
}

// PersistSettings inserts or replaces the settings row in tx.
func PersistSettings(
	ctx context.Context, tx *postgres.Tx, mutableSettings []byte,
) error {
	_, err := tx.Exec(ctx, `INSERT INTO settings (id, config)
VALUES (1, ?::jsonb)
ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config`,
		string(mutableSettings),
	)
	if err != nil {
		return fmt.Errorf("upserting settings: %w", err)
	}
	return nil
}

// LoadSettings reads the serialized mutable settings using `q`.
func LoadSettings(ctx context.Context, q repo.Queryer) ([]byte, error) {
	rs, err := q.Query(ctx, "SELECT config FROM settings WHERE id = 1")
	if err != nil {
		return nil, fmt.Errorf("querying settings table: %w", err)
	}
	defer rs.Close()
	var cfg []byte
	for rs.Next() {
		if err := rs.Scan(&cfg); err != nil {
			return nil, fmt.Errorf("scanning config column: %w", err)
		}
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("closing result set: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("missing settings row")
	}
	return cfg, nil
}
