// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sch1 provides database schema major version 1 verification
// logic. This implementation may be instantiated indirectly using
// the github.com/momeni/clean-lending/internal/test/schema package.
package sch1

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These constants present the relevant major, minor, and patch semantic
// versions of this schema verifier package. Whenever a new minor
// version is released, this verifier needs to check its changes too.
const (
	Major = postgres.Major
	Minor = postgres.Minor
	Patch = postgres.Patch
)

// Verifier implements the schema major version 1 verification logic.
type Verifier struct {
	db *sqlx.DB
}

// New instantiates a Verifier struct, wrapping the `db` database.
func New(db *sqlx.DB) *Verifier {
	return &Verifier{db}
}

type column struct {
	Table    string `db:"table_name"`
	Name     string `db:"column_name"`
	Nullable string `db:"is_nullable"`
}

var expectedColumns = map[string][]string{
	"users": {"id", "username", "is_staff", "created_at"},
	"books": {
		"id", "title", "author", "isbn", "description",
		"created_at", "updated_at",
	},
	"loans": {
		"id", "book_id", "user_id", "borrowed_at", "due_date",
		"returned_at",
	},
	"settings": {"id", "config"},
}

// VerifySchema checks the tables and columns which must exist in
// the current schema (as found by the search_path). Only returned_at
// may be NULL among the loans columns.
func (v *Verifier) VerifySchema(ctx context.Context, t *testing.T) {
	var cols []column
	err := v.db.SelectContext(ctx, &cols, `SELECT table_name, column_name,
	is_nullable
FROM information_schema.columns
WHERE table_schema = current_schema()
ORDER BY table_name, ordinal_position`)
	require.NoError(t, err, "querying information_schema.columns")
	found := make(map[string][]string)
	for _, c := range cols {
		found[c.Table] = append(found[c.Table], c.Name)
		if c.Table == "loans" {
			assert.Equal(
				t, c.Name == "returned_at", c.Nullable == "YES",
				"nullability of loans.%s", c.Name,
			)
		}
	}
	for table, names := range expectedColumns {
		assert.ElementsMatch(t, names, found[table], "table %q", table)
	}
	var idx int
	err = v.db.GetContext(ctx, &idx, `SELECT count(*) FROM pg_indexes
WHERE schemaname = current_schema() AND indexname = $1`,
		postgres.LoansActiveBookIndex,
	)
	require.NoError(t, err, "querying pg_indexes")
	assert.Equal(t, 1, idx, "missing %s index", postgres.LoansActiveBookIndex)
}

// VerifyDevData checks for presence of the development suitable initial
// data and marks possible issues using the `t` testing argument.
// Presence of extra rows is acceptable.
func (v *Verifier) VerifyDevData(ctx context.Context, t *testing.T) {
	var staff bool
	err := v.db.GetContext(
		ctx, &staff,
		"SELECT is_staff FROM users WHERE username = $1", "librarian",
	)
	if assert.NoError(t, err, "querying the librarian user") {
		assert.True(t, staff, "librarian must be a staff member")
	}
	var isbns []string
	err = v.db.SelectContext(ctx, &isbns, "SELECT isbn FROM books")
	require.NoError(t, err, "querying books")
	assert.Subset(t, isbns, []string{"9780134190440", "0134757599"})
	var loans int
	err = v.db.GetContext(ctx, &loans, "SELECT count(*) FROM loans")
	require.NoError(t, err, "counting loans")
	assert.Zero(t, loans, "dev data must not contain any loan")
}

// VerifyProdData checks that the catalog is empty and the settings
// row is present.
func (v *Verifier) VerifyProdData(ctx context.Context, t *testing.T) {
	var books, settings int
	err := v.db.GetContext(ctx, &books, "SELECT count(*) FROM books")
	require.NoError(t, err, "counting books")
	assert.Zero(t, books, "prod data must not contain any book")
	err = v.db.GetContext(ctx, &settings, "SELECT count(*) FROM settings")
	require.NoError(t, err, "counting settings")
	assert.Equal(t, 1, settings, "settings row is missing")
}

type loanRow struct {
	BookID     string     `db:"book_id"`
	BorrowedAt time.Time  `db:"borrowed_at"`
	DueDate    time.Time  `db:"due_date"`
	ReturnedAt *time.Time `db:"returned_at"`
}

// VerifyLoans checks that each book has at most one active loan and
// all loans have consistent timestamps.
func (v *Verifier) VerifyLoans(ctx context.Context, t *testing.T) {
	var rows []loanRow
	err := v.db.SelectContext(ctx, &rows, `SELECT book_id, borrowed_at,
	due_date, returned_at
FROM loans`)
	require.NoError(t, err, "querying loans")
	active := make(map[string]int)
	for _, r := range rows {
		assert.True(
			t, r.DueDate.After(r.BorrowedAt),
			"due date of a %s loan precedes its borrowing", r.BookID,
		)
		if r.ReturnedAt == nil {
			active[r.BookID]++
			continue
		}
		assert.False(
			t, r.ReturnedAt.Before(r.BorrowedAt),
			"a %s loan is returned before being borrowed", r.BookID,
		)
	}
	for book, n := range active {
		assert.LessOrEqual(t, n, 1, "active loans of %s book", book)
	}
}
