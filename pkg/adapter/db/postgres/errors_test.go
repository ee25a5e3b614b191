// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgError(code, constraint string) error {
	return fmt.Errorf("query: %w", &pgconn.PgError{
		Code:           code,
		ConstraintName: constraint,
		Message:        "duplicate key value violates unique constraint",
	})
}

// detail returns the message which is reported to the clients.
func detail(t *testing.T, err error) string {
	t.Helper()
	var ce *cerr.Error
	require.True(t, errors.As(err, &ce), "%v is not classified", err)
	return ce.Err.Error()
}

func TestTranslate(t *testing.T) {
	ctx := context.Background()

	err := postgres.Translate(
		ctx, pgError("23505", postgres.LoansActiveBookIndex),
	)
	assert.ErrorIs(t, err, cerr.ErrBookUnavailable)
	assert.Equal(t, http.StatusConflict, cerr.StatusCode(err))
	assert.Equal(t, cerr.ErrBookUnavailable.Error(), detail(t, err))

	err = postgres.Translate(ctx, pgError("23505", postgres.BooksISBNKey))
	var ve *model.ValidationError
	if assert.True(t, errors.As(err, &ve)) {
		assert.True(t, ve.Has("isbn"))
	}
	assert.Equal(t, http.StatusBadRequest, cerr.StatusCode(err))

	err = postgres.Translate(ctx, pgError("23505", postgres.UsersUsernameKey))
	assert.ErrorIs(t, err, cerr.ErrUsernameTaken)
	assert.Equal(t, cerr.ErrUsernameTaken.Error(), detail(t, err))

	err = postgres.Translate(ctx, pgError("23505", "other_key"))
	assert.ErrorIs(t, err, cerr.ErrConflict)

	err = postgres.Translate(ctx, pgError("23503", "loans_book_id_fkey"))
	assert.ErrorIs(t, err, cerr.ErrConflict)
	assert.Equal(t, http.StatusConflict, cerr.StatusCode(err))

	plain := errors.New("connection reset")
	assert.Same(t, plain, postgres.Translate(ctx, plain))
	assert.NoError(t, postgres.Translate(ctx, nil))

	unknown := pgError("42P01", "")
	assert.Same(t, unknown, postgres.Translate(ctx, unknown))
}

func TestTranslateConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	for _, code := range []string{"40001", "40P01"} {
		err := postgres.Translate(ctx, pgError(code, ""))
		assert.ErrorIs(t, err, cerr.ErrConcurrentUpdate, code)
		assert.Equal(t, http.StatusConflict, cerr.StatusCode(err), code)
		assert.Equal(t, cerr.ErrConcurrentUpdate.Error(), detail(t, err))
	}
}

func TestTranslateConcealsDriverError(t *testing.T) {
	ctx := context.Background()
	for _, err := range []error{
		pgError("23505", postgres.LoansActiveBookIndex),
		pgError("23503", "loans_user_id_fkey"),
		pgError("40001", ""),
	} {
		translated := postgres.Translate(ctx, err)
		var pgErr *pgconn.PgError
		assert.False(t, errors.As(translated, &pgErr), "%v", translated)
		assert.NotContains(t, translated.Error(), "SQLSTATE")
		assert.NotContains(t, translated.Error(), "constraint")
	}

	err := postgres.Conceal(
		ctx, pgError("23503", "loans_book_id_fkey"),
		cerr.Conflict(cerr.ErrBookReferenced),
	)
	assert.ErrorIs(t, err, cerr.ErrBookReferenced)
	assert.Equal(t, cerr.ErrBookReferenced.Error(), detail(t, err))
}
