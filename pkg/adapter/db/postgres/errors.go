// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/model"
)

// SQLSTATE codes which are classified by Translate.
const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// Translate converts the constraint violations and the serialization
// failures which are reported by PostgreSQL into classified errors, so
// the use cases may observe them like the failures of their own checks.
// The driver error is logged and is not wrapped by the returned error
// because its message names the tables and constraints and must not
// reach the clients. Other errors are returned as is.
func Translate(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	ce := classify(pgErr)
	if ce == nil {
		return err
	}
	return Conceal(ctx, err, ce)
}

func classify(pgErr *pgconn.PgError) *cerr.Error {
	switch pgErr.Code {
	case uniqueViolation:
		switch pgErr.ConstraintName {
		case LoansActiveBookIndex:
			return cerr.Conflict(cerr.ErrBookUnavailable)
		case BooksISBNKey:
			return cerr.Validation(model.FieldError(
				"isbn", "book with this isbn already exists.",
			))
		case UsersUsernameKey:
			return cerr.Conflict(cerr.ErrUsernameTaken)
		}
		return cerr.Conflict(cerr.ErrConflict)
	case foreignKeyViolation:
		return cerr.Conflict(cerr.ErrConflict)
	case serializationFailure, deadlockDetected:
		return cerr.Conflict(cerr.ErrConcurrentUpdate)
	}
	return nil
}

// Conceal logs the err driver error and returns ce in its place.
func Conceal(ctx context.Context, err error, ce *cerr.Error) error {
	attrs := []slog.Attr{log.Err("cause", err)}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		attrs = append(attrs,
			slog.String("sqlstate", pgErr.Code),
			slog.String("constraint", pgErr.ConstraintName),
		)
	}
	log.Info(ctx, "database error is classified", attrs...)
	return ce
}

// IsForeignKeyViolation reports if err is caused by a row which is
// still referenced (or references a missing row) through a foreign key.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// NotFound reports that the id entity of the kind type is missing.
func NotFound(kind string, id fmt.Stringer) error {
	return cerr.NotFound(fmt.Errorf("%s %s: %w", kind, id, cerr.ErrNotFound))
}
