// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema is a facade for database schema verifiers which can
// be used for testing purposes. The tables of each schema major version
// are verified by a schN sub-package, while newer minor versions may
// only add to them. Verifiers query the database independently of the
// repository packages (using sqlx and the pgx stdlib driver), so the
// rows which are written by the repositories are observed as stored.
package schema

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/clean-lending/internal/test/schema/sch1"
	"github.com/momeni/clean-lending/pkg/core/model"
)

// Verifier interface presents the database schema verifier expectations
// as they are provided by each major version specific implementation.
type Verifier interface {
	// VerifySchema verifies the database schema (such as tables and
	// their columns). The `t` argument is marked as failed if the
	// schema was invalid. Existing rows are not checked.
	VerifySchema(ctx context.Context, t *testing.T)

	// VerifyDevData verifies the schema contents assuming that the
	// development suitable data items were inserted there. Only
	// presence of development data and not the absence of extra data
	// rows will be checked.
	VerifyDevData(ctx context.Context, t *testing.T)

	// VerifyProdData verifies the schema contents assuming that the
	// production suitable data items were inserted there.
	VerifyProdData(ctx context.Context, t *testing.T)

	// VerifyLoans checks the loans invariants which must hold after
	// any sequence of borrowing and returning operations.
	VerifyLoans(ctx context.Context, t *testing.T)
}

// NewVerifier creates a new schema Verifier instance based on the
// given `v` semantic version. If the major or minor versions of `v` are
// not supported, an error will be returned.
// Returned Verifier instance will query the `db` database.
func NewVerifier(db *sqlx.DB, v model.SemVer) (Verifier, error) {
	switch major := v[0]; major {
	case 1:
		if minor := v[1]; minor > sch1.Minor {
			return nil, fmt.Errorf("unsupported minor: %d", minor)
		}
		return sch1.New(db), nil
	default:
		return nil, fmt.Errorf("unsupported major: %d", major)
	}
}
