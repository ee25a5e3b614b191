// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/model"
)

// Loans is the loans repository.
type Loans interface {
	Conn(Conn) LoansConnQueryer
	Tx(Tx) LoansTxQueryer
}

type LoansConnQueryer interface {
	LoansQueryer
}

// LoansTxQueryer contains the loans mutating queries. They are only
// meaningful after checking the borrowing rules in the same
// transaction, so a connection may not run them.
type LoansTxQueryer interface {
	LoansQueryer

	// Create inserts the l loan and returns it with its new ID.
	// If l.BookID has an active loan already, the active loan
	// uniqueness constraint rejects the insertion and the violation
	// is reported as cerr.ErrBookUnavailable, so concurrent borrowers
	// of a book observe a classified error instead of a driver error.
	Create(ctx context.Context, l *model.Loan) (*model.Loan, error)

	// MarkReturned sets the returned_at of the id loan to at, if and
	// only if it is still active. The returned boolean is false when
	// the loan was returned already (e.g., by a concurrent request).
	MarkReturned(
		ctx context.Context, id uuid.UUID, at time.Time,
	) (bool, error)
}

// LoansQueryer contains the loans reading queries. Returned loans have
// their Book and User expansions filled.
type LoansQueryer interface {
	// Get finds the id loan or returns cerr.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Loan, error)

	// List returns loans of userID (or all loans if userID is nil)
	// ordered by their borrowing time descendingly.
	List(ctx context.Context, userID *uuid.UUID) ([]model.Loan, error)

	// ListActiveByUser returns the active loans of userID ordered by
	// their borrowing time descendingly.
	ListActiveByUser(
		ctx context.Context, userID uuid.UUID,
	) ([]model.Loan, error)

	// CountActiveByUser counts the active loans of userID.
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// HasOverdue reports if userID has an active loan whose due date
	// is before the now time.
	HasOverdue(
		ctx context.Context, userID uuid.UUID, now time.Time,
	) (bool, error)
}
