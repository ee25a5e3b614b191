// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansuc contains the loans UseCase which manages the loan
// lifecycle. A loan is created by borrowing an available book and is
// closed by returning it. Borrowing is subject to these rules which
// are checked in order:
//  1. A user with an overdue active loan may not borrow,
//  2. A user may not have more than the max active loans,
//  3. The due date must be in the future,
//  4. The book must exist and must be available.
//
// All checks and the insertion are performed in one transaction.
// The checks produce friendly errors, while the database unique index
// on active loans of each book is the final arbiter between concurrent
// borrowers. Its violation is reported as an unavailable book too.
package loansuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

// DefaultMaxActiveLoans is used when WithMaxActiveLoans is not given.
const DefaultMaxActiveLoans = 5

// UseCase represents the loans use case. It holds a database
// connection pool, the loans and books repositories (to be guided
// with the DB pool), and the loans use case specific settings.
type UseCase struct {
	pool    repo.Pool
	loansrp repo.Loans
	booksrp repo.Books

	maxActiveLoans int
	now            func() time.Time
}

// New instantiates a loans use case.
// Required parameters are passed individually, so caller has to
// provision them and whenever they change, caller will notice and fix
// them due to a compilation error.
// Optional parameters are passed as a series of functional options
// in order to facilitate their validation and flexibility.
func New(
	p repo.Pool, l repo.Loans, b repo.Books, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, loansrp: l, booksrp: b}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.maxActiveLoans == 0 {
		uc.maxActiveLoans = DefaultMaxActiveLoans
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// MaxActiveLoans returns the effective max active loans per user.
func (loans *UseCase) MaxActiveLoans() int {
	return loans.maxActiveLoans
}

// Borrow use case creates an active loan of the bookID book for the
// user borrower, due at the given dueDate. The borrowing rules are
// checked in order and the first violated rule is reported.
// A concurrent update failure of the borrowing transaction is reported
// as cerr.ErrBookUnavailable.
// The created loan is returned with its book and user expansions.
func (loans *UseCase) Borrow(
	ctx context.Context,
	user *model.User,
	bookID uuid.UUID,
	dueDate time.Time,
) (loan *model.Loan, err error) {
	if user == nil {
		return nil, cerr.Authentication(errors.New("no user is given"))
	}
	now := loans.now()
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			loan, err = loans.borrow(ctx, tx, user, bookID, dueDate, now)
			return err
		})
	})
	if errors.Is(err, cerr.ErrConcurrentUpdate) {
		// a concurrent borrower of the same book committed first
		err = cerr.Conflict(cerr.ErrBookUnavailable)
	}
	if err != nil {
		if errors.Is(err, cerr.ErrBookUnavailable) {
			log.Info(
				ctx, "borrow rejected, book is unavailable",
				log.Valuer("user", user),
				slog.String("book", bookID.String()),
			)
		}
		return nil, err
	}
	log.Info(
		ctx, "book is borrowed",
		log.Stringer("loan", loan.ID),
		slog.String("book", bookID.String()),
		log.Valuer("user", user),
		slog.Time("due", loan.DueDate),
	)
	return loan, nil
}

func (loans *UseCase) borrow(
	ctx context.Context,
	tx repo.Tx,
	user *model.User,
	bookID uuid.UUID,
	dueDate, now time.Time,
) (*model.Loan, error) {
	lq := loans.loansrp.Tx(tx)
	overdue, err := lq.HasOverdue(ctx, user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("checking overdue loans: %w", err)
	}
	if overdue {
		return nil, cerr.BadRequest(cerr.ErrOverdueBlock)
	}
	n, err := lq.CountActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("counting active loans: %w", err)
	}
	if n >= loans.maxActiveLoans {
		return nil, cerr.BadRequest(fmt.Errorf(
			"%w (%d)", cerr.ErrLoanLimitExceeded, loans.maxActiveLoans,
		))
	}
	if !dueDate.After(now) {
		return nil, cerr.BadRequest(cerr.ErrInvalidDueDate)
	}
	book, err := loans.booksrp.Tx(tx).Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable {
		return nil, cerr.Conflict(cerr.ErrBookUnavailable)
	}
	l := &model.Loan{
		BookID:     bookID,
		UserID:     user.ID,
		BorrowedAt: now,
		DueDate:    dueDate,
	}
	if err := model.ValidateLoan(l, now); err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			return nil, cerr.Validation(ve)
		}
		return nil, err
	}
	created, err := lq.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	book.IsAvailable = false
	book.CurrentLoan = nil
	created.Book = book
	created.User = user
	return created, nil
}

// Return use case closes the loanID loan on behalf of the actor user
// who must be the borrower or a staff member. A loan may be returned
// only once. If two requests try to return a loan concurrently, one of
// them wins and the other one observes cerr.ErrAlreadyReturned.
func (loans *UseCase) Return(
	ctx context.Context, actor *model.User, loanID uuid.UUID,
) (loan *model.Loan, err error) {
	if actor == nil {
		return nil, cerr.Authentication(errors.New("no user is given"))
	}
	now := loans.now()
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := loans.loansrp.Tx(tx)
			loan, err = q.Get(ctx, loanID)
			if err != nil {
				return err
			}
			if !loan.IsActive() {
				return cerr.Conflict(cerr.ErrAlreadyReturned)
			}
			if !actor.CanActFor(loan.UserID) {
				return cerr.Authorization(cerr.ErrNotAuthorized)
			}
			if err := loan.Return(now); err != nil {
				return cerr.Conflict(cerr.ErrAlreadyReturned)
			}
			if err := model.ValidateLoan(loan, now); err != nil {
				return fmt.Errorf("validating returned loan: %w", err)
			}
			ok, err := q.MarkReturned(ctx, loanID, now)
			if err != nil {
				return fmt.Errorf("marking loan as returned: %w", err)
			}
			if !ok {
				log.Info(
					ctx, "concurrent return is detected",
					slog.String("loan", loanID.String()),
				)
				return cerr.Conflict(cerr.ErrAlreadyReturned)
			}
			return nil
		})
	})
	if errors.Is(err, cerr.ErrConcurrentUpdate) {
		log.Info(
			ctx, "concurrent return is detected",
			slog.String("loan", loanID.String()),
		)
		err = cerr.Conflict(cerr.ErrAlreadyReturned)
	}
	if err != nil {
		return nil, err
	}
	if loan.Book != nil {
		loan.Book.IsAvailable = true
		loan.Book.CurrentLoan = nil
	}
	log.Info(
		ctx, "book is returned",
		log.Stringer("loan", loan.ID),
		slog.String("book", loan.BookID.String()),
		log.Valuer("actor", actor),
	)
	return loan, nil
}

// ListActiveForUser use case returns the active loans of user.
func (loans *UseCase) ListActiveForUser(
	ctx context.Context, user *model.User,
) (ll []model.Loan, err error) {
	if user == nil {
		return nil, cerr.Authentication(errors.New("no user is given"))
	}
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		ll, err = loans.loansrp.Conn(c).ListActiveByUser(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ll, nil
}

// Get use case returns the loanID loan if actor is its borrower or
// a staff member.
func (loans *UseCase) Get(
	ctx context.Context, actor *model.User, loanID uuid.UUID,
) (loan *model.Loan, err error) {
	if actor == nil {
		return nil, cerr.Authentication(errors.New("no user is given"))
	}
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		loan, err = loans.loansrp.Conn(c).Get(ctx, loanID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(loan.UserID) {
		return nil, cerr.Authorization(cerr.ErrNotAuthorized)
	}
	return loan, nil
}

// List use case returns all loans for staff members and the actor own
// loans for other users, the most recent loans first.
func (loans *UseCase) List(
	ctx context.Context, actor *model.User,
) (ll []model.Loan, err error) {
	if actor == nil {
		return nil, cerr.Authentication(errors.New("no user is given"))
	}
	var owner *uuid.UUID
	if !actor.IsStaff {
		owner = &actor.ID
	}
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		ll, err = loans.loansrp.Conn(c).List(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ll, nil
}
