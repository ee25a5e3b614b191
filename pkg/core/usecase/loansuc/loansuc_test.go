// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansuc_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/internal/test/memdb"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/usecase/loansuc"
	"github.com/stretchr/testify/suite"
)

type LoansUseCaseTestSuite struct {
	suite.Suite

	ctx context.Context
	now time.Time
	db  *memdb.DB
	uc  *loansuc.UseCase

	alice, bob, staff model.User
	dune, emma        model.Book
}

func TestLoansUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(LoansUseCaseTestSuite))
}

func (ts *LoansUseCaseTestSuite) SetupTest() {
	ts.ctx = context.Background()
	ts.now = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	ts.db = memdb.New()
	ts.db.SetClock(ts.clock)
	ts.alice = ts.db.AddUser("alice", false)
	ts.bob = ts.db.AddUser("bob", false)
	ts.staff = ts.db.AddUser("librarian", true)
	ts.dune = ts.db.AddBook("Dune", "Frank Herbert", "9780441013593")
	ts.emma = ts.db.AddBook("Emma", "Jane Austen", "0141439580")
	ts.uc = ts.newUseCase()
}

func (ts *LoansUseCaseTestSuite) clock() time.Time {
	return ts.now
}

func (ts *LoansUseCaseTestSuite) newUseCase(
	opts ...loansuc.Option,
) *loansuc.UseCase {
	opts = append(opts, loansuc.WithClock(ts.clock))
	uc, err := loansuc.New(ts.db, ts.db.Loans(), ts.db.Books(), opts...)
	ts.Require().NoError(err)
	return uc
}

func (ts *LoansUseCaseTestSuite) days(n int) time.Time {
	return ts.now.Add(time.Duration(n) * 24 * time.Hour)
}

func (ts *LoansUseCaseTestSuite) addBooks(n int) []model.Book {
	bb := make([]model.Book, 0, n)
	for i := 0; i < n; i++ {
		isbn := fmt.Sprintf("%013d", i+1)
		bb = append(bb, ts.db.AddBook("Book", "Author", isbn))
	}
	return bb
}

func (ts *LoansUseCaseTestSuite) assertFailure(
	err error, kind error, status int,
) {
	ts.Require().Error(err)
	ts.ErrorIs(err, kind)
	ts.Equal(status, cerr.StatusCode(err))
}

func (ts *LoansUseCaseTestSuite) TestBorrowAvailableBook() {
	loan, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	ts.NotEqual(uuid.Nil, loan.ID)
	ts.Equal(ts.dune.ID, loan.BookID)
	ts.Equal(ts.alice.ID, loan.UserID)
	ts.True(loan.BorrowedAt.Equal(ts.now))
	ts.True(loan.DueDate.Equal(ts.days(14)))
	ts.True(loan.IsActive())
	ts.Require().NotNil(loan.Book)
	ts.False(loan.Book.IsAvailable)
	ts.Equal(1, ts.db.ActiveLoansOf(ts.dune.ID))

	active, err := ts.uc.ListActiveForUser(ts.ctx, &ts.alice)
	ts.Require().NoError(err)
	ts.Require().Len(active, 1)
	ts.Equal(loan.ID, active[0].ID)
}

func (ts *LoansUseCaseTestSuite) TestBorrowUnavailableBook() {
	_, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	_, err = ts.uc.Borrow(ts.ctx, &ts.bob, ts.dune.ID, ts.days(7))
	ts.assertFailure(err, cerr.ErrBookUnavailable, http.StatusConflict)
	ts.Equal(1, ts.db.ActiveLoansOf(ts.dune.ID))
	ts.Equal(1, ts.db.LoansCount())
}

func (ts *LoansUseCaseTestSuite) TestBorrowMissingBook() {
	_, err := ts.uc.Borrow(ts.ctx, &ts.alice, uuid.New(), ts.days(14))
	ts.assertFailure(err, cerr.ErrNotFound, http.StatusNotFound)
	ts.Equal(0, ts.db.LoansCount())
}

func (ts *LoansUseCaseTestSuite) TestBorrowCommitConflict() {
	ts.db.OnCommit = func() error {
		return cerr.Conflict(cerr.ErrConcurrentUpdate)
	}
	_, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.assertFailure(err, cerr.ErrBookUnavailable, http.StatusConflict)
	ts.NotErrorIs(err, cerr.ErrConcurrentUpdate)
	ts.Equal(0, ts.db.LoansCount(), "failed commit must roll back")
}

func (ts *LoansUseCaseTestSuite) TestReturnCommitConflict() {
	loan, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	ts.db.OnCommit = func() error {
		return cerr.Conflict(cerr.ErrConcurrentUpdate)
	}
	_, err = ts.uc.Return(ts.ctx, &ts.alice, loan.ID)
	ts.assertFailure(err, cerr.ErrAlreadyReturned, http.StatusConflict)
	stored, ok := ts.db.StoredLoan(loan.ID)
	ts.Require().True(ok)
	ts.True(stored.IsActive(), "failed commit must roll back")
}

func (ts *LoansUseCaseTestSuite) TestOverdueBlocksBorrowing() {
	_, err := ts.db.AddLoan(model.Loan{
		BookID:     ts.emma.ID,
		UserID:     ts.alice.ID,
		BorrowedAt: ts.days(-20),
		DueDate:    ts.now.Add(-time.Hour),
	})
	ts.Require().NoError(err)
	_, err = ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.assertFailure(err, cerr.ErrOverdueBlock, http.StatusBadRequest)

	// overdue is checked before the due date
	_, err = ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.now)
	ts.ErrorIs(err, cerr.ErrOverdueBlock)

	// other users are not affected
	_, err = ts.uc.Borrow(ts.ctx, &ts.bob, ts.dune.ID, ts.days(14))
	ts.NoError(err)
}

func (ts *LoansUseCaseTestSuite) TestLoanDueRightNowIsNotOverdue() {
	_, err := ts.db.AddLoan(model.Loan{
		BookID:     ts.emma.ID,
		UserID:     ts.alice.ID,
		BorrowedAt: ts.days(-14),
		DueDate:    ts.now,
	})
	ts.Require().NoError(err)
	_, err = ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.NoError(err)
}

func (ts *LoansUseCaseTestSuite) TestReturnedOverdueLoanDoesNotBlock() {
	returned := ts.days(-1)
	_, err := ts.db.AddLoan(model.Loan{
		BookID:     ts.emma.ID,
		UserID:     ts.alice.ID,
		BorrowedAt: ts.days(-30),
		DueDate:    ts.days(-10),
		ReturnedAt: &returned,
	})
	ts.Require().NoError(err)
	_, err = ts.uc.Borrow(ts.ctx, &ts.alice, ts.emma.ID, ts.days(14))
	ts.NoError(err)
}

func (ts *LoansUseCaseTestSuite) TestLoanLimit() {
	bb := ts.addBooks(loansuc.DefaultMaxActiveLoans + 1)
	for i := 0; i < loansuc.DefaultMaxActiveLoans; i++ {
		_, err := ts.uc.Borrow(ts.ctx, &ts.alice, bb[i].ID, ts.days(7))
		ts.Require().NoError(err, "borrowing book #%d", i)
	}
	last := bb[loansuc.DefaultMaxActiveLoans].ID
	_, err := ts.uc.Borrow(ts.ctx, &ts.alice, last, ts.days(7))
	ts.assertFailure(err, cerr.ErrLoanLimitExceeded, http.StatusBadRequest)
	ts.Contains(err.Error(), "(5)")

	// limit is checked before the due date and the book availability
	_, err = ts.uc.Borrow(ts.ctx, &ts.alice, bb[0].ID, ts.now)
	ts.ErrorIs(err, cerr.ErrLoanLimitExceeded)
}

func (ts *LoansUseCaseTestSuite) TestConfiguredLoanLimit() {
	uc := ts.newUseCase(loansuc.WithMaxActiveLoans(1))
	ts.Equal(1, uc.MaxActiveLoans())
	_, err := uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(7))
	ts.Require().NoError(err)
	_, err = uc.Borrow(ts.ctx, &ts.alice, ts.emma.ID, ts.days(7))
	ts.ErrorIs(err, cerr.ErrLoanLimitExceeded)
}

func (ts *LoansUseCaseTestSuite) TestDueDateBoundary() {
	_, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.now)
	ts.assertFailure(err, cerr.ErrInvalidDueDate, http.StatusBadRequest)
	_, err = ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(-1))
	ts.ErrorIs(err, cerr.ErrInvalidDueDate)
	ts.Equal(0, ts.db.LoansCount())

	loan, err := ts.uc.Borrow(
		ts.ctx, &ts.alice, ts.dune.ID, ts.now.Add(time.Second),
	)
	ts.Require().NoError(err)
	ts.True(loan.DueDate.After(loan.BorrowedAt))
}

func (ts *LoansUseCaseTestSuite) TestReturnByBorrower() {
	loan, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	ts.now = ts.days(3)
	returned, err := ts.uc.Return(ts.ctx, &ts.alice, loan.ID)
	ts.Require().NoError(err)
	ts.Require().NotNil(returned.ReturnedAt)
	ts.True(returned.ReturnedAt.Equal(ts.now))
	ts.False(returned.IsActive())
	ts.Require().NotNil(returned.Book)
	ts.True(returned.Book.IsAvailable)
	ts.Equal(0, ts.db.ActiveLoansOf(ts.dune.ID))

	stored, ok := ts.db.StoredLoan(loan.ID)
	ts.Require().True(ok)
	ts.True(stored.BorrowedAt.Equal(loan.BorrowedAt))
	ts.True(stored.DueDate.Equal(loan.DueDate))
}

func (ts *LoansUseCaseTestSuite) TestReturnTwice() {
	loan, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	_, err = ts.uc.Return(ts.ctx, &ts.alice, loan.ID)
	ts.Require().NoError(err)
	first, _ := ts.db.StoredLoan(loan.ID)

	ts.now = ts.days(1)
	_, err = ts.uc.Return(ts.ctx, &ts.alice, loan.ID)
	ts.assertFailure(err, cerr.ErrAlreadyReturned, http.StatusConflict)
	second, _ := ts.db.StoredLoan(loan.ID)
	ts.True(first.ReturnedAt.Equal(*second.ReturnedAt))
}

func (ts *LoansUseCaseTestSuite) TestReturnByOthers() {
	loan, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	_, err = ts.uc.Return(ts.ctx, &ts.bob, loan.ID)
	ts.assertFailure(err, cerr.ErrNotAuthorized, http.StatusForbidden)
	ts.Equal(1, ts.db.ActiveLoansOf(ts.dune.ID))

	_, err = ts.uc.Return(ts.ctx, &ts.staff, loan.ID)
	ts.NoError(err)
}

func (ts *LoansUseCaseTestSuite) TestReturnMissingLoan() {
	_, err := ts.uc.Return(ts.ctx, &ts.alice, uuid.New())
	ts.assertFailure(err, cerr.ErrNotFound, http.StatusNotFound)
}

func (ts *LoansUseCaseTestSuite) TestRoundTrip() {
	loan, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	_, err = ts.uc.Return(ts.ctx, &ts.alice, loan.ID)
	ts.Require().NoError(err)
	again, err := ts.uc.Borrow(ts.ctx, &ts.bob, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	ts.NotEqual(loan.ID, again.ID)
	ts.Equal(1, ts.db.ActiveLoansOf(ts.dune.ID))
	ts.Equal(2, ts.db.LoansCount())
}

func (ts *LoansUseCaseTestSuite) TestConcurrentBorrowers() {
	const n = 10
	users := make([]model.User, n)
	for i := range users {
		users[i] = ts.db.AddUser(uuid.NewString(), false)
	}
	var barrier sync.WaitGroup
	barrier.Add(n)
	ts.db.OnBookRead = func() {
		barrier.Done()
		barrier.Wait()
	}
	defer func() {
		ts.db.OnBookRead = nil
	}()

	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ts.uc.Borrow(
				ts.ctx, &users[i], ts.dune.ID, ts.days(14),
			)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		ts.ErrorIs(err, cerr.ErrBookUnavailable)
		ts.Equal(http.StatusConflict, cerr.StatusCode(err))
	}
	ts.Equal(1, succeeded)
	ts.Equal(1, ts.db.ActiveLoansOf(ts.dune.ID))
	ts.Equal(1, ts.db.LoansCount())
}

func (ts *LoansUseCaseTestSuite) TestConcurrentReturns() {
	loan, err := ts.uc.Borrow(ts.ctx, &ts.alice, ts.dune.ID, ts.days(14))
	ts.Require().NoError(err)
	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ts.uc.Return(ts.ctx, &ts.alice, loan.ID)
		}(i)
	}
	wg.Wait()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		ts.ErrorIs(err, cerr.ErrAlreadyReturned)
	}
	ts.Equal(1, succeeded)
}

func (ts *LoansUseCaseTestSuite) TestGetAndList() {
	aliceLoan, err := ts.uc.Borrow(
		ts.ctx, &ts.alice, ts.dune.ID, ts.days(14),
	)
	ts.Require().NoError(err)
	ts.now = ts.now.Add(time.Minute)
	bobLoan, err := ts.uc.Borrow(ts.ctx, &ts.bob, ts.emma.ID, ts.days(14))
	ts.Require().NoError(err)

	got, err := ts.uc.Get(ts.ctx, &ts.alice, aliceLoan.ID)
	ts.Require().NoError(err)
	ts.Equal("alice", got.User.Username)
	_, err = ts.uc.Get(ts.ctx, &ts.alice, bobLoan.ID)
	ts.ErrorIs(err, cerr.ErrNotAuthorized)
	_, err = ts.uc.Get(ts.ctx, &ts.staff, bobLoan.ID)
	ts.NoError(err)

	own, err := ts.uc.List(ts.ctx, &ts.bob)
	ts.Require().NoError(err)
	ts.Require().Len(own, 1)
	ts.Equal(bobLoan.ID, own[0].ID)

	all, err := ts.uc.List(ts.ctx, &ts.staff)
	ts.Require().NoError(err)
	ts.Require().Len(all, 2)
	ts.Equal(bobLoan.ID, all[0].ID, "most recent loan comes first")
}

func (ts *LoansUseCaseTestSuite) TestAnonymousCalls() {
	_, err := ts.uc.Borrow(ts.ctx, nil, ts.dune.ID, ts.days(1))
	ts.Equal(http.StatusUnauthorized, cerr.StatusCode(err))
	_, err = ts.uc.Return(ts.ctx, nil, uuid.New())
	ts.Equal(http.StatusUnauthorized, cerr.StatusCode(err))
}

func TestOptions(t *testing.T) {
	db := memdb.New()
	_, err := loansuc.New(
		db, db.Loans(), db.Books(), loansuc.WithMaxActiveLoans(0),
	)
	if err == nil {
		t.Error("expected a non-positive limit to be rejected")
	}
	_, err = loansuc.New(
		db, db.Loans(), db.Books(),
		loansuc.WithMaxActiveLoans(2), loansuc.WithMaxActiveLoans(3),
	)
	if err == nil {
		t.Error("expected a repeated limit option to be rejected")
	}
	uc, err := loansuc.New(db, db.Loans(), db.Books())
	if err != nil {
		t.Fatalf("loansuc.New: %v", err)
	}
	if m := uc.MaxActiveLoans(); m != loansuc.DefaultMaxActiveLoans {
		t.Errorf("default max active loans is %d", m)
	}
}
