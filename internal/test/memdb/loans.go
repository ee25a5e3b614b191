// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

type loansRepo struct{}

type loanQ struct {
	queryer
}

func (loansRepo) Conn(c repo.Conn) repo.LoansConnQueryer {
	return loanQ{unwrapConn(c)}
}

func (loansRepo) Tx(tx repo.Tx) repo.LoansTxQueryer {
	return loanQ{unwrapTx(tx)}
}

// expand fills the Book and User fields of l. It must be called with
// the lock.
func (q queryer) expand(l model.Loan) model.Loan {
	if b, ok := q.db.books[l.BookID]; ok {
		b = q.derivedBook(b)
		b.CurrentLoan = nil
		l.Book = &b
	}
	if u, ok := q.db.users[l.UserID]; ok {
		l.User = &u
	}
	return l
}

// insertLoan enforces the foreign keys, the due date check, and the
// active loan uniqueness before storing l. It must be called with
// the lock.
func (q queryer) insertLoan(l model.Loan) (model.Loan, error) {
	if _, ok := q.db.books[l.BookID]; !ok {
		return l, cerr.Conflict(fmt.Errorf("book %s is missing", l.BookID))
	}
	if _, ok := q.db.users[l.UserID]; !ok {
		return l, cerr.Conflict(fmt.Errorf("user %s is missing", l.UserID))
	}
	if !l.DueDate.After(l.BorrowedAt) {
		return l, errors.New("due_date must be after borrowed_at")
	}
	if l.IsActive() {
		for _, ol := range q.db.loans {
			if ol.BookID == l.BookID && ol.IsActive() {
				return l, cerr.Conflict(fmt.Errorf(
					"%w: active loan uniqueness is violated",
					cerr.ErrBookUnavailable,
				))
			}
		}
	}
	l.ID = uuid.New()
	l.Book, l.User = nil, nil
	q.db.loans[l.ID] = l
	id := l.ID
	q.onUndo(func() { delete(q.db.loans, id) })
	return l, nil
}

func (q loanQ) Create(
	ctx context.Context, l *model.Loan,
) (*model.Loan, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	nl, err := q.insertLoan(*l)
	if err != nil {
		return nil, err
	}
	return &nl, nil
}

func (q loanQ) MarkReturned(
	ctx context.Context, id uuid.UUID, at time.Time,
) (bool, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	l, ok := q.db.loans[id]
	if !ok || !l.IsActive() {
		return false, nil
	}
	old := l
	t := at
	l.ReturnedAt = &t
	q.db.loans[id] = l
	q.onUndo(func() { q.db.loans[id] = old })
	return true, nil
}

func (q loanQ) Get(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	l, ok := q.db.loans[id]
	if !ok {
		return nil, notFound("loan", id)
	}
	l = q.expand(l)
	return &l, nil
}

// filter returns the expanded loans which match keep, the most recent
// loans first. It must be called with the lock.
func (q queryer) filter(keep func(l *model.Loan) bool) []model.Loan {
	ll := make([]model.Loan, 0)
	for _, l := range q.db.loans {
		if keep(&l) {
			ll = append(ll, q.expand(l))
		}
	}
	sort.Slice(ll, func(i, j int) bool {
		return ll[i].BorrowedAt.After(ll[j].BorrowedAt)
	})
	return ll
}

func (q loanQ) List(
	ctx context.Context, userID *uuid.UUID,
) ([]model.Loan, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	return q.filter(func(l *model.Loan) bool {
		return userID == nil || l.UserID == *userID
	}), nil
}

func (q loanQ) ListActiveByUser(
	ctx context.Context, userID uuid.UUID,
) ([]model.Loan, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	return q.filter(func(l *model.Loan) bool {
		return l.UserID == userID && l.IsActive()
	}), nil
}

func (q loanQ) CountActiveByUser(
	ctx context.Context, userID uuid.UUID,
) (int, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	n := 0
	for _, l := range q.db.loans {
		if l.UserID == userID && l.IsActive() {
			n++
		}
	}
	return n, nil
}

func (q loanQ) HasOverdue(
	ctx context.Context, userID uuid.UUID, now time.Time,
) (bool, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	for _, l := range q.db.loans {
		if l.UserID == userID && l.IsOverdue(now) {
			return true, nil
		}
	}
	return false, nil
}
