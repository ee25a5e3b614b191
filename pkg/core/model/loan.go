// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLoanClosed indicates that a loan was already returned and so
// it may not be returned again. The use cases layer wraps it with the
// relevant classified error.
var ErrLoanClosed = errors.New("loan is already returned")

// Loan records that a user borrowed a book. A loan is created by the
// borrow operation and mutated exactly once by the return operation,
// moving from the active state to the returned (terminal) state.
// Loans are never deleted, so they form an append-only audit trail.
//
// Book and User fields are optional expansions which may be filled by
// repositories when the referenced rows are loaded too.
type Loan struct {
	ID         uuid.UUID
	BookID     uuid.UUID
	UserID     uuid.UUID
	BorrowedAt time.Time
	DueDate    time.Time
	ReturnedAt *time.Time // nil while the loan is active

	Book *Book // optional expansion of BookID
	User *User // optional expansion of UserID
}

// IsActive reports if the loan is not returned yet.
func (l *Loan) IsActive() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports if the loan is active and its due date is passed
// at the given now time.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.After(l.DueDate)
}

// Return closes an active loan at the now time. It returns
// ErrLoanClosed, leaving the loan unchanged, if it was returned before.
func (l *Loan) Return(now time.Time) error {
	if !l.IsActive() {
		return ErrLoanClosed
	}
	t := now
	l.ReturnedAt = &t
	return nil
}

// ValidateLoan checks the loan fields before each save. A zero
// BorrowedAt is replaced by the now time. The due date must be strictly
// after the borrowing time, otherwise a *ValidationError naming the
// due_date field is returned.
//
// Saving a returned loan runs this check too. Since returning does not
// touch BorrowedAt and DueDate, the previously accepted values pass.
func ValidateLoan(l *Loan, now time.Time) error {
	if l.BorrowedAt.IsZero() {
		l.BorrowedAt = now
	}
	var ve ValidationError
	if l.BookID == uuid.Nil {
		ve.Add("book", "This field is required.")
	}
	if l.UserID == uuid.Nil {
		ve.Add("user", "This field is required.")
	}
	if !l.DueDate.After(l.BorrowedAt) {
		ve.Add("due_date", "Due date must be after borrow date.")
	}
	if l.ReturnedAt != nil && l.ReturnedAt.Before(l.BorrowedAt) {
		ve.Add("returned_at", "Return date may not precede borrow date.")
	}
	return ve.OrNil()
}
