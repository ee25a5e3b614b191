// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLoanDueDate(t *testing.T) {
	now := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	newLoan := func(due time.Time) *model.Loan {
		return &model.Loan{
			BookID:  uuid.New(),
			UserID:  uuid.New(),
			DueDate: due,
		}
	}

	l := newLoan(now)
	err := model.ValidateLoan(l, now)
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("due_date"))
	assert.Len(t, ve.Fields, 1)
	assert.True(t, l.BorrowedAt.Equal(now), "borrowed_at defaults to now")

	assert.Error(t, model.ValidateLoan(newLoan(now.Add(-time.Hour)), now))
	assert.NoError(t, model.ValidateLoan(newLoan(now.Add(time.Second)), now))
}

func TestValidateLoanKeepsBorrowedAt(t *testing.T) {
	now := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	borrowed := now.Add(-48 * time.Hour)
	l := &model.Loan{
		BookID:     uuid.New(),
		UserID:     uuid.New(),
		BorrowedAt: borrowed,
		DueDate:    now.Add(-24 * time.Hour),
	}
	require.NoError(t, model.ValidateLoan(l, now))
	assert.True(t, l.BorrowedAt.Equal(borrowed))

	// returning an overdue loan saves it again with the same dates
	require.NoError(t, l.Return(now))
	assert.NoError(t, model.ValidateLoan(l, now))
}

func TestLoanStates(t *testing.T) {
	now := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	l := &model.Loan{BorrowedAt: now.Add(-time.Hour), DueDate: now}
	assert.True(t, l.IsActive())
	assert.False(t, l.IsOverdue(now), "due right now is not overdue")
	assert.True(t, l.IsOverdue(now.Add(time.Nanosecond)))

	require.NoError(t, l.Return(now.Add(time.Minute)))
	assert.False(t, l.IsActive())
	assert.False(t, l.IsOverdue(now.Add(time.Hour)))
	require.NotNil(t, l.ReturnedAt)
	returnedAt := *l.ReturnedAt

	err := l.Return(now.Add(time.Hour))
	assert.ErrorIs(t, err, model.ErrLoanClosed)
	assert.True(t, l.ReturnedAt.Equal(returnedAt), "returned_at is kept")
}

func TestCanActFor(t *testing.T) {
	owner := uuid.New()
	assert.True(t, (&model.User{ID: owner}).CanActFor(owner))
	assert.False(t, (&model.User{ID: uuid.New()}).CanActFor(owner))
	staff := &model.User{ID: uuid.New(), IsStaff: true}
	assert.True(t, staff.CanActFor(owner))
}

func TestValidationErrorOrNil(t *testing.T) {
	var ve model.ValidationError
	assert.NoError(t, ve.OrNil())
	ve.Add("x", "bad")
	ve.Add("x", "worse")
	assert.EqualError(t, ve.OrNil(), "invalid x: bad worse")
}
