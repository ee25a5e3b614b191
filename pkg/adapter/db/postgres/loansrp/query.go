// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gLoan struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid"`
	BookID     uuid.UUID `gorm:"type:uuid"`
	UserID     uuid.UUID `gorm:"type:uuid"`
	BorrowedAt time.Time
	DueDate    time.Time
	ReturnedAt *time.Time
}

func (gl *gLoan) TableName() string {
	return "loans"
}

// gLoanRow is a loans row which is joined with its book and user.
type gLoanRow struct {
	gLoan `gorm:"embedded"`

	BookTitle       string
	BookAuthor      string
	BookISBN        string `gorm:"column:book_isbn"`
	BookDescription string
	BookCreatedAt   time.Time
	BookUpdatedAt   time.Time
	BookIsAvailable bool

	UserUsername string
	UserIsStaff  bool
}

func (r *gLoanRow) Model() model.Loan {
	return model.Loan{
		ID:         r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		BorrowedAt: r.BorrowedAt,
		DueDate:    r.DueDate,
		ReturnedAt: r.ReturnedAt,
		Book: &model.Book{
			ID:          r.BookID,
			Title:       r.BookTitle,
			Author:      r.BookAuthor,
			ISBN:        r.BookISBN,
			Description: r.BookDescription,
			CreatedAt:   r.BookCreatedAt,
			UpdatedAt:   r.BookUpdatedAt,
			IsAvailable: r.BookIsAvailable,
		},
		User: &model.User{
			ID:       r.UserID,
			Username: r.UserUsername,
			IsStaff:  r.UserIsStaff,
		},
	}
}

func selectLoans(gdb *gorm.DB) *gorm.DB {
	return gdb.Table("loans AS l").Select(`l.id, l.book_id, l.user_id,
	l.borrowed_at, l.due_date, l.returned_at,
	b.title AS book_title, b.author AS book_author, b.isbn AS book_isbn,
	b.description AS book_description, b.created_at AS book_created_at,
	b.updated_at AS book_updated_at,
	NOT EXISTS (
		SELECT 1 FROM loans a WHERE a.book_id = l.book_id
		AND a.returned_at IS NULL
	) AS book_is_available,
	u.username AS user_username, u.is_staff AS user_is_staff`).Joins(
		"JOIN books b ON b.id = l.book_id",
	).Joins(
		"JOIN users u ON u.id = l.user_id",
	)
}

func scanLoans(gdb *gorm.DB) ([]model.Loan, error) {
	var rows []gLoanRow
	if err := gdb.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ll := make([]model.Loan, len(rows))
	for i := range rows {
		ll[i] = rows[i].Model()
	}
	return ll, nil
}

func Get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.Loan, error) {
	ll, err := scanLoans(selectLoans(q.GORM(ctx)).Where("l.id = ?", id))
	if err != nil {
		return nil, err
	}
	if len(ll) == 0 {
		return nil, postgres.NotFound("loan", id)
	}
	return &ll[0], nil
}

func List[Q postgres.Queryer](
	ctx context.Context, q Q, userID *uuid.UUID,
) ([]model.Loan, error) {
	gdb := selectLoans(q.GORM(ctx))
	if userID != nil {
		gdb = gdb.Where("l.user_id = ?", *userID)
	}
	return scanLoans(gdb.Order("l.borrowed_at DESC, l.id"))
}

func ListActiveByUser[Q postgres.Queryer](
	ctx context.Context, q Q, userID uuid.UUID,
) ([]model.Loan, error) {
	return scanLoans(selectLoans(q.GORM(ctx)).Where(
		"l.user_id = ? AND l.returned_at IS NULL", userID,
	).Order("l.borrowed_at DESC, l.id"))
}

func CountActiveByUser[Q postgres.Queryer](
	ctx context.Context, q Q, userID uuid.UUID,
) (int, error) {
	var n int64
	err := q.GORM(ctx).Model(&gLoan{}).Where(
		"user_id = ? AND returned_at IS NULL", userID,
	).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	return int(n), nil
}

func HasOverdue[Q postgres.Queryer](
	ctx context.Context, q Q, userID uuid.UUID, now time.Time,
) (bool, error) {
	var ok bool
	err := q.GORM(ctx).Raw(`SELECT EXISTS (
	SELECT 1 FROM loans
	WHERE user_id = ? AND returned_at IS NULL AND due_date < ?
)`, userID, now).Scan(&ok).Error
	if err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return ok, nil
}

// Create inserts l. The loans_active_book_uidx partial unique index
// rejects a second active loan of a book and the violation is
// translated to cerr.ErrBookUnavailable.
func Create(
	ctx context.Context, tx *postgres.Tx, l *model.Loan,
) (*model.Loan, error) {
	gl := &gLoan{
		ID:         uuid.New(),
		BookID:     l.BookID,
		UserID:     l.UserID,
		BorrowedAt: l.BorrowedAt,
		DueDate:    l.DueDate,
		ReturnedAt: l.ReturnedAt,
	}
	if err := tx.GORM(ctx).Create(gl).Error; err != nil {
		return nil, fmt.Errorf("insert: %w", postgres.Translate(ctx, err))
	}
	return Get(ctx, tx, gl.ID)
}

// MarkReturned sets returned_at only if it is still NULL, so a loan
// which is returned concurrently is never returned twice.
func MarkReturned(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID, at time.Time,
) (bool, error) {
	var gl []gLoan
	err := tx.GORM(ctx).Model(&gl).Clauses(clause.Returning{}).Where(
		"id = ? AND returned_at IS NULL", id,
	).Update("returned_at", at).Error
	if err != nil {
		return false, fmt.Errorf("update: %w", postgres.Translate(ctx, err))
	}
	return len(gl) == 1, nil
}
