// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"gorm.io/gorm"
)

var dialect = goqu.Dialect("postgres")

type gBook struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	Title       string
	Author      string
	ISBN        string `gorm:"column:isbn"`
	Description string
}

func (gb *gBook) TableName() string {
	return "books"
}

// gBookRow is a books row joined with its active loan, if any.
// The active loan uniqueness index guarantees that the left join
// produces at most one row per book.
type gBookRow struct {
	ID          uuid.UUID
	Title       string
	Author      string
	ISBN        string `gorm:"column:isbn"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	LoanID         *uuid.UUID
	LoanUserID     *uuid.UUID
	LoanBorrowedAt *time.Time
	LoanDueDate    *time.Time
}

func (r *gBookRow) Model() model.Book {
	b := model.Book{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		IsAvailable: r.LoanID == nil,
	}
	if r.LoanID != nil {
		b.CurrentLoan = &model.Loan{
			ID:         *r.LoanID,
			BookID:     r.ID,
			UserID:     *r.LoanUserID,
			BorrowedAt: *r.LoanBorrowedAt,
			DueDate:    *r.LoanDueDate,
		}
	}
	return b
}

func selectBooks() *goqu.SelectDataset {
	return dialect.From(goqu.T("books").As("b")).LeftJoin(
		goqu.T("loans").As("l"),
		goqu.On(
			goqu.I("l.book_id").Eq(goqu.I("b.id")),
			goqu.I("l.returned_at").IsNull(),
		),
	).Select(
		"b.id", "b.title", "b.author", "b.isbn", "b.description",
		"b.created_at", "b.updated_at",
		goqu.I("l.id").As("loan_id"),
		goqu.I("l.user_id").As("loan_user_id"),
		goqu.I("l.borrowed_at").As("loan_borrowed_at"),
		goqu.I("l.due_date").As("loan_due_date"),
	).Prepared(true)
}

func scanBooks[Q postgres.Queryer](
	ctx context.Context, q Q, ds *goqu.SelectDataset,
) ([]model.Book, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var rows []gBookRow
	if err := q.GORM(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	bb := make([]model.Book, len(rows))
	for i := range rows {
		bb[i] = rows[i].Model()
	}
	return bb, nil
}

func Get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.Book, error) {
	bb, err := scanBooks(ctx, q, selectBooks().Where(
		goqu.I("b.id").Eq(id.String()),
	))
	if err != nil {
		return nil, err
	}
	if len(bb) == 0 {
		return nil, postgres.NotFound("book", id)
	}
	return &bb[0], nil
}

// availableOnly matches the books rows which have no active loan.
func availableOnly() goqu.Expression {
	return goqu.I("l.id").IsNull()
}

// likePattern escapes the LIKE wildcards of s and wraps it for
// a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func List[Q postgres.Queryer](
	ctx context.Context, q Q, f model.BookFilter,
) ([]model.Book, error) {
	ds := selectBooks()
	if f.AvailableOnly {
		ds = ds.Where(availableOnly())
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		ds = ds.Where(goqu.Or(
			goqu.I("b.title").ILike(p),
			goqu.I("b.author").ILike(p),
		))
	}
	col, desc := f.Ordering.Column()
	order := goqu.I("b." + col).Asc()
	if desc {
		order = goqu.I("b." + col).Desc()
	}
	ds = ds.Order(order, goqu.I("b.id").Asc())
	return scanBooks(ctx, q, ds)
}

func Create(
	ctx context.Context, tx *postgres.Tx, b *model.Book,
) (*model.Book, error) {
	gb := &gBook{
		ID:          uuid.New(),
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Description: b.Description,
	}
	if err := tx.GORM(ctx).Create(gb).Error; err != nil {
		return nil, fmt.Errorf("insert: %w", postgres.Translate(ctx, err))
	}
	return Get(ctx, tx, gb.ID)
}

func Update(
	ctx context.Context, tx *postgres.Tx, b *model.Book,
) (*model.Book, error) {
	res := tx.GORM(ctx).Model(&gBook{}).Where("id = ?", b.ID).Updates(
		map[string]any{
			"title":       b.Title,
			"author":      b.Author,
			"isbn":        b.ISBN,
			"description": b.Description,
			"updated_at":  gorm.Expr("now()"),
		},
	)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("update: %w", postgres.Translate(ctx, err))
	}
	if res.RowsAffected == 0 {
		return nil, postgres.NotFound("book", b.ID)
	}
	return Get(ctx, tx, b.ID)
}

func Delete(ctx context.Context, tx *postgres.Tx, id uuid.UUID) error {
	res := tx.GORM(ctx).Where("id = ?", id).Delete(&gBook{})
	if err := res.Error; err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return postgres.Conceal(
				ctx, err, cerr.Conflict(cerr.ErrBookReferenced),
			)
		}
		return fmt.Errorf("delete: %w", err)
	}
	if res.RowsAffected == 0 {
		return postgres.NotFound("book", id)
	}
	return nil
}

func IsReferenced(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (bool, error) {
	var ok bool
	err := tx.GORM(ctx).Raw(
		"SELECT EXISTS (SELECT 1 FROM loans WHERE book_id = ?)", id,
	).Scan(&ok).Error
	if err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return ok, nil
}

func ISBNTaken(
	ctx context.Context, tx *postgres.Tx, isbn string, exclude uuid.UUID,
) (bool, error) {
	var n int64
	err := tx.GORM(ctx).Model(&gBook{}).Where(
		"isbn = ? AND id <> ?", isbn, exclude,
	).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return n > 0, nil
}
