// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksuc contains the books UseCase which supports the
// catalog administration by the staff members and the catalog browsing
// by all authenticated users.
package booksuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

// UseCase represents the books use case.
type UseCase struct {
	pool    repo.Pool
	booksrp repo.Books
}

// New instantiates a books use case.
func New(p repo.Pool, b repo.Books) (*UseCase, error) {
	if p == nil || b == nil {
		return nil, errors.New("pool and books repo are required")
	}
	return &UseCase{pool: p, booksrp: b}, nil
}

// Create use case validates and stores the b book on behalf of the
// actor staff member. The isbn must not be used by other books.
func (books *UseCase) Create(
	ctx context.Context, actor *model.User, b *model.Book,
) (book *model.Book, err error) {
	if err = checkStaff(actor); err != nil {
		return nil, err
	}
	normalize(b)
	if err = validate(b); err != nil {
		return nil, err
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := books.booksrp.Tx(tx)
			if err := checkISBN(ctx, q, b.ISBN, uuid.Nil); err != nil {
				return err
			}
			book, err = q.Create(ctx, b)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "book is created",
		slog.String("book", book.ID.String()),
		slog.String("isbn", book.ISBN),
		log.Valuer("actor", actor),
	)
	return book, nil
}

// Update use case replaces the title, author, isbn, and description
// of the id book with the b fields. It is only permitted for the staff.
func (books *UseCase) Update(
	ctx context.Context, actor *model.User, id uuid.UUID, b *model.Book,
) (book *model.Book, err error) {
	if err = checkStaff(actor); err != nil {
		return nil, err
	}
	normalize(b)
	if err = validate(b); err != nil {
		return nil, err
	}
	b.ID = id
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := books.booksrp.Tx(tx)
			if _, err := q.Get(ctx, id); err != nil {
				return err
			}
			if err := checkISBN(ctx, q, b.ISBN, id); err != nil {
				return err
			}
			book, err = q.Update(ctx, b)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "book is updated",
		slog.String("book", id.String()),
		log.Valuer("actor", actor),
	)
	return book, nil
}

// Get use case returns the id book and its availability.
func (books *UseCase) Get(
	ctx context.Context, id uuid.UUID,
) (book *model.Book, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		book, err = books.booksrp.Conn(c).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// List use case returns books matching the f filter.
func (books *UseCase) List(
	ctx context.Context, f model.BookFilter,
) (bb []model.Book, err error) {
	if !f.Ordering.Valid() {
		return nil, cerr.Validation(model.FieldError(
			"ordering",
			fmt.Sprintf("%q is not a supported ordering.", f.Ordering),
		))
	}
	f.Search = strings.TrimSpace(f.Search)
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bb, err = books.booksrp.Conn(c).List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bb, nil
}

// Delete use case removes the id book. Books which are referenced by
// any loan (active or returned) are kept, since loans are the audit
// trail of the library, and cerr.ErrBookReferenced is returned.
func (books *UseCase) Delete(
	ctx context.Context, actor *model.User, id uuid.UUID,
) error {
	if err := checkStaff(actor); err != nil {
		return err
	}
	err := books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := books.booksrp.Tx(tx)
			if _, err := q.Get(ctx, id); err != nil {
				return err
			}
			referenced, err := q.IsReferenced(ctx, id)
			if err != nil {
				return fmt.Errorf("checking book references: %w", err)
			}
			if referenced {
				return cerr.Conflict(cerr.ErrBookReferenced)
			}
			return q.Delete(ctx, id)
		})
	})
	if err != nil {
		return err
	}
	log.Info(
		ctx, "book is deleted",
		slog.String("book", id.String()),
		log.Valuer("actor", actor),
	)
	return nil
}

func checkStaff(actor *model.User) error {
	switch {
	case actor == nil:
		return cerr.Authentication(errors.New("no user is given"))
	case !actor.IsStaff:
		return cerr.Authorization(cerr.ErrNotAuthorized)
	}
	return nil
}

func normalize(b *model.Book) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.ISBN = strings.TrimSpace(b.ISBN)
}

func validate(b *model.Book) error {
	err := model.ValidateBook(b)
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return cerr.Validation(ve)
	}
	return err
}

func checkISBN(
	ctx context.Context, q repo.BooksTxQueryer, isbn string, id uuid.UUID,
) error {
	taken, err := q.ISBNTaken(ctx, isbn, id)
	if err != nil {
		return fmt.Errorf("checking isbn uniqueness: %w", err)
	}
	if taken {
		return cerr.Validation(model.FieldError(
			"isbn", "book with this isbn already exists.",
		))
	}
	return nil
}
