// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/model"
)

// Books is the books repository. It wraps a connection or transaction
// and returns a queryer which can execute the books related queries.
type Books interface {
	Conn(Conn) BooksConnQueryer
	Tx(Tx) BooksTxQueryer
}

// BooksConnQueryer lists the books queries which may be executed with
// a connection. Writing queries are only available in a transaction
// because they must be preceded by consistency checks.
type BooksConnQueryer interface {
	BooksQueryer
}

// BooksTxQueryer lists the books queries which need a transaction in
// addition to those which may be executed with a connection.
type BooksTxQueryer interface {
	BooksQueryer

	// Create inserts b, ignoring its ID and timestamps. The database
	// assigns them and the stored book is returned.
	// A duplicate isbn is reported as a *model.ValidationError.
	Create(ctx context.Context, b *model.Book) (*model.Book, error)

	// Update replaces the client controlled fields of the b.ID book,
	// refreshing its updated_at timestamp. A missing book is reported
	// with cerr.ErrNotFound and a duplicate isbn as a validation error.
	Update(ctx context.Context, b *model.Book) (*model.Book, error)

	// Delete removes the id book. A book which is referenced by some
	// loans may not be deleted and cerr.ErrBookReferenced is returned.
	Delete(ctx context.Context, id uuid.UUID) error

	// IsReferenced reports if any loan references the id book.
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)

	// ISBNTaken reports if another book (except the exclude one) has
	// the given isbn. Pass uuid.Nil when creating a new book.
	ISBNTaken(
		ctx context.Context, isbn string, exclude uuid.UUID,
	) (bool, error)
}

// BooksQueryer lists the books queries which may be executed either
// with a connection or a transaction.
// Books are returned with their derived IsAvailable and CurrentLoan
// fields, computed from the loans table in the same query.
type BooksQueryer interface {
	// Get finds the id book or returns cerr.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// List returns books matching the f filter in the f.Ordering order.
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
}
