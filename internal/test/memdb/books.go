// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

type booksRepo struct{}

type bookQ struct {
	queryer
}

func (booksRepo) Conn(c repo.Conn) repo.BooksConnQueryer {
	return bookQ{unwrapConn(c)}
}

func (booksRepo) Tx(tx repo.Tx) repo.BooksTxQueryer {
	return bookQ{unwrapTx(tx)}
}

// derivedBook fills the availability fields of b. It must be called
// with the lock.
func (q queryer) derivedBook(b model.Book) model.Book {
	b.IsAvailable = true
	b.CurrentLoan = nil
	for _, l := range q.db.loans {
		if l.BookID == b.ID && l.IsActive() {
			l := l
			b.IsAvailable = false
			b.CurrentLoan = &l
			break
		}
	}
	return b
}

func (q bookQ) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	q.db.mu.Lock()
	b, ok := q.db.books[id]
	if ok {
		b = q.derivedBook(b)
	}
	q.db.mu.Unlock()
	if !ok {
		return nil, notFound("book", id)
	}
	if q.tx != nil && q.db.OnBookRead != nil {
		q.db.OnBookRead()
	}
	return &b, nil
}

func (q bookQ) List(
	ctx context.Context, f model.BookFilter,
) ([]model.Book, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	search := strings.ToLower(f.Search)
	bb := make([]model.Book, 0, len(q.db.books))
	for _, b := range q.db.books {
		b = q.derivedBook(b)
		if f.AvailableOnly && !b.IsAvailable {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author), search) {
			continue
		}
		bb = append(bb, b)
	}
	col, desc := f.Ordering.Column()
	less := func(a, b *model.Book) bool {
		switch col {
		case "author":
			return a.Author < b.Author
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Title < b.Title
		}
	}
	sort.Slice(bb, func(i, j int) bool {
		a, b := &bb[i], &bb[j]
		if desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return bb[i].ID.String() < bb[j].ID.String()
	})
	return bb, nil
}

// isbnOwner returns the book having isbn, if any, except the exclude
// book. It must be called with the lock.
func (q queryer) isbnOwner(isbn string, exclude uuid.UUID) bool {
	for _, b := range q.db.books {
		if b.ISBN == isbn && b.ID != exclude {
			return true
		}
	}
	return false
}

func (q bookQ) ISBNTaken(
	ctx context.Context, isbn string, exclude uuid.UUID,
) (bool, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	return q.isbnOwner(isbn, exclude), nil
}

func isbnDuplicated() error {
	return cerr.Validation(model.FieldError(
		"isbn", "book with this isbn already exists.",
	))
}

func (q bookQ) Create(
	ctx context.Context, b *model.Book,
) (*model.Book, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	if q.isbnOwner(b.ISBN, uuid.Nil) {
		return nil, isbnDuplicated()
	}
	now := q.db.clock()
	nb := model.Book{
		ID:          uuid.New(),
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Description: b.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	q.db.books[nb.ID] = nb
	q.onUndo(func() { delete(q.db.books, nb.ID) })
	nb.IsAvailable = true
	return &nb, nil
}

func (q bookQ) Update(
	ctx context.Context, b *model.Book,
) (*model.Book, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	old, ok := q.db.books[b.ID]
	if !ok {
		return nil, notFound("book", b.ID)
	}
	if q.isbnOwner(b.ISBN, b.ID) {
		return nil, isbnDuplicated()
	}
	nb := old
	nb.Title = b.Title
	nb.Author = b.Author
	nb.ISBN = b.ISBN
	nb.Description = b.Description
	nb.UpdatedAt = q.db.clock()
	q.db.books[nb.ID] = nb
	q.onUndo(func() { q.db.books[old.ID] = old })
	nb = q.derivedBook(nb)
	return &nb, nil
}

// bookReferenced must be called with the lock.
func (q queryer) bookReferenced(id uuid.UUID) bool {
	for _, l := range q.db.loans {
		if l.BookID == id {
			return true
		}
	}
	return false
}

func (q bookQ) Delete(ctx context.Context, id uuid.UUID) error {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	old, ok := q.db.books[id]
	if !ok {
		return notFound("book", id)
	}
	if q.bookReferenced(id) {
		return cerr.Conflict(cerr.ErrBookReferenced)
	}
	delete(q.db.books, id)
	q.onUndo(func() { q.db.books[id] = old })
	return nil
}

func (q bookQ) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	return q.bookReferenced(id), nil
}
