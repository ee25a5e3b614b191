// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memdb provides an in-memory reification of the repo.Pool
// and the books, loans, and users repositories, so the use cases may
// be tested without a database container.
//
// Each query locks the whole database, so queries are atomic, but a
// transaction does not isolate its queries from other transactions.
// Writes of a transaction are recorded in an undo log and are reverted
// if the transaction handler fails. The active loan uniqueness per book
// and the foreign keys are enforced like the PostgreSQL schema, so
// racing borrowers are arbitrated by the store as in production.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

// ErrRawSQL is returned by the Exec and Query methods because there
// is no SQL engine behind this store.
var ErrRawSQL = errors.New("raw SQL is not supported by memdb")

// DB is an in-memory database. Its zero value is not usable; call New.
type DB struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	books map[uuid.UUID]model.Book
	loans map[uuid.UUID]model.Loan
	clock func() time.Time

	// OnBookRead is called (if non-nil) after a book is read in a
	// transaction and before the lock is taken again. Tests may block
	// in it in order to let concurrent transactions pass their checks.
	OnBookRead func()

	// OnCommit is called (if non-nil) when a transaction handler
	// succeeds. A returned error rolls the transaction back, like the
	// failures which PostgreSQL may report while committing.
	OnCommit func() error
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		users: make(map[uuid.UUID]model.User),
		books: make(map[uuid.UUID]model.Book),
		loans: make(map[uuid.UUID]model.Loan),
		clock: time.Now,
	}
}

// SetClock replaces the function which assigns books timestamps.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clock = now
}

// Conn passes a new connection to the handler function.
func (db *DB) Conn(ctx context.Context, handler repo.ConnHandler) error {
	return handler(ctx, &Conn{db: db})
}

// Books returns the books repository of db.
func (db *DB) Books() repo.Books {
	return booksRepo{}
}

// Loans returns the loans repository of db.
func (db *DB) Loans() repo.Loans {
	return loansRepo{}
}

// Users returns the users repository of db.
func (db *DB) Users() repo.Users {
	return usersRepo{}
}

// Conn is an in-memory connection. Its queries are auto-committed.
type Conn struct {
	db *DB
}

func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (c *Conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (c *Conn) IsConn() {
}

// Tx begins a transaction and passes it to the handler. The handler
// writes are reverted if it returns an error or panics.
func (c *Conn) Tx(ctx context.Context, handler repo.TxHandler) (err error) {
	tx := &Tx{db: c.db}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			err = fmt.Errorf("panicked: %v", r)
			return
		}
		if err != nil {
			tx.rollback()
			err = fmt.Errorf("handler: %w", err)
			return
		}
		if c.db.OnCommit != nil {
			if err = c.db.OnCommit(); err != nil {
				tx.rollback()
				err = fmt.Errorf("commit: %w", err)
			}
		}
	}()
	return handler(ctx, tx)
}

// Tx is an in-memory transaction.
type Tx struct {
	db   *DB
	undo []func()
}

func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (tx *Tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (tx *Tx) IsTx() {
}

func (tx *Tx) rollback() {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// queryer is the common queryer of connections and transactions. The tx
// is nil for auto-committed queries.
type queryer struct {
	db *DB
	tx *Tx
}

func unwrapConn(c repo.Conn) queryer {
	cc := c.(*Conn)
	return queryer{db: cc.db}
}

func unwrapTx(t repo.Tx) queryer {
	tt := t.(*Tx)
	return queryer{db: tt.db, tx: tt}
}

// onUndo records f in the undo log. It must be called with the lock.
func (q queryer) onUndo(f func()) {
	if q.tx != nil {
		q.tx.undo = append(q.tx.undo, f)
	}
}

// AddUser inserts a user directly and returns it.
func (db *DB) AddUser(username string, isStaff bool) model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := model.User{ID: uuid.New(), Username: username, IsStaff: isStaff}
	db.users[u.ID] = u
	return u
}

// AddBook inserts a book directly and returns it.
func (db *DB) AddBook(title, author, isbn string) model.Book {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.clock()
	b := model.Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.books[b.ID] = b
	b.IsAvailable = true
	return b
}

// AddLoan inserts l directly, enforcing the same constraints as the
// loans repository, and returns it with its new ID.
func (db *DB) AddLoan(l model.Loan) (model.Loan, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return queryer{db: db}.insertLoan(l)
}

// ActiveLoansOf counts the active loans of bookID.
func (db *DB) ActiveLoansOf(bookID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, l := range db.loans {
		if l.BookID == bookID && l.IsActive() {
			n++
		}
	}
	return n
}

// LoansCount returns the number of all stored loans.
func (db *DB) LoansCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.loans)
}

// StoredLoan returns the id loan as stored, without expansions.
func (db *DB) StoredLoan(id uuid.UUID) (model.Loan, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.loans[id]
	return l, ok
}

func notFound(kind string, id uuid.UUID) error {
	return cerr.NotFound(fmt.Errorf("%s %s: %w", kind, id, cerr.ErrNotFound))
}
