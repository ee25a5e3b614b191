// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrp implements the repo.Books interface for PostgreSQL.
// Listing queries are built with goqu and executed through GORM, so
// the availability of books is computed by joining the active loans.
package booksrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (books *Repo) Conn(c repo.Conn) repo.BooksConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return List(ctx, cq.Conn, f)
}

type txQueryer struct {
	*postgres.Tx
}

func (books *Repo) Tx(tx repo.Tx) repo.BooksTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return List(ctx, tq.Tx, f)
}

func (tq txQueryer) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	return Create(ctx, tq.Tx, b)
}

func (tq txQueryer) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	return Update(ctx, tq.Tx, b)
}

func (tq txQueryer) Delete(ctx context.Context, id uuid.UUID) error {
	return Delete(ctx, tq.Tx, id)
}

func (tq txQueryer) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	return IsReferenced(ctx, tq.Tx, id)
}

func (tq txQueryer) ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error) {
	return ISBNTaken(ctx, tq.Tx, isbn, exclude)
}
