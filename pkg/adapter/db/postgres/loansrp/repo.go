// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansrp implements the repo.Loans interface for PostgreSQL.
package loansrp

import (
	"context"
	"time"

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

func (loans *Repo) Conn(c repo.Conn) repo.LoansConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) List(ctx context.Context, userID *uuid.UUID) ([]model.Loan, error) {
	return List(ctx, cq.Conn, userID)
}

func (cq connQueryer) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	return ListActiveByUser(ctx, cq.Conn, userID)
}

func (cq connQueryer) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return CountActiveByUser(ctx, cq.Conn, userID)
}

func (cq connQueryer) HasOverdue(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	return HasOverdue(ctx, cq.Conn, userID, now)
}

type txQueryer struct {
	*postgres.Tx
}

func (loans *Repo) Tx(tx repo.Tx) repo.LoansTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) List(ctx context.Context, userID *uuid.UUID) ([]model.Loan, error) {
	return List(ctx, tq.Tx, userID)
}

func (tq txQueryer) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	return ListActiveByUser(ctx, tq.Tx, userID)
}

func (tq txQueryer) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return CountActiveByUser(ctx, tq.Tx, userID)
}

func (tq txQueryer) HasOverdue(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	return HasOverdue(ctx, tq.Tx, userID, now)
}

func (tq txQueryer) Create(ctx context.Context, l *model.Loan) (*model.Loan, error) {
	return Create(ctx, tq.Tx, l)
}

func (tq txQueryer) MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return MarkReturned(ctx, tq.Tx, id, at)
}
