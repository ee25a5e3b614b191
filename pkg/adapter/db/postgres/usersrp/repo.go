// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersrp implements the repo.Users interface for PostgreSQL.
package usersrp

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

func (users *Repo) Conn(c repo.Conn) repo.UsersConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return GetByUsername(ctx, cq.Conn, username)
}

func (cq connQueryer) List(ctx context.Context) ([]model.User, error) {
	return List(ctx, cq.Conn)
}

type txQueryer struct {
	*postgres.Tx
}

func (users *Repo) Tx(tx repo.Tx) repo.UsersTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return GetByUsername(ctx, tq.Tx, username)
}

func (tq txQueryer) List(ctx context.Context) ([]model.User, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return Create(ctx, tq.Tx, u)
}

func (tq txQueryer) Delete(ctx context.Context, id uuid.UUID) error {
	return Delete(ctx, tq.Tx, id)
}

func (tq txQueryer) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	return IsReferenced(ctx, tq.Tx, id)
}
