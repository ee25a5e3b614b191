// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

type usersRepo struct{}

type userQ struct {
	queryer
}

func (usersRepo) Conn(c repo.Conn) repo.UsersConnQueryer {
	return userQ{unwrapConn(c)}
}

func (usersRepo) Tx(tx repo.Tx) repo.UsersTxQueryer {
	return userQ{unwrapTx(tx)}
}

func (q userQ) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	u, ok := q.db.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (q userQ) GetByUsername(
	ctx context.Context, username string,
) (*model.User, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	for _, u := range q.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, cerr.NotFound(fmt.Errorf(
		"user %q: %w", username, cerr.ErrNotFound,
	))
}

func (q userQ) List(ctx context.Context) ([]model.User, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	uu := make([]model.User, 0, len(q.db.users))
	for _, u := range q.db.users {
		uu = append(uu, u)
	}
	sort.Slice(uu, func(i, j int) bool {
		return uu[i].Username < uu[j].Username
	})
	return uu, nil
}

func (q userQ) Create(
	ctx context.Context, u *model.User,
) (*model.User, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	for _, ou := range q.db.users {
		if ou.Username == u.Username {
			return nil, cerr.Conflict(cerr.ErrUsernameTaken)
		}
	}
	nu := model.User{
		ID:       uuid.New(),
		Username: u.Username,
		IsStaff:  u.IsStaff,
	}
	q.db.users[nu.ID] = nu
	q.onUndo(func() { delete(q.db.users, nu.ID) })
	return &nu, nil
}

// userReferenced must be called with the lock.
func (q queryer) userReferenced(id uuid.UUID) bool {
	for _, l := range q.db.loans {
		if l.UserID == id {
			return true
		}
	}
	return false
}

func (q userQ) Delete(ctx context.Context, id uuid.UUID) error {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	old, ok := q.db.users[id]
	if !ok {
		return notFound("user", id)
	}
	if q.userReferenced(id) {
		return cerr.Conflict(cerr.ErrUserReferenced)
	}
	delete(q.db.users, id)
	q.onUndo(func() { q.db.users[id] = old })
	return nil
}

func (q userQ) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	q.db.mu.Lock()
	defer q.db.mu.Unlock()
	return q.userReferenced(id), nil
}
