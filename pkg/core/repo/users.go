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

// Users is the users repository. Users are the borrowers which are
// referenced by loans. They are managed by the administrative commands.
type Users interface {
	Conn(Conn) UsersConnQueryer
	Tx(Tx) UsersTxQueryer
}

type UsersConnQueryer interface {
	UsersQueryer
}

type UsersTxQueryer interface {
	UsersQueryer

	// Create inserts u and returns it with its new ID. A duplicate
	// username is reported with cerr.ErrUsernameTaken.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// Delete removes the id user. A user which is referenced by some
	// loans may not be deleted and cerr.ErrUserReferenced is returned.
	Delete(ctx context.Context, id uuid.UUID) error

	// IsReferenced reports if any loan references the id user.
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

type UsersQueryer interface {
	// Get finds the id user or returns cerr.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByUsername finds a user by its username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// List returns all users ordered by their usernames.
	List(ctx context.Context) ([]model.User, error)
}
