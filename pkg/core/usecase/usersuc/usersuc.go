// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersuc contains the users UseCase. Users are the identities
// which borrow books. They are managed by the administrative commands
// and looked up by the web API when reporting the current user.
package usersuc

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

// UseCase represents the users use case.
type UseCase struct {
	pool    repo.Pool
	usersrp repo.Users
}

// New instantiates a users use case.
func New(p repo.Pool, u repo.Users) (*UseCase, error) {
	if p == nil || u == nil {
		return nil, errors.New("pool and users repo are required")
	}
	return &UseCase{pool: p, usersrp: u}, nil
}

// Create use case adds a user with the given username.
func (users *UseCase) Create(
	ctx context.Context, username string, isStaff bool,
) (user *model.User, err error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, cerr.Validation(model.FieldError(
			"username", "This field may not be blank.",
		))
	}
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			user, err = users.usersrp.Tx(tx).Create(ctx, &model.User{
				Username: username,
				IsStaff:  isStaff,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "user is created", log.Valuer("user", user))
	return user, nil
}

// Get use case finds the id user.
func (users *UseCase) Get(
	ctx context.Context, id uuid.UUID,
) (user *model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		user, err = users.usersrp.Conn(c).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByUsername use case finds a user by its username.
func (users *UseCase) GetByUsername(
	ctx context.Context, username string,
) (user *model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		user, err = users.usersrp.Conn(c).GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List use case returns all users.
func (users *UseCase) List(ctx context.Context) (uu []model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		uu, err = users.usersrp.Conn(c).List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uu, nil
}

// Delete use case removes the id user unless some loans reference it.
func (users *UseCase) Delete(ctx context.Context, id uuid.UUID) error {
	err := users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := users.usersrp.Tx(tx)
			if _, err := q.Get(ctx, id); err != nil {
				return err
			}
			referenced, err := q.IsReferenced(ctx, id)
			if err != nil {
				return fmt.Errorf("checking user references: %w", err)
			}
			if referenced {
				return cerr.Conflict(cerr.ErrUserReferenced)
			}
			return q.Delete(ctx, id)
		})
	})
	if err != nil {
		return err
	}
	log.Info(ctx, "user is deleted", slog.String("user", id.String()))
	return nil
}
