// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

// UpdateSettings validates and stores the `s` mutable settings on
// behalf of the actor staff member, then rebuilds the loans use case
// from the stored settings. The rebuilt use case is created within the
// settings transaction (so invalid settings are never committed) but it
// is only published after the commitment.
//
// UpdateSettings and Reload hold the mutex during their whole run, so
// they are serialized, while readers only take the rwlock for swapping
// pointers and are never blocked by the database round trips.
//
// The returned `vs`, `minb`, and `maxb` structs are shared with later
// callers of Settings and Bounds and must not be modified.
func (app *UseCase) UpdateSettings(
	ctx context.Context, actor *model.User, s *model.Settings,
) (vs *model.VisibleSettings, minb, maxb *model.Settings, err error) {
	switch {
	case actor == nil:
		err = cerr.Authentication(errors.New("no user is given"))
		return nil, nil, nil, err
	case !actor.IsStaff:
		return nil, nil, nil, cerr.Authorization(cerr.ErrNotAuthorized)
	case s == nil:
		err = cerr.BadRequest(errors.New("no settings are given"))
		return nil, nil, nil, err
	case s.ImmutableSettings != nil:
		err = cerr.BadRequest(errors.New("immutable settings are given"))
		return nil, nil, nil, err
	}
	app.mutex.Lock()
	defer app.mutex.Unlock()
	var managed managedUseCases
	err = app.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			b, v, lo, hi, err := app.settingsRepo.Tx(tx).Update(ctx, s)
			if err != nil {
				return err
			}
			if managed, err = app.newManagedUseCases(b); err != nil {
				return fmt.Errorf("rebuilding use cases: %w", err)
			}
			vs, minb, maxb = v, lo, hi
			return nil
		})
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.updateAll(vs, minb, maxb, managed)
	log.Info(
		ctx, "settings are updated",
		log.Valuer("actor", actor),
		slog.Int(
			"max_active_loans", managed.loansUseCase.MaxActiveLoans(),
		),
	)
	return vs, minb, maxb, nil
}

// Reload fetches the mutable settings from the database, overlays
// them on the configuration file settings, and publishes a loans use
// case which follows the result. It must be called once before the
// LoansUseCase method is used.
func (app *UseCase) Reload(ctx context.Context) error {
	app.mutex.Lock()
	defer app.mutex.Unlock()
	var (
		b          Builder
		vs         *model.VisibleSettings
		minb, maxb *model.Settings
	)
	err := app.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (err error) {
		b, vs, minb, maxb, err = app.settingsRepo.Conn(c).Fetch(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetching settings: %w", err)
	}
	managed, err := app.newManagedUseCases(b)
	if err != nil {
		return fmt.Errorf("creating use cases: %w", err)
	}
	app.updateAll(vs, minb, maxb, managed)
	return nil
}

// newManagedUseCases builds the use cases which depend on the mutable
// settings. Publishing them is left to the caller.
func (app *UseCase) newManagedUseCases(
	b Builder,
) (managedUseCases, error) {
	loans, err := b.NewLoansUseCase(app.pool, app.loansRepo, app.booksRepo)
	if err != nil {
		return managedUseCases{}, fmt.Errorf("loans use case: %w", err)
	}
	return managedUseCases{loansUseCase: loans}, nil
}
