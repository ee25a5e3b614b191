// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/usecase/loansuc"
)

// Settings returns a copy of visible settings which are currently in
// effect. At least one of Reload or UpdateSettings methods must be
// called before this (and other use case objects getter methods) may
// be called.
func (app *UseCase) Settings() model.VisibleSettings {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return *app.settings
}

// Bounds returns the minimum and maximum boundary values of the
// mutable settings. Nil fields have no restriction. Returned structs
// are shared and must be cloned before modification.
func (app *UseCase) Bounds() (minb, maxb *model.Settings) {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.minb, app.maxb
}

// managedUseCases holds the use case objects which are replaced
// together whenever the settings change.
type managedUseCases struct {
	loansUseCase *loansuc.UseCase
}

// updateAll atomically updates the visible settings and all use case
// objects which are built based on them. The writing lock is taken
// only after all of them are instantiated.
func (app *UseCase) updateAll(
	vs *model.VisibleSettings,
	minb, maxb *model.Settings,
	managed managedUseCases,
) {
	app.rwlock.Lock()
	defer app.rwlock.Unlock()
	app.settings = vs
	app.minb, app.maxb = minb, maxb
	app.loansUseCase = managed.loansUseCase
}

// LoansUseCase returns the currently effective loans use case object.
// Resources should call it for each request instead of keeping the
// returned object, so they observe the updated settings.
func (app *UseCase) LoansUseCase() *loansuc.UseCase {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.loansUseCase
}
