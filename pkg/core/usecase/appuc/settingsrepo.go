// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"context"

	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

// SettingsRepo specifies the settings repository expectations. The
// mutable settings are converted to the serializable configuration
// format, stored as json in the database, and read back. In both
// paths, a clone of the base configuration settings (which are kept
// by the repository since its instantiation) is overridden by the
// mutable settings and returned as a Builder.
type SettingsRepo interface {
	// Conn wraps the provided connection instance and creates a new
	// settings repository connection-based queryer.
	Conn(repo.Conn) SettingsConnQueryer

	// Tx wraps the provided transaction instance and creates a new
	// settings repository transaction-based queryer.
	Tx(repo.Tx) SettingsTxQueryer
}

// SettingsConnQueryer contains the queries which need a connection.
type SettingsConnQueryer interface {
	// Fetch queries the mutable settings, merges them into a clone of
	// the base settings, and returns it as a Builder in addition to
	// its visible settings and the boundary values of the settings.
	// Database settings which are out of the acceptable range take
	// the nearest boundary value and a warning is logged.
	Fetch(ctx context.Context) (
		b Builder,
		vs *model.VisibleSettings,
		minb, maxb *model.Settings,
		err error,
	)
}

// SettingsTxQueryer contains the queries which need a transaction.
type SettingsTxQueryer interface {
	// Update verifies the `s` settings against the boundary values,
	// stores them, and returns the fresh Builder and visible settings
	// like Fetch. Out of range values are rejected with a bad request
	// error, keeping the stored settings unchanged.
	Update(ctx context.Context, s *model.Settings) (
		b Builder,
		vs *model.VisibleSettings,
		minb, maxb *model.Settings,
		err error,
	)
}
