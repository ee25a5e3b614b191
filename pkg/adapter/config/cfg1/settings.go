// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"context"
	"errors"
	"log/slog"

	"github.com/momeni/clean-lending/pkg/adapter/config/settings"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/model"
)

// ErrImmutableSettings indicates that an update tried to change the
// settings which may be changed only by the configuration file.
var ErrImmutableSettings = errors.New("immutable settings must not be set")

// Serializable is the json document which is stored in the settings
// table. It carries its format version, so a binary can detect a
// document which was written by another configuration version.
type Serializable struct {
	Version model.SemVer `json:"version"`

	Settings
}

// Settings contains the mutable settings. All of them are visible too.
type Settings struct {
	Visible
}

// Visible contains the settings which are visible by end-users.
type Visible struct {
	Loans struct {
		MaxActiveLoans *int `json:"max_active_loans"`
	} `json:"loans"`

	*Immutable
}

// Immutable contains the visible settings which may not be changed
// through the settings API.
type Immutable struct {
	// Logger reports if server-side REST API logging is enabled.
	Logger bool `json:"logger"`
}

// Serializable returns the mutable settings of `c` for persistence.
func (c *Config) Serializable() *Serializable {
	s := &Serializable{Version: Version}
	settings.OverwriteUnconditionally(
		&s.Loans.MaxActiveLoans, c.Usecases.Loans.MaxActiveLoans,
	)
	return s
}

// Mutate overrides the mutable settings of `c` with the `s` settings
// which are loaded from the database. A value which is out of the
// configured boundaries takes the nearest boundary value and a warning
// is logged, since stored settings may not be rejected anymore.
func (c *Config) Mutate(ctx context.Context, s *Serializable) error {
	if s.Immutable != nil {
		return ErrImmutableSettings
	}
	if s.Version != Version {
		return &cerr.MismatchingSemVerError{Version, s.Version}
	}
	l := &c.Usecases.Loans
	if m := s.Loans.MaxActiveLoans; m != nil {
		settings.OverwriteUnconditionally(&l.MaxActiveLoans, m)
		err := settings.Clamp(
			"max-active-loans", l.MaxActiveLoans, l.Minimum, l.Maximum,
		)
		if err != nil {
			log.Warn(
				ctx, "stored setting is clamped",
				log.Err("error", err),
				slog.Int("max_active_loans", *l.MaxActiveLoans),
			)
		}
	}
	return nil
}

// Apply overrides the mutable settings of `c` with the `s` settings
// which are provided by an end-user. Out of range values are rejected,
// leaving `c` unchanged, and a *cerr.Error with the bad request status
// is returned.
func (c *Config) Apply(s *model.Settings) error {
	if s.ImmutableSettings != nil {
		return cerr.BadRequest(ErrImmutableSettings)
	}
	l := &c.Usecases.Loans
	m := s.Loans.MaxActiveLoans
	if err := settings.CheckRange(
		"max_active_loans", m, l.Minimum, l.Maximum,
	); err != nil {
		return cerr.Validation(
			model.FieldError("max_active_loans", err.Error()),
		)
	}
	if m != nil {
		settings.OverwriteUnconditionally(&l.MaxActiveLoans, m)
	}
	return nil
}

// Visible returns the settings of `c` which are visible to end-users.
// The ValidateAndNormalize method must have been called beforehand.
func (c *Config) Visible() *model.VisibleSettings {
	vs := &model.VisibleSettings{
		ImmutableSettings: &model.ImmutableSettings{
			Logger: *c.Gin.Logger,
		},
	}
	settings.OverwriteUnconditionally(
		&vs.Loans.MaxActiveLoans, c.Usecases.Loans.MaxActiveLoans,
	)
	return vs
}

// Bounds returns the boundary values of the mutable settings. Settings
// without a boundary are left nil in the returned minb and maxb.
func (c *Config) Bounds() (minb, maxb *model.Settings) {
	minb, maxb = &model.Settings{}, &model.Settings{}
	settings.OverwriteUnconditionally(
		&minb.Loans.MaxActiveLoans, c.Usecases.Loans.Minimum,
	)
	settings.OverwriteUnconditionally(
		&maxb.Loans.MaxActiveLoans, c.Usecases.Loans.Maximum,
	)
	return minb, maxb
}
