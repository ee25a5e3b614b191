// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// Settings contains all mutable settings. Currently, all of them are
// visible by end-users too, so it only embeds the VisibleSettings.
// When fetching settings from end-users, the ImmutableSettings pointer
// must be nil since immutable settings may only be changed through the
// configuration file.
//
// A settings repository converts this version-independent struct to
// the last supported configuration format and back, so the use cases
// layer does not depend on the configuration file format.
type Settings struct {
	VisibleSettings
}

// VisibleSettings contains settings which are visible by end-users.
// The immutable ones are grouped by the ImmutableSettings pointer which
// is non-nil when reporting settings and nil when taking them.
type VisibleSettings struct {
	// Loans contains the loan lifecycle related settings.
	Loans LoansSettings `json:"loans"`

	*ImmutableSettings
}

// LoansSettings contains the loans use case settings. They are both
// visible and mutable.
type LoansSettings struct {
	// MaxActiveLoans is the maximum number of loans which a user may
	// have without returning any of them. A nil value keeps the
	// default limit.
	MaxActiveLoans *int `json:"max_active_loans"`
}

// ImmutableSettings contains settings which are visible, but may be
// configured only by the configuration file or environment variables.
type ImmutableSettings struct {
	// Logger reports if server-side REST API logging is enabled.
	Logger bool `json:"logger"`
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := &Settings{}
	if m := s.Loans.MaxActiveLoans; m != nil {
		v := *m
		c.Loans.MaxActiveLoans = &v
	}
	if is := s.ImmutableSettings; is != nil {
		c.ImmutableSettings = &ImmutableSettings{Logger: is.Logger}
	}
	return c
}
