// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"errors"

	"github.com/momeni/clean-lending/pkg/adapter/config/settings"
)

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Loans Loans // loans use case settings
}

// Loans contains the loans use case settings. MaxActiveLoans is mutable
// and may be changed by staff members within the [Minimum, Maximum]
// range. A nil boundary is not enforced.
type Loans struct {
	MaxActiveLoans *int `yaml:"max-active-loans,omitempty"`
	Minimum        *int `yaml:"max-active-loans-minimum,omitempty"`
	Maximum        *int `yaml:"max-active-loans-maximum,omitempty"`
}

// ValidateAndNormalize ensures that the boundaries are positive and
// consistent and MaxActiveLoans falls in their range.
func (l *Loans) ValidateAndNormalize() error {
	one := 1
	settings.Nil2Default(&l.Minimum, one)
	if *l.Minimum < 1 {
		return errors.New("max-active-loans-minimum must be positive")
	}
	if l.Maximum != nil && *l.Maximum < *l.Minimum {
		return errors.New("max-active-loans range is empty")
	}
	return settings.CheckRange(
		"max-active-loans", l.MaxActiveLoans, l.Minimum, l.Maximum,
	)
}

func (l Loans) clone() Loans {
	var c Loans
	settings.OverwriteUnconditionally(&c.MaxActiveLoans, l.MaxActiveLoans)
	settings.OverwriteUnconditionally(&c.Minimum, l.Minimum)
	settings.OverwriteUnconditionally(&c.Maximum, l.Maximum)
	return c
}
