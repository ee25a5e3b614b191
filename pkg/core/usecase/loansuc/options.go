// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the loans use case.
type Option func(uc *UseCase) error

// WithMaxActiveLoans option configures a loans UseCase instance in
// order to reject borrowing requests of users who have max active
// loans already. This option may be passed to the New() function.
func WithMaxActiveLoans(max int) Option {
	return func(uc *UseCase) error {
		if max <= 0 {
			return fmt.Errorf("max active loans (%d) is not positive", max)
		}
		if uc.maxActiveLoans != 0 {
			return errors.New("max active loans is already configured")
		}
		uc.maxActiveLoans = max
		return nil
	}
}

// WithClock option replaces the time.Now function which is used for
// obtaining the borrowing and returning times and checking the due
// dates. It is useful for tests which need a deterministic time.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock function is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}
