// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/usecase/loansuc"
)

// Builder interface represents the expectations from the application
// use case builders. Each use case which depends on the settings has
// one NewX method here, taking the database connection pool and its
// repositories. The configuration struct implements this interface
// and when the mutable settings are loaded from the database (or are
// updated by a staff member), a fresh Builder with the overridden
// settings is returned by the settings repository.
type Builder interface {
	// NewLoansUseCase creates a new loansuc UseCase object having the
	// provided database connection pool and repositories, configured
	// with the max active loans of the builder settings.
	NewLoansUseCase(
		p repo.Pool, l repo.Loans, b repo.Books,
	) (*loansuc.UseCase, error)
}
