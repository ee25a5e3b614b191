// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package appuc contains the application UseCase which supports the
// settings fetching and updating requests, allows the application to be
// reloaded based on the mutable settings which are stored in the
// database, and maintains and provides visible settings and use case
// objects (with atomic replacement support) so they may be used by
// the resources packages.
package appuc

import (
	"fmt"
	"sync"

	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/usecase/loansuc"
)

// UseCase represents an application use case. It holds a database
// connection pool, settings repository instance, and the repositories
// which are required by the settings dependent use cases, so it can
// pass them to a Builder (which is realized by the effective
// configuration) during a Reload or UpdateSettings operation.
type UseCase struct {
	pool         repo.Pool
	settingsRepo SettingsRepo
	loansRepo    repo.Loans
	booksRepo    repo.Books

	// mutex serializes UpdateSettings and Reload, so an older settings
	// query may not publish its results after a newer one.
	// Getters do not take it, so they are never blocked by the
	// database queries.
	mutex sync.Mutex

	// rwlock guards the published state, that is, the settings and the
	// use case objects which are built based on them. It does not guard
	// any domain state.
	rwlock sync.RWMutex

	settings     *model.VisibleSettings // cached visible settings
	minb, maxb   *model.Settings        // boundary values
	loansUseCase *loansuc.UseCase
}

// New instantiates an application use case object. The Reload method
// of this object should be called at least once, so it can create
// other supported use case objects, before their corresponding getter
// methods are invoked (otherwise, they may return nil).
func New(
	p repo.Pool,
	s SettingsRepo,
	loansRepo repo.Loans,
	booksRepo repo.Books,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:         p,
		settingsRepo: s,
		loansRepo:    loansRepo,
		booksRepo:    booksRepo,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return uc, nil
}

// Option is a functional option for the application use case.
type Option func(uc *UseCase) error
