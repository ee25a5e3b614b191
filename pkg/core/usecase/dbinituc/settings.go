// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dbinituc

import (
	"context"

	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
)

// Pool is a closable database connection pool.
type Pool interface {
	repo.Pool

	// Close releases all connections of the pool.
	Close() error
}

// Settings represents the database-related settings which should be
// provided by a configuration file. It allows a connection pool to be
// established for an asked role, creates the schema repositories, and
// renews the roles passwords (storing them in the pass files).
type Settings interface {
	// ConnectionPool creates a database connection pool for the r role.
	//
	// Passwords are kept in a pass file in the configured pass dir.
	// Each non-empty and non-commented line of that file should conform
	// with this format:
	//
	//	host:port:dbname:role:password
	//
	// While renewing passwords, a second temporary pass file is
	// created. If the main file could not be used for connecting to
	// the database, the temporary file is tried and if it worked, it
	// is moved over the main file.
	ConnectionPool(ctx context.Context, r repo.Role) (Pool, error)

	// NewSchemaRepo instantiates a fresh Schema repository.
	NewSchemaRepo() repo.Schema

	// SchemaInitializer creates a repo.SchemaInitializer which wraps
	// the tx transaction, so tables are created in that transaction.
	SchemaInitializer(tx repo.Tx) (repo.SchemaInitializer, error)

	// RenewPasswords generates new secure passwords for the given roles
	// and after recording them in a temporary file, will use the change
	// function in order to update the passwords of those roles in the
	// database too. The change function may perform the update in a
	// transaction which is committed after RenewPasswords returns, so
	// the returned finalizer must be called after that commitment in
	// order to move the temporary file over the main pass file.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context,
			roles []repo.Role,
			passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)

	// Serialize returns the json serialization of mutable settings,
	// so they may be persisted as the initial settings.
	Serialize() ([]byte, error)

	// SchemaVersion returns the database schema semantic version.
	SchemaVersion() model.SemVer
}
