// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"fmt"

	"github.com/momeni/clean-lending/pkg/core/model"
)

// These constants represent the major, minor, and patch components of
// the current database schema semantic version. The major version is
// a part of the schema name, so incompatible schema may coexist.
const (
	Major = 1 // latest supported schema major version
	Minor = 0 // latest schema minor version in Major series
	Patch = 0 // latest schema patch version in Minor series
)

// Version is the latest supported database schema semantic version.
var Version = model.SemVer{Major, Minor, Patch}

// Names of the constraints which are translated to classified errors.
const (
	LoansActiveBookIndex = "loans_active_book_uidx"
	BooksISBNKey         = "books_isbn_key"
	UsersUsernameKey     = "users_username_key"
)

// SchemaName returns the lendingN schema name for major version N.
func SchemaName(major uint) string {
	return fmt.Sprintf("lending%d", major)
}
