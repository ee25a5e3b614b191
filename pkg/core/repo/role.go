// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a string specifying a database connection role. Each role
// has a set of granted privileges which indicates which operations
// may be performed after using it for connecting to a database.
// Passwords of roles are kept in a pass file (see the database section
// of the configuration file) and never in the configuration file.
type Role string

// These constants specify the expected database roles. The AdminRole
// must exist beforehand (i.e., must be created manually) and it must
// have super user privileges, so it can create the NormalRole.
const (
	// AdminRole is a super user role which is only used by the
	// database initialization use case for (re)creating the schema,
	// creating the normal role, and renewing the roles passwords.
	AdminRole Role = "admin"

	// NormalRole is an unprivileged role which owns the lending tables
	// and is used by the web server for all books and loans queries.
	NormalRole Role = "lendweb"
)
