// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// SchemaInitializer creates the lending tables and their indexes in
// an empty schema and fills them with development or production
// suitable data. It wraps an ongoing transaction, so all tables are
// visible together after its commitment.
type SchemaInitializer interface {
	SettingsPersister

	// InitDevSchema creates tables and inserts some sample users and
	// books, so the web API may be tried without further preparation.
	InitDevSchema(ctx context.Context) error

	// InitProdSchema creates empty tables.
	InitProdSchema(ctx context.Context) error
}

// SettingsPersister stores the serialized mutable settings in the
// settings table, replacing its previous contents.
type SettingsPersister interface {
	PersistSettings(ctx context.Context, mutableSettings []byte) error
}

// Schema is the schema management repository. It manages the database
// schema and roles using an administrative connection.
type Schema interface {
	Conn(Conn) SchemaConnQueryer

	Tx(Tx) SchemaTxQueryer
}

// SchemaConnQueryer has no connection specific query yet.
type SchemaConnQueryer interface {
	SchemaQueryer
}

// SchemaTxQueryer lists the schema management queries which need an
// open transaction.
type SchemaTxQueryer interface {
	SchemaQueryer

	// ChangePasswords updates the passwords of roles in the current
	// transaction. The roles and passwords slices must have the same
	// length, so they can be used in pair.
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error
}

// SchemaQueryer lists the schema management queries which may be
// executed with a connection or a transaction. Callers are
// responsible to pass trusted schema names.
type SchemaQueryer interface {
	// DropIfExists drops the schema with cascade if it exists.
	DropIfExists(ctx context.Context, schema string) error

	// CreateSchema creates the schema which must not exist.
	CreateSchema(ctx context.Context, schema string) error

	// CreateRoleIfNotExists creates the role with the login option if
	// it does not exist. No password is set for a created role.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// GrantPrivileges grants all privileges on the schema to role.
	GrantPrivileges(ctx context.Context, schema string, role Role) error

	// SetSearchPath sets the default search_path of role to schema.
	SetSearchPath(ctx context.Context, schema string, role Role) error
}
