// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo specifies the repositories expectations of the use
// cases layer. A Pool hands out Conn instances to a handler function,
// a Conn may open a Tx for a handler function, and each repository
// (e.g., Books or Loans) wraps a Conn or Tx and exposes the queries
// which may be executed through it. Implementations are provided by
// the adapters layer, such as pkg/adapter/db/postgres.
package repo

import "context"

// ConnHandler is a function which uses a database connection. The
// connection is released after the handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool represents a database connection pool.
type Pool interface {
	// Conn acquires a connection and passes it to the handler function.
	// The handler error is returned as is.
	Conn(ctx context.Context, handler ConnHandler) error
}
