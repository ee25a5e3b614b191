// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// TxHandler is a function which runs its queries in a transaction.
// Returning a nil error commits the transaction, while a non-nil
// error (or a panic) rolls it back.
type TxHandler func(context.Context, Tx) error

// Conn represents a database connection which is acquired from a Pool.
// It is unsafe to be used concurrently.
type Conn interface {
	Queryer

	// Tx begins a transaction with the connection default isolation
	// level and passes it to the handler function. The transaction is
	// committed or rolled back based on the handler result.
	Tx(ctx context.Context, handler TxHandler) error

	// IsConn prevents a non-Conn object (such as a Tx) to mistakenly
	// implement the Conn interface.
	IsConn()
}
