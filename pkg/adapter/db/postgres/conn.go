// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/clean-lending/pkg/core/repo"
	"gorm.io/gorm"
)

// Conn is a database connection which implements repo.Conn.
type Conn struct {
	*gorm.DB

	isolation sql.IsolationLevel
}

type TxHandler = repo.TxHandler

// Tx begins a transaction with the pool isolation level and passes it
// to the f handler. The transaction is committed if f returns nil,
// otherwise, it is rolled back. A panicking handler is recovered and
// reported as an error after rolling back the transaction.
//
// Errors of the handler and of the commit are passed to Translate, so
// constraint violations and serialization failures which are detected
// by statements without a dedicated translation (or by the COMMIT
// itself, as SERIALIZABLE transactions may) are classified too.
func (c *Conn) Tx(ctx context.Context, f TxHandler) (err error) {
	var opts []*sql.TxOptions
	if c.isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: c.isolation})
	}
	tx := c.DB.WithContext(ctx).Begin(opts...)
	if err = tx.Error; err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = tx.Rollback().Error
			if err == nil {
				err = fmt.Errorf("panicked: %v", r)
				return
			}
			err = fmt.Errorf("panicked: %v, rollback: %w", r, err)
			return
		}
		if err != nil {
			if err2 := tx.Rollback().Error; err2 != nil {
				err = fmt.Errorf("handler: %w, rollback: %w", err, err2)
				return
			}
			err = fmt.Errorf("handler: %w", Translate(ctx, err))
			return
		}
		err = tx.Commit().Error
		if err != nil {
			err = fmt.Errorf("commit: %w", Translate(ctx, err))
		}
	}()
	tt := &Tx{DB: tx}
	return f(ctx, tt)
}

// Exec runs sql with args outside of any explicit transaction, so
// each statement is committed on its own. The parameters and statement
// rules are the same as Tx.Exec.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tt := c.DB.WithContext(ctx).Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, err
	}
	return tt.RowsAffected, nil
}

// Query runs one sql statement with args. The returned Rows must be
// closed before the connection is used again. See Tx.Query.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := c.DB.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

// IsConn method prevents a non-Conn object (such as a Tx) to
// mistakenly implement the Conn interface.
func (c *Conn) IsConn() {
}

// GORM returns the underlying GORM session bound to ctx.
func (c *Conn) GORM(ctx context.Context) *gorm.DB {
	return c.DB.WithContext(ctx)
}
