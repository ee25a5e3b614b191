// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres reifies the repo.Pool, repo.Conn, and repo.Tx
// interfaces using GORM and the pgx based PostgreSQL driver. The
// repository packages (e.g., booksrp and loansrp) type assert the
// repo.Conn and repo.Tx instances to *Conn and *Tx of this package.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/momeni/clean-lending/pkg/core/repo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool is a database connection pool. Connections which are acquired
// from it begin their transactions with the pool isolation level.
type Pool struct {
	*gorm.DB

	isolation sql.IsolationLevel
}

// Option is a functional option for NewPool.
type Option func(p *Pool)

// WithIsolation sets the isolation level of the transactions.
// The default is the database default isolation level, which is
// READ COMMITTED for PostgreSQL unless configured otherwise.
func WithIsolation(level sql.IsolationLevel) Option {
	return func(p *Pool) {
		p.isolation = level
	}
}

// NewPool connects to the url database and tests the connection.
// GORM messages are logged by the default slog logger at warning level.
func NewPool(ctx context.Context, url string, opts ...Option) (*Pool, error) {
	gdb, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	gdb = gdb.Session(&gorm.Session{
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
				// Set to false in order to log with replaced vars
				ParameterizedQueries: true,
			},
		),
	})
	pool := &Pool{DB: gdb}
	for _, opt := range opts {
		opt(pool)
	}
	err = pool.Conn(ctx, NoOpConnHandler)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return pool, nil
}

type ConnHandler = repo.ConnHandler

// NoOpConnHandler does nothing. It is useful for testing a pool.
func NoOpConnHandler(context.Context, repo.Conn) error {
	return nil
}

// Conn acquires a connection and passes it to the f handler.
func (p *Pool) Conn(ctx context.Context, f ConnHandler) error {
	return p.DB.WithContext(ctx).Connection(func(c *gorm.DB) error {
		cc := &Conn{DB: c, isolation: p.isolation}
		return f(ctx, cc)
	})
}

// Close closes all connections of the pool.
func (p *Pool) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
