// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer is an internal helper for the test packages.
// This packages facilitates creation of a temporary postgres:16
// podman (or docker) container and connecting to it, using a
// *postgres.Pool connection pool.
// It may be used in all integration-level test suites which require
// a real PostgreSQL DBMS server. Tests are skipped when the -short
// flag is given or no container engine is reachable.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/stretchr/testify/assert"
)

// Container wraps a started postgres container and a pool which is
// connected to it with the superuser role.
type Container struct {
	PG   *sqltestutil.PostgresContainer
	Pool *postgres.Pool
}

// URL returns the connection string of the superuser role.
func (c *Container) URL() string {
	return c.PG.ConnectionString()
}

// New creates and starts up a postgres container.
// For podman, the podman.service needs to be started and the
// DOCKER_HOST environment variable needs to be initialized beforehand
// like DOCKER_HOST=unix://$XDG_RUNTIME_DIR/podman/podman.sock
// in order to be identified by this function properly.
// The ctx will be used during the container start up and shutdown,
// while the timeout will be considered only during the start up phase.
// Returned deferred functions must be called (in reverse order) when
// the container is not required anymore. If ok is false, the caller
// must return immediately because t is either skipped or failed.
func New(ctx context.Context, timeout time.Duration, t *testing.T) (
	c *Container,
	dfrs []func(),
	ok bool,
) {
	if testing.Short() {
		t.Skip("skipping the postgres integration test in short mode")
		return
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	dbmsVer := "16"
	pg, err := sqltestutil.StartPostgresContainer(ctx2, dbmsVer)
	if err != nil {
		t.Skipf("cannot start a postgres container: %v", err)
		return
	}
	dfrs = append(dfrs, func() {
		err := pg.Shutdown(ctx)
		assert.NoError(t, err, "failed to shutdown test database")
	})
	u := pg.ConnectionString()
	var pool *postgres.Pool
	for pool == nil {
		pool, err = postgres.NewPool(ctx2, u)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == "57P03" {
			continue // the database system is starting up
		}
		var netErr net.Error
		if ctx2.Err() == nil && errors.As(err, &netErr) {
			time.Sleep(100 * time.Millisecond)
			continue // tolerate network errors until a timeout
		}
		ok = assert.NoError(t, err, "cannot connect to test database")
		if !ok {
			return
		}
	}
	dfrs = append(dfrs, func() {
		err := pool.Close()
		assert.NoError(t, err, "failed to close the connections pool")
	})
	return &Container{PG: pg, Pool: pool}, dfrs, true
}
