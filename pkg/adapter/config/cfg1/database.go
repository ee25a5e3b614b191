// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/clean-lending/pkg/adapter/hash/scram"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/repo"
	scrami "github.com/momeni/clean-lending/pkg/core/scram"
)

// Database contains the database related configuration settings.
type Database struct {
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like lending
	PassDir string `yaml:"pass-dir"` // path of the passwords dir

	// RoleSuffix specifies a possibly empty suffix for the database
	// role names. Normally, repo.AdminRole and repo.NormalRole roles
	// are used. Parallel test cases may need distinct role names in
	// the same database cluster and a unique suffix provides them.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod specifies how passwords should be hashed before
	// being stored in the database. Only scram-sha-1 and scram-sha-256
	// are supported and scram-sha-256 is the default value.
	AuthMethod string `yaml:"auth-method,omitempty"`

	// Isolation is the isolation level of the use cases transactions.
	// It may be read-committed (the default), repeatable-read, or
	// serializable. The active loans uniqueness does not depend on it
	// because it is enforced by a unique index.
	Isolation string `yaml:"isolation,omitempty"`

	hasher    scrami.Hasher      // instantiated based on AuthMethod
	isolation sql.IsolationLevel // parsed Isolation
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
// Initially, the .pgpass file in the d.PassDir folder is checked
// which should conform with the pgpass format with lines like this:
//
//	host:port:dbname:role:password
//
// If a database connection could be established, created pool and nil
// error will be returned. Otherwise, passwords might have been updated
// during a previous incomplete initialization. So the .pgpass.new
// file in the same d.PassDir folder is checked too. If a connection
// could be established successfully, the .pgpass.new will be moved to
// the .pgpass file, so the .pgpass.new file may be overwritten safely
// by the subsequent password renewals.
//
// The `d.RoleSuffix` will be appended to the given `r` role name too.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*postgres.Pool, error) {
	path := filepath.Join(d.PassDir, ".pgpass")
	p, err := d.connect(ctx, r, path)
	if err == nil {
		return p, nil
	}
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	log.Warn(
		ctx, "trying the new pass-file",
		log.Err("error", err),
		slog.String("path", newPath),
	)
	p, err = d.connect(ctx, r, newPath)
	if err != nil {
		return nil, fmt.Errorf("can use neither pass-file: %w", err)
	}
	if err = os.Rename(newPath, path); err != nil {
		p.Close()
		return nil, fmt.Errorf("os.Rename: %w", err)
	}
	return p, nil
}

func (d Database) connect(
	ctx context.Context, r repo.Role, path string,
) (*postgres.Pool, error) {
	u, err := d.ConnectionURL(r, path)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", path, err)
	}
	return postgres.NewPool(ctx, u, postgres.WithIsolation(d.isolation))
}

// ConnectionURL returns the database connection URL embedding the host,
// port, role name, database name, and password value. The password of
// the `r` role is read from the `path` pass-file which may contain
// empty or `#`-commented lines in addition to the password lines.
func (d Database) ConnectionURL(
	r repo.Role, path string,
) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	r = r + d.RoleSuffix
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// NewSchemaRepo instantiates a fresh Schema repository which suffixes
// the role names by `d.RoleSuffix` and hashes the passwords with the
// configured authentication method. The ValidateAndNormalize method
// must be called beforehand, so the hasher is instantiated.
func (d Database) NewSchemaRepo() repo.Schema {
	return schemarp.New(d.RoleSuffix, d.hasher)
}

// RenewPasswords generates new secure passwords for the given roles
// and records them in the .pgpass.new file (in the `d.PassDir`
// directory) before calling the `change` function in order to update
// the passwords of those `roles` in the database too. The `change`
// function may perform the update in a transaction which is committed
// after RenewPasswords returns. Thereafter, the returned finalizer
// must be called in order to move the .pgpass.new file over .pgpass.
// Until then, ConnectionPool can use either file, so an interrupted
// renewal leaves a usable pass-file.
//
// The `d.RoleSuffix` will be appended to the given role names too.
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	passwords := make([]string, len(roles))
	b := make([]byte, 16) // 128 bits
	enc := base64.RawStdEncoding
	prfx := fmt.Sprintf("%s:%d:%s", d.Host, d.Port, d.Name)
	var lines strings.Builder
	for i, r := range roles {
		if _, err = rand.Read(b); err != nil {
			return nil, fmt.Errorf("rand.Read for i=%d: %w", i, err)
		}
		passwords[i] = enc.EncodeToString(b)
		fmt.Fprintf(&lines, "%s:%s:%s\n", prfx, r+d.RoleSuffix, passwords[i])
	}
	orgPath := filepath.Join(d.PassDir, ".pgpass")
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	err = os.WriteFile(newPath, []byte(lines.String()), 0o600)
	if err != nil {
		return nil, fmt.Errorf("writing %q file: %w", newPath, err)
	}
	if err = change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("passwords change callback: %w", err)
	}
	return func() error {
		return os.Rename(newPath, orgPath)
	}, nil
}

// ValidateAndNormalize validates the database settings, fills the
// missing settings with their defaults, and instantiates the hasher
// and isolation level. It takes a pointer receiver, in contrast to the
// other methods, because it modifies the settings.
func (d *Database) ValidateAndNormalize() error {
	if d.AuthMethod == "" {
		d.AuthMethod = "scram-sha-256"
	}
	h, err := scram.ByName(d.AuthMethod)
	if err != nil {
		return fmt.Errorf("database auth-method: %w", err)
	}
	d.hasher = h
	switch iso := d.Isolation; iso {
	case "":
		d.Isolation = "read-committed"
		fallthrough
	case "read-committed":
		d.isolation = sql.LevelReadCommitted
	case "repeatable-read":
		d.isolation = sql.LevelRepeatableRead
	case "serializable":
		d.isolation = sql.LevelSerializable
	default:
		return fmt.Errorf("unsupported isolation level: %q", iso)
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	return nil
}

// IsolationLevel returns the parsed transactions isolation level.
func (d Database) IsolationLevel() sql.IsolationLevel {
	return d.isolation
}
