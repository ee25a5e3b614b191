// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 loads the configuration settings with version 1.x.y
// since all known minor and patch versions with the same major version
// can be loaded with one implementation. The Config struct implements
// the settings interfaces of the use cases layer (like the Builder of
// appuc and the Settings of dbinituc), so use cases do not depend on
// the configuration file format.
package cfg1

import (
	"context"
	"fmt"

	"github.com/momeni/clean-lending/pkg/adapter/config/settings"
	"github.com/momeni/clean-lending/pkg/adapter/config/vers"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/schinit"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/usecase/appuc"
	"github.com/momeni/clean-lending/pkg/core/usecase/booksuc"
	"github.com/momeni/clean-lending/pkg/core/usecase/dbinituc"
	"github.com/momeni/clean-lending/pkg/core/usecase/loansuc"
	"github.com/momeni/clean-lending/pkg/core/usecase/usersuc"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// JWTSecretEnv is the environment variable which overrides the JWT
// secret of the configuration file.
const JWTSecretEnv = "LENDWEB_JWT_SECRET"

// Config contains all settings which are required by different parts
// of the project following the v1.x.y format. Fields are primitives or
// locally defined structs, so the configuration format stays intact
// while the models of lower layers change.
type Config struct {
	Database Database // PostgreSQL database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Logging  Logging  // Console logging settings
	Auth     Auth     // Bearer tokens verification settings
	Usecases Usecases // Configuration settings for supported use cases

	// Vers contains the configuration file and database schema version
	// strings corresponding to this Config instance and its Database
	// target.
	Vers vers.Config `yaml:",inline"`
}

// Load parses the data byte slice as a v1.x.y configuration file,
// applies the environment variables overrides, and validates the
// resulting settings.
func Load(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	settings.OverwriteFromEnv(&c.Auth.JWTSecret, JWTSecretEnv)
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It also replaces the
// missing settings with their default values.
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Version); err != nil {
		return fmt.Errorf("expecting version v%d.%d: %w", Major, Minor, err)
	}
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	c.Gin.normalize()
	if err := c.Logging.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating logging settings: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("validating auth settings: %w", err)
	}
	if err := c.Usecases.Loans.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating loans settings: %w", err)
	}
	return nil
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `c` settings.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (dbinituc.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"connecting to %s:%d/%s: %w",
			c.Database.Host, c.Database.Port, c.Database.Name, err,
		)
	}
	return p, nil
}

// NewSchemaRepo instantiates a fresh Schema repository. Role names
// which are passed to its methods are suffixed by the configured role
// suffix automatically.
func (c *Config) NewSchemaRepo() repo.Schema {
	return c.Database.NewSchemaRepo()
}

// SchemaInitializer creates a schema initializer which creates the
// tables and persists the initial settings in the `tx` transaction.
func (c *Config) SchemaInitializer(
	tx repo.Tx,
) (repo.SchemaInitializer, error) {
	return schinit.New(tx), nil
}

// RenewPasswords delegates to the Database.RenewPasswords method.
func (c *Config) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	return c.Database.RenewPasswords(ctx, change, roles...)
}

// Serialize returns the json serialization of the mutable settings,
// as they should be stored in the database.
func (c *Config) Serialize() ([]byte, error) {
	return settings.Encode(c.Serializable())
}

// SchemaVersion returns the version of the database schema which is
// expected by this configuration file.
func (c *Config) SchemaVersion() model.SemVer {
	return c.Vers.Versions.Database
}

// NewLoansUseCase instantiates a new loans use case with the max
// active loans of the `c` settings. The loans use case default limit
// is used if it is not configured.
func (c *Config) NewLoansUseCase(
	p repo.Pool, l repo.Loans, b repo.Books,
) (*loansuc.UseCase, error) {
	var opts []loansuc.Option
	if m := c.Usecases.Loans.MaxActiveLoans; m != nil {
		opts = append(opts, loansuc.WithMaxActiveLoans(*m))
	}
	return loansuc.New(p, l, b, opts...)
}

// NewBooksUseCase instantiates a new books use case. It has no
// settings yet, but is created here for uniformity.
func (c *Config) NewBooksUseCase(
	p repo.Pool, b repo.Books,
) (*booksuc.UseCase, error) {
	return booksuc.New(p, b)
}

// NewUsersUseCase instantiates a new users use case.
func (c *Config) NewUsersUseCase(
	p repo.Pool, u repo.Users,
) (*usersuc.UseCase, error) {
	return usersuc.New(p, u)
}

// NewAppUseCase instantiates a new application use case. The settings
// repository is taken as an argument because it depends on this
// package itself. The returned use case must be reloaded before its
// loans use case getter may be used.
func (c *Config) NewAppUseCase(
	p repo.Pool, s appuc.SettingsRepo, l repo.Loans, b repo.Books,
) (*appuc.UseCase, error) {
	return appuc.New(p, s, l, b)
}

// Clone creates a deep copy of `c`, so its mutable settings may be
// changed without affecting `c`.
func (c *Config) Clone() *Config {
	cc := *c
	settings.OverwriteUnconditionally(&cc.Gin.Logger, c.Gin.Logger)
	settings.OverwriteUnconditionally(&cc.Gin.Recovery, c.Gin.Recovery)
	settings.OverwriteUnconditionally(
		&cc.Gin.ShutdownTimeout, c.Gin.ShutdownTimeout,
	)
	settings.OverwriteUnconditionally(&cc.Logging.Color, c.Logging.Color)
	cc.Usecases.Loans = c.Usecases.Loans.clone()
	return &cc
}
