// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers contains the versions parsing which is shared by all
// config versions. Two versions are tracked here, namely the
// configuration file and the database schema. Versions are parsed
// before the actual settings, so the settings format can be known
// before trying to decode them.
package vers

import (
	"fmt"

	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// Config contains the versions of the configuration file format and
// the database schema. It is embedded with the inline format in the
// config structs of each version.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions contains the configuration file and database schema versions
// which are used for detecting their relevant formats. Each binary only
// supports the latest versions which are known to it.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Load deserializes the data byte slice into a new instance of Config
// struct. Extra fields of data are ignored.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate returns an error if the configuration file version which is
// stored in the `vc` Config instance is not supported by a binary which
// implements the `config` version. Stored major version must match and
// the stored minor version may not be newer.
func (vc *Config) Validate(config model.SemVer) error {
	if v := vc.Versions.Config; !config.Supports(v) {
		return fmt.Errorf(
			"unsupported config version: %w",
			&cerr.MismatchingSemVerError{config, v},
		)
	}
	return nil
}

// Expect returns an error if the `vc` versions can not be used by a
// binary which implements the `config` file format and the `database`
// schema version. The config version is checked like Validate, while
// the database schema version must be equal since data migration is
// not supported.
func (vc *Config) Expect(config, database model.SemVer) error {
	if err := vc.Validate(config); err != nil {
		return err
	}
	if v := vc.Versions.Database; v != database {
		return fmt.Errorf(
			"unexpected database schema version: %w",
			&cerr.MismatchingSemVerError{database, v},
		)
	}
	return nil
}
