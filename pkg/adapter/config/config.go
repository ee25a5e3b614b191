// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the lendweb to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings. Settings are versioned and maintained by
// sub-packages. The parsed settings are passed to their components as
// mandatory params and functional options, so each component validates
// its own settings too.
package config

import (
	"fmt"
	"os"

	"github.com/momeni/clean-lending/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-lending/pkg/adapter/config/vers"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
)

// Load function loads, validates, and normalizes the configuration
// file and returns its settings as an instance of the Config struct.
// Given path must belong to a configuration file which conforms with
// the latest known configuration settings format and the database
// schema version which is created by this binary.
func Load(path string) (*cfg1.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	v, err := vers.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	if err = v.Expect(cfg1.Version, postgres.Version); err != nil {
		return nil, err
	}
	c, err := cfg1.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading cfg1.Config: %w", err)
	}
	return c, nil
}
