// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settingsrp

import (
	"context"
	"fmt"

	"github.com/momeni/clean-lending/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-lending/pkg/adapter/config/settings"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres/schinit"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/momeni/clean-lending/pkg/core/usecase/appuc"
)

// Fetch queries the mutable settings from the settings table,
// deserializes them, merges them into a clone of the baseConfs
// representing the configuration file and environment variables state,
// and returns the fresh configuration instance as an appuc.Builder
// in addition to its visible settings and boundary values.
func Fetch(
	ctx context.Context, q repo.Queryer, baseConfs *cfg1.Config,
) (
	appuc.Builder, *model.VisibleSettings, *model.Settings,
	*model.Settings, error,
) {
	confs, err := stored(ctx, q, baseConfs)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	minb, maxb := confs.Bounds()
	return confs, confs.Visible(), minb, maxb, nil
}

func stored(
	ctx context.Context, q repo.Queryer, baseConfs *cfg1.Config,
) (*cfg1.Config, error) {
	b, err := schinit.LoadSettings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("schinit.LoadSettings: %w", err)
	}
	ser, err := settings.Decode[cfg1.Serializable](b)
	if err != nil {
		return nil, fmt.Errorf("deserializing json: %w", err)
	}
	confs := baseConfs.Clone()
	if err = confs.Mutate(ctx, ser); err != nil {
		return nil, fmt.Errorf("confs.Mutate(%s): %w", b, err)
	}
	return confs, nil
}

// Update applies the version-independent mutable `s` settings on the
// currently stored settings, rejecting out of range values, and then
// stores the result as the json document of the last supported config
// version. The updated configuration is returned like Fetch.
func Update(
	ctx context.Context,
	tx *postgres.Tx,
	baseConfs *cfg1.Config,
	s *model.Settings,
) (
	appuc.Builder, *model.VisibleSettings, *model.Settings,
	*model.Settings, error,
) {
	confs, err := stored(ctx, tx, baseConfs)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err = confs.Apply(s); err != nil {
		return nil, nil, nil, nil, err
	}
	b, err := confs.Serialize()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("serializing json: %w", err)
	}
	if err = schinit.PersistSettings(ctx, tx, b); err != nil {
		return nil, nil, nil, nil, fmt.Errorf(
			"persisting settings: %w", err,
		)
	}
	minb, maxb := confs.Bounds()
	return confs, confs.Visible(), minb, maxb, nil
}
