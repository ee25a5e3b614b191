// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings_test

import (
	"testing"

	"github.com/momeni/clean-lending/pkg/adapter/config/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRange(t *testing.T) {
	minb, maxb := 1, 10
	v := 5
	assert.NoError(t, settings.CheckRange("max", &v, &minb, &maxb))
	assert.NoError(t, settings.CheckRange[int]("max", nil, &minb, &maxb))
	assert.NoError(t, settings.CheckRange("max", &v, nil, nil))

	v = 0
	err := settings.CheckRange("max", &v, &minb, &maxb)
	require.Error(t, err)
	assert.Equal(t, "max: 0 is less than min (1)", err.Error())
	assert.Equal(t, 0, v)

	v = 11
	err = settings.CheckRange("max", &v, &minb, &maxb)
	var oor *settings.OutOfRangeError[int]
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 11, oor.Value)
	assert.Equal(t, "max: 11 is greater than max (10)", err.Error())
}

func TestClamp(t *testing.T) {
	minb, maxb := 1, 10
	v := 0
	assert.Error(t, settings.Clamp("max", &v, &minb, &maxb))
	assert.Equal(t, 1, v)
	v = 42
	assert.Error(t, settings.Clamp("max", &v, &minb, &maxb))
	assert.Equal(t, 10, v)
	v = 7
	assert.NoError(t, settings.Clamp("max", &v, &minb, &maxb))
	assert.Equal(t, 7, v)
	assert.NoError(t, settings.Clamp[int]("max", nil, &minb, &maxb))
}
