// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSemVer(t *testing.T) {
	sv, err := model.ParseSemVer("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, model.SemVer{1, 2, 3}, sv)
	sv, err = model.ParseSemVer("2")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", sv.String())
	for _, bad := range []string{"1.2.3.4", "1.x", "-1", ""} {
		_, err = model.ParseSemVer(bad)
		assert.Error(t, err, bad)
	}
}

func TestSemVerSupports(t *testing.T) {
	bin := model.SemVer{1, 2, 0}
	assert.True(t, bin.Supports(model.SemVer{1, 0, 7}))
	assert.True(t, bin.Supports(model.SemVer{1, 2, 9}))
	assert.False(t, bin.Supports(model.SemVer{1, 3, 0}))
	assert.False(t, bin.Supports(model.SemVer{2, 0, 0}))
}
