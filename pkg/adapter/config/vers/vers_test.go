// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package vers_test

import (
	"testing"

	"github.com/momeni/clean-lending/pkg/adapter/config/vers"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpect(t *testing.T) {
	data := []byte("versions:\n  database: 1.0.0\n  config: 1.0.2\n" +
		"database:\n  host: ignored\n")
	vc, err := vers.Load(data)
	require.NoError(t, err)
	assert.Equal(t, model.SemVer{1, 0, 2}, vc.Versions.Config)

	assert.NoError(t, vc.Expect(model.SemVer{1, 0, 0}, model.SemVer{1, 0, 0}))
	assert.NoError(t, vc.Expect(model.SemVer{1, 2, 0}, model.SemVer{1, 0, 0}))

	var msve *cerr.MismatchingSemVerError
	err = vc.Expect(model.SemVer{2, 0, 0}, model.SemVer{1, 0, 0})
	require.ErrorAs(t, err, &msve)
	assert.Equal(t, model.SemVer{1, 0, 2}, msve[1])

	err = vc.Expect(model.SemVer{1, 0, 0}, model.SemVer{1, 1, 0})
	require.ErrorAs(t, err, &msve)
	assert.Equal(t, model.SemVer{1, 1, 0}, msve[0])
}

func TestLoadMalformed(t *testing.T) {
	_, err := vers.Load([]byte("versions:\n  config: one\n"))
	assert.Error(t, err)
}
