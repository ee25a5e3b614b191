// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scram_test

import (
	"strings"
	"testing"

	"github.com/momeni/clean-lending/pkg/adapter/hash/scram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	m, err := scram.ByName("scram-sha-256")
	require.NoError(t, err)
	assert.Equal(t, "SCRAM-SHA-256", m.Name())

	const salt = "c2FsdHNhbHRzYWx0c2FsdA=="
	h1, err := m.Hash("secret", salt, 15000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h1, "SCRAM-SHA-256$15000:"+salt+"$"))
	h2, err := m.Hash("secret", salt, 15000)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	h3, err := m.Hash("other", salt, 15000)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	r1, err := m.Hash("secret", "", 4096)
	require.NoError(t, err)
	r2, err := m.Hash("secret", "", 4096)
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2, "random salts must differ")
}

func TestHashRejects(t *testing.T) {
	m := scram.SHA1()
	_, err := m.Hash("", "", 15000)
	assert.Error(t, err)
	_, err = m.Hash("secret", "", 100)
	assert.Error(t, err)
	_, err = m.Hash("secret", "not base64!", 15000)
	assert.Error(t, err)
	_, err = scram.ByName("md5")
	assert.Error(t, err)
}
