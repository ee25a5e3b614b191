// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, m jwt.SigningMethod, key any, c jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(m, c).SignedString(key)
	require.NoError(t, err)
	return "Bearer " + s
}

func TestVerify(t *testing.T) {
	a := auth.New(secret)
	id := uuid.New()
	u, err := a.Verify(sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
		"sub": id.String(), "username": "alice", "is_staff": true,
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsStaff)

	u, err = a.Verify(sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
		"sub": id.String(), "username": "bob",
	}))
	require.NoError(t, err)
	assert.False(t, u.IsStaff)
}

func TestVerifyRejects(t *testing.T) {
	a := auth.New(secret)
	id := uuid.NewString()
	for name, header := range map[string]string{
		"empty":     "",
		"no bearer": "Token abc",
		"garbage":   "Bearer abc.def.ghi",
		"other key": sign(t, jwt.SigningMethodHS256, []byte("x"), jwt.MapClaims{
			"sub": id, "username": "alice",
		}),
		"expired": sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
			"sub": id, "username": "alice",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"bad sub": sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
			"sub": "42", "username": "alice",
		}),
		"no username": sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
			"sub": id,
		}),
	} {
		_, err := a.Verify(header)
		assert.Error(t, err, name)
	}
}
