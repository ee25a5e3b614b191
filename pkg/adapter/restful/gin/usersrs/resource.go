// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersrs realizes the users resource which reports the
// authenticated caller identity.
package usersrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/auth"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-lending/pkg/core/usecase/usersuc"
)

type resource struct {
	users *usersuc.UseCase
}

// Register adds the GET /me REST API which returns the stored record
// of the authenticated user. A token of a deleted user is answered
// with 404 status.
func Register(r *gin.RouterGroup, users *usersuc.UseCase) {
	rs := &resource{users: users}
	r.GET("me", rs.Me)
}

func (rs *resource) Me(c *gin.Context) {
	u, err := rs.users.Get(c, auth.User(c).ID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
