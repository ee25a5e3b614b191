// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package auth authenticates the REST API callers by HS256 signed
// bearer tokens. Tokens are issued elsewhere. The sub, username, and
// is_staff claims are trusted as the caller identity.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/model"
)

const userKey = "lendweb.user"

var (
	errMissingToken = errors.New("authentication credentials were not provided")
	errMalformed    = errors.New("malformed claims")
)

// Authenticator verifies the bearer tokens with an HMAC secret.
type Authenticator struct {
	secret []byte
}

// New creates an Authenticator which accepts tokens that are signed
// by the secret key.
func New(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// Middleware returns a gin middleware which rejects requests without
// a valid bearer token with 401 status. Accepted requests carry the
// caller identity which may be obtained by the User function.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := a.Verify(c.GetHeader("Authorization"))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": err.Error(),
			})
			return
		}
		c.Set(userKey, u)
		ctx := log.With(c.Request.Context(), log.Valuer("user", u))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Verify parses an Authorization header value and returns the user
// which is described by its token claims.
func (a *Authenticator) Verify(header string) (*model.User, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errMissingToken
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(
				"unexpected signing method: %v", t.Header["alg"],
			)
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errMalformed
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: sub: %w", errMalformed, err)
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return nil, fmt.Errorf("%w: username is missing", errMalformed)
	}
	isStaff, _ := claims["is_staff"].(bool)
	return &model.User{ID: id, Username: username, IsStaff: isStaff}, nil
}

// User returns the authenticated caller of c, or nil if the request
// did not pass through the Middleware.
func User(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
