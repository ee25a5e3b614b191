// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/momeni/clean-lending/pkg/adapter/config/settings"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/auth"
)

// Gin contains the gin-gonic related configuration settings.
type Gin struct {
	Address  string `yaml:"address,omitempty"` // listening address, :8080 by default
	Logger   *bool // Whether to register the request logger middleware
	Recovery *bool // Whether to register the gin.Recovery() middleware

	// ShutdownTimeout is the time which in-flight requests are given
	// before the server is closed forcefully. It is 5s by default.
	ShutdownTimeout *settings.Duration `yaml:"shutdown-timeout,omitempty"`
}

func (g *Gin) normalize() {
	if g.Address == "" {
		g.Address = ":8080"
	}
	settings.Nil2Zero(&g.Logger)
	settings.Nil2Zero(&g.Recovery)
	settings.Nil2Default(
		&g.ShutdownTimeout, settings.Duration(5*time.Second),
	)
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := []gin.HandlerFunc{gin.RequestID()}
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	return gin.New(middlewares...)
}

// Logging contains the console logging settings.
type Logging struct {
	Level string // one of debug, info (default), warn, or error
	Color *bool  // Whether to colorize the console logs

	level slog.Level
}

// ValidateAndNormalize parses the logging level.
func (l *Logging) ValidateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	if err := l.level.UnmarshalText([]byte(l.Level)); err != nil {
		return err
	}
	settings.Nil2Zero(&l.Color)
	return nil
}

// NewHandler creates a tint console handler writing to w.
func (l Logging) NewHandler(w io.Writer) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      l.level,
		TimeFormat: time.DateTime,
		NoColor:    !*l.Color,
	})
}

// Auth contains the bearer tokens verification settings.
type Auth struct {
	// JWTSecret is the HMAC secret of the HS256 tokens. It may be
	// overridden by the LENDWEB_JWT_SECRET environment variable.
	JWTSecret string `yaml:"jwt-secret"`
}

// Validate ensures that a JWT secret is configured.
func (a Auth) Validate() error {
	if a.JWTSecret == "" {
		return errors.New("jwt-secret is empty")
	}
	return nil
}

// NewAuthenticator creates a bearer tokens authenticator using the
// configured secret.
func (a Auth) NewAuthenticator() *auth.Authenticator {
	return auth.New([]byte(a.JWTSecret))
}
