// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine instantiation and provides
// the middlewares which are shared by all resources. Handlers pass the
// *gin.Context as a context.Context to the use cases, so the engine
// falls back to the request context for values and cancellation.
package gin

import (
	"log/slog"

	ginslog "github.com/FabienMht/ginslog/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/log"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// RequestIDHeader is the response header carrying the request id which
// is logged with all records of that request.
const RequestIDHeader = "X-Request-Id"

func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.ContextWithFallback = true
	e.Use(middlewares...)
	return e
}

// RequestID returns a middleware which assigns a request id to each
// request (unless the client has sent one) and attaches it to the
// request context, so all records which are logged by the log package
// while handling that request carry the request_id attribute.
func RequestID() HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		ctx := log.With(c.Request.Context(), slog.String("request_id", rid))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logger returns the access log middleware which writes one record
// per request using the default slog logger. It must be created after
// the default logger is configured.
func Logger() HandlerFunc {
	return ginslog.New(slog.Default())
}

func Recovery() HandlerFunc {
	return gin.Recovery()
}
