// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	ggin "github.com/gin-gonic/gin"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })
	return buf
}

func serve(e *gin.Engine, rid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if rid != "" {
		req.Header.Set(gin.RequestIDHeader, rid)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	buf := captureLogs(t)
	e := gin.New(gin.RequestID())
	e.GET("/ping", func(c *ggin.Context) {
		log.Info(c, "pinged")
		c.Status(http.StatusNoContent)
	})

	w := serve(e, "req-42")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(gin.RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)

	buf.Reset()
	w = serve(e, "")
	rid := w.Header().Get(gin.RequestIDHeader)
	assert.NotEmpty(t, rid)
	assert.Contains(t, buf.String(), rid)
}

func TestAccessLogger(t *testing.T) {
	buf := captureLogs(t)
	e := gin.New(gin.RequestID(), gin.Logger())
	e.GET("/ping", func(c *ggin.Context) {
		c.Status(http.StatusNoContent)
	})

	serve(e, "")
	assert.Contains(t, buf.String(), "/ping")
}
