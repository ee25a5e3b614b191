// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(
		buf, &slog.HandlerOptions{Level: level},
	)))
	t.Cleanup(func() { slog.SetDefault(old) })
	return buf
}

func TestScopedAttrs(t *testing.T) {
	buf := capture(t, slog.LevelInfo)
	id := uuid.New()
	ctx := log.With(context.Background(), slog.String("request_id", "r1"))
	ctx = log.With(ctx, log.Stringer("user", id))
	log.Info(ctx, "borrowed", log.Err("error", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "borrowed", rec["msg"])
	assert.Equal(t, "r1", rec["request_id"])
	assert.Equal(t, id.String(), rec["user"])
	assert.Equal(t, "no-error", rec["error"])
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, slog.LevelWarn)
	ctx := context.Background()
	log.Debug(ctx, "hidden")
	log.Info(ctx, "hidden")
	assert.Zero(t, buf.Len())
	log.Error(ctx, "shown", log.Err("error", errors.New("boom")))
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Equal(t, ctx, log.With(ctx))
}
