// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"context"
	"log/slog"
)

type scopeKey struct{}

// With returns a child of ctx which carries attrs in addition to the
// attributes of ctx itself. They are logged with every record which
// uses the returned context.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	parent := scoped(ctx)
	all := make([]slog.Attr, 0, len(parent)+len(attrs))
	all = append(all, parent...)
	all = append(all, attrs...)
	return context.WithValue(ctx, scopeKey{}, all)
}

func scoped(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(scopeKey{}).([]slog.Attr)
	return attrs
}
