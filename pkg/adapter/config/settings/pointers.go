// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"os"
	"strings"
)

// Nil2Zero makes the (*t) pointer to point to a newly allocated zero
// value of T type, if it is nil. Otherwise, it performs no action.
func Nil2Zero[T any](t **T) {
	var zero T
	Nil2Default(t, zero)
}

// Nil2Default makes the (*t) pointer to point to a newly allocated
// copy of the def value, if it is nil. Otherwise, it performs no action.
func Nil2Default[T any](t **T, def T) {
	if (*t) != nil {
		return
	}
	(*t) = &def
}

// OverwriteUnconditionally makes the (*dst) pointer nil if src is nil,
// otherwise, it points (*dst) to a newly allocated copy of (*src).
// Therefore, dst and src never share the same T instance.
func OverwriteUnconditionally[T any](dst **T, src *T) {
	if src == nil {
		(*dst) = nil
		return
	}
	t := *src
	(*dst) = &t
}

// OverwriteFromEnv replaces the (*dst) string with the value of the
// `key` environment variable, if it is set and is not blank. It
// reports if (*dst) was replaced.
func OverwriteFromEnv(dst *string, key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return false
	}
	*dst = v
	return true
}
