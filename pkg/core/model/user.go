// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"log/slog"

	"github.com/google/uuid"
)

// User is the authenticated identity which is passed to use cases by
// the identity collaborator (see the restful auth middleware). The core
// trusts these fields as given.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	IsStaff  bool      `json:"is_staff"`
}

// CanActFor reports if u may act on behalf of the owner user, that is,
// if u is the owner itself or a staff member.
func (u *User) CanActFor(owner uuid.UUID) bool {
	return u.IsStaff || u.ID == owner
}

// LogValue implements slog.LogValuer so users may be logged as a group.
func (u *User) LogValue() slog.Value {
	if u == nil {
		return slog.StringValue("anonymous")
	}
	return slog.GroupValue(
		slog.String("id", u.ID.String()),
		slog.String("username", u.Username),
		slog.Bool("staff", u.IsStaff),
	)
}
