// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings provides the building blocks which are shared by
// the versioned configuration packages (like cfg1). It contains the
// optional (pointer) fields helpers, the boundary values verifier, a
// human-readable Duration type, and the json codec of the mutable
// settings which are stored in the database.
package settings

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Encode serializes the `s` mutable settings as json, so they may be
// stored by the settings repository. This serialization decouples the
// configuration file format from the database schema format.
func Encode[S any](s *S) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding mutable settings: %w", err)
	}
	return b, nil
}

// Decode deserializes the mutable settings which were stored by the
// Encode function.
func Decode[S any](data []byte) (*S, error) {
	s := new(S)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decoding mutable settings: %w", err)
	}
	return s, nil
}
