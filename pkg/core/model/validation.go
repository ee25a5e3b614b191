// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"sort"
	"strings"
)

// ValidationError reports malformed input at the field level. Each
// field name is mapped to one or more human readable reasons, matching
// the JSON structure which is reported to the web clients.
type ValidationError struct {
	Fields map[string][]string
}

// Add records the reason for the name field being invalid.
func (ve *ValidationError) Add(name, reason string) {
	if ve.Fields == nil {
		ve.Fields = make(map[string][]string)
	}
	ve.Fields[name] = append(ve.Fields[name], reason)
}

// Has reports if the name field is reported as invalid.
func (ve *ValidationError) Has(name string) bool {
	_, ok := ve.Fields[name]
	return ok
}

// OrNil returns ve as an error if at least one field was added,
// otherwise, it returns a nil error (not a typed nil pointer).
func (ve *ValidationError) OrNil() error {
	if len(ve.Fields) == 0 {
		return nil
	}
	return ve
}

// Error implements the error interface, listing the invalid fields in
// a deterministic order.
func (ve *ValidationError) Error() string {
	names := make([]string, 0, len(ve.Fields))
	for name := range ve.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(
			parts, name+": "+strings.Join(ve.Fields[name], " "),
		)
	}
	return "invalid " + strings.Join(parts, "; ")
}

// FieldError creates a ValidationError with a single invalid field.
func FieldError(name, reason string) *ValidationError {
	ve := &ValidationError{}
	ve.Add(name, reason)
	return ve
}
