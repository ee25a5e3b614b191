// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the classified errors of the core layers.
// An Error wraps a failure and attaches the HTTP status code which
// best describes it, so the transport adapters may report it without
// knowing about the use cases details. Sentinel errors of this package
// identify the failure kinds and are expected to be wrapped by an
// Error instance, hence, both of errors.Is (for the kind) and
// errors.As (for the status code) may be used on the returned errors.
package cerr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/momeni/clean-lending/pkg/core/model"
)

// Failure kinds which are reported by the storage adapters when a
// write conflicts with other rows or with a concurrent transaction.
// Use cases may replace them with more specific kinds since they know
// which rows were written.
var (
	ErrConflict         = errors.New("conflicting with the existing records")
	ErrConcurrentUpdate = errors.New(
		"concurrent update is detected, please try again",
	)
)

// Error is a classified error. Err is the wrapped failure and
// HTTPStatusCode is the status which should be reported for it.
type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

func BadRequest(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

func Authentication(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusUnauthorized}
}

func Authorization(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusForbidden}
}

func NotFound(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusNotFound}
}

func Conflict(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusConflict}
}

// Validation wraps the ve field level validation error as a bad request.
func Validation(ve *model.ValidationError) *Error {
	return BadRequest(ve)
}

// StatusCode returns the HTTP status code of the first *Error in the
// err chain, or 500 if err is not classified.
func StatusCode(err error) int {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.HTTPStatusCode
	}
	return http.StatusInternalServerError
}
