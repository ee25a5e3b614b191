// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the request deserialization and response
// serialization helpers which are shared by the resource packages.
// Field level errors are reported as a json object mapping each field
// name to a list of reasons and other errors as a {"detail": ...}
// object.
package serdser

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/model"
)

// Bind decodes the request into req using the b binding and validates
// it. A failure is reported to the client and false is returned.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return report(c, c.ShouldBindWith(req, b))
}

func report(c *gin.Context, err error) bool {
	var ive *validator.InvalidValidationError
	var ves validator.ValidationErrors
	switch {
	case err == nil:
		return true
	case errors.As(err, &ive):
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": ive.Error(),
		})
	case errors.As(err, &ves):
		var nameToErrs map[string][]string
		for _, ferr := range ves {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

// AddErr appends msgs to the name field reasons, allocating errs
// if it is nil.
func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// ParseID parses the id path parameter as a uuid. A malformed id is
// reported as a missing resource.
func ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return uuid.Nil, false
	}
	return id, true
}

// SerErr reports err to the client. Validation errors are reported
// with their field map, classified errors with their status code, and
// other errors as internal errors (after being logged).
func SerErr(c *gin.Context, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ve.Fields)
		return
	}
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
		})
		return
	}
	log.Error(c, "unexpected error", log.Err("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": "internal server error",
	})
}
