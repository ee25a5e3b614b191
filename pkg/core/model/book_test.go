// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidISBN(t *testing.T) {
	cases := map[string]bool{
		"0141439580":        true,
		"9780441013593":     true,
		"":                  false,
		"12345":             false,
		"014143958":         false,
		"01414395801":       false,
		"978044101359":      false,
		"97804410135930":    false,
		"978-0441013593":    false,
		"014143958X":        false,
		" 0141439580":       false,
		"0141439580\n":      false,
		"٠١٤١٤٣٩٥٨٠":        false, // non-ascii digits
		"978044101359three": false,
	}
	for isbn, valid := range cases {
		assert.Equal(t, valid, model.ValidISBN(isbn), "isbn=%q", isbn)
	}
}

func TestValidateBook(t *testing.T) {
	b := &model.Book{
		Title:  "Dune",
		Author: "Frank Herbert",
		ISBN:   "9780441013593",
	}
	assert.NoError(t, model.ValidateBook(b))

	err := model.ValidateBook(&model.Book{Title: "  ", ISBN: "123"})
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError")
	assert.True(t, ve.Has("title"))
	assert.True(t, ve.Has("author"))
	assert.True(t, ve.Has("isbn"))
	assert.False(t, ve.Has("description"))
	assert.Equal(
		t,
		"invalid author: This field may not be blank.; "+
			"isbn: ISBN must be 10 or 13 digits (no hyphens allowed "+
			"here).; title: This field may not be blank.",
		ve.Error(),
	)
}

func TestComputeAvailability(t *testing.T) {
	book, other := uuid.New(), uuid.New()
	now := time.Now()
	returned := now.Add(-time.Hour)
	loans := []model.Loan{
		{BookID: book, ReturnedAt: &returned},
		{BookID: other},
	}
	assert.True(t, model.ComputeAvailability(book, loans))
	assert.True(t, model.ComputeAvailability(book, nil))
	assert.False(t, model.ComputeAvailability(other, loans))

	loans = append(loans, model.Loan{BookID: book})
	assert.False(t, model.ComputeAvailability(book, loans))
}

func TestBookOrdering(t *testing.T) {
	col, desc := model.BookOrdering("").Column()
	assert.Equal(t, "title", col)
	assert.False(t, desc)
	col, desc = model.OrderByCreatedAtDesc.Column()
	assert.Equal(t, "created_at", col)
	assert.True(t, desc)
	assert.True(t, model.OrderByAuthorDesc.Valid())
	assert.False(t, model.BookOrdering("isbn").Valid())
	assert.False(t, model.BookOrdering("-").Valid())
}
