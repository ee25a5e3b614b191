// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrp

import (
	"testing"

	"github.com/momeni/clean-lending/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBooksSQL(t *testing.T) {
	sql, args, err := selectBooks().Where(
		availableOnly(),
	).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `LEFT JOIN "loans" AS "l"`)
	assert.Contains(t, sql, `"l"."returned_at" IS NULL`)
	assert.Empty(t, args)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%tolkien%", likePattern("tolkien"))
	assert.Equal(t, `%50\% off\_now%`, likePattern("50% off_now"))
}

func TestRowModel(t *testing.T) {
	r := gBookRow{Title: "Dune", Author: "Herbert", ISBN: "9780441013593"}
	b := r.Model()
	assert.True(t, b.IsAvailable)
	assert.Nil(t, b.CurrentLoan)
	assert.True(t, model.ValidISBN(b.ISBN))
}
