// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-lending/pkg/core/model"
)

type listBooksReq struct {
	Available *bool  `form:"available"`
	Search    string `form:"search"`
	Ordering  string `form:"ordering" binding:"omitempty,oneof=title -title author -author created_at -created_at"`
}

// bookReq carries the client controlled book fields. They are
// validated by the books use case, so all invalid fields are reported
// together with the isbn uniqueness.
type bookReq struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
}

func (rs *resource) DserListBooksReq(
	c *gin.Context,
) (*model.BookFilter, bool) {
	req := &listBooksReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil, false
	}
	f := &model.BookFilter{
		Search:   req.Search,
		Ordering: model.BookOrdering(req.Ordering),
	}
	if req.Available != nil {
		f.AvailableOnly = *req.Available
	}
	return f, true
}

func (rs *resource) DserBookReq(c *gin.Context) (*model.Book, bool) {
	req := &bookReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	return &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
	}, true
}
