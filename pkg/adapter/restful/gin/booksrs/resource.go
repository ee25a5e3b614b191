// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrs realizes the books resource, allowing the catalog
// browsing and administration REST APIs to be accepted and delegated
// to the books use case.
package booksrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/auth"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-lending/pkg/core/usecase/booksuc"
)

type resource struct {
	books *booksuc.UseCase
}

// Register instantiates a resource adapting the books use case with
// the relevant REST APIs. The catalog may be browsed anonymously, so
// these routes are registered on the public router group:
//  1. GET request to /books with optional available, search, and
//     ordering query params in order to list books,
//  2. GET request to /books/:id in order to fetch one book.
//
// Administration APIs need an authenticated staff member, so they are
// registered on the authed router group:
//  1. POST request to /books in order to create a book,
//  2. PUT request to /books/:id in order to update a book,
//  3. DELETE request to /books/:id in order to delete a book which has
//     no loans.
func Register(public, authed *gin.RouterGroup, books *booksuc.UseCase) {
	rs := &resource{books: books}
	public.GET("books", rs.ListBooks)
	public.GET("books/:id", rs.GetBook)
	authed.POST("books", rs.CreateBook)
	authed.PUT("books/:id", rs.UpdateBook)
	authed.DELETE("books/:id", rs.DeleteBook)
}

func (rs *resource) ListBooks(c *gin.Context) {
	f, ok := rs.DserListBooksReq(c)
	if !ok {
		return
	}
	bb, err := rs.books.List(c, *f)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bb)
}

func (rs *resource) GetBook(c *gin.Context) {
	id, ok := serdser.ParseID(c)
	if !ok {
		return
	}
	b, err := rs.books.Get(c, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rs *resource) CreateBook(c *gin.Context) {
	req, ok := rs.DserBookReq(c)
	if !ok {
		return
	}
	b, err := rs.books.Create(c, auth.User(c), req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (rs *resource) UpdateBook(c *gin.Context) {
	id, ok := serdser.ParseID(c)
	if !ok {
		return
	}
	req, ok := rs.DserBookReq(c)
	if !ok {
		return
	}
	b, err := rs.books.Update(c, auth.User(c), id, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rs *resource) DeleteBook(c *gin.Context) {
	id, ok := serdser.ParseID(c)
	if !ok {
		return
	}
	if err := rs.books.Delete(c, auth.User(c), id); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
