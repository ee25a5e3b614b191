// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansrs realizes the loans resource, accepting the borrow
// and return REST APIs and delegating them to the loans use case.
// The loans use case is replaced whenever the settings change, so it
// is obtained from a getter function for each request.
package loansrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/auth"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-lending/pkg/core/usecase/loansuc"
)

type resource struct {
	loans func() *loansuc.UseCase
	now   func() time.Time
}

// Register instantiates a resource adapting the loans use case with
// the relevant REST APIs including:
//  1. POST request to /loans in order to borrow a book,
//  2. GET request to /loans in order to list own loans (or all loans
//     for the staff),
//  3. GET request to /loans/my-active in order to list own active loans,
//  4. GET request to /loans/:id in order to fetch one loan,
//  5. PATCH request to /loans/:id/return in order to return a book.
func Register(r *gin.RouterGroup, loans func() *loansuc.UseCase) {
	rs := &resource{loans: loans, now: time.Now}
	r.POST("loans", rs.Borrow)
	r.GET("loans", rs.ListLoans)
	r.GET("loans/my-active", rs.MyActiveLoans)
	r.GET("loans/:id", rs.GetLoan)
	r.PATCH("loans/:id/return", rs.Return)
}

func (rs *resource) Borrow(c *gin.Context) {
	req, ok := rs.DserBorrowReq(c)
	if !ok {
		return
	}
	l, err := rs.loans().Borrow(c, auth.User(c), req.BookID, req.DueDate)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rs.SerLoan(l))
}

func (rs *resource) Return(c *gin.Context) {
	id, ok := serdser.ParseID(c)
	if !ok {
		return
	}
	l, err := rs.loans().Return(c, auth.User(c), id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rs.SerLoan(l))
}

func (rs *resource) GetLoan(c *gin.Context) {
	id, ok := serdser.ParseID(c)
	if !ok {
		return
	}
	l, err := rs.loans().Get(c, auth.User(c), id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rs.SerLoan(l))
}

func (rs *resource) ListLoans(c *gin.Context) {
	ll, err := rs.loans().List(c, auth.User(c))
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rs.SerLoans(ll))
}

func (rs *resource) MyActiveLoans(c *gin.Context) {
	ll, err := rs.loans().ListActiveForUser(c, auth.User(c))
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rs.SerLoans(ll))
}
