// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-lending/pkg/core/model"
)

type rawBorrowReq struct {
	Book    string     `json:"book" binding:"required,uuid"`
	DueDate *time.Time `json:"due_date" binding:"required"`
}

type borrowReq struct {
	BookID  uuid.UUID
	DueDate time.Time
}

func (rs *resource) DserBorrowReq(c *gin.Context) (*borrowReq, bool) {
	req := &rawBorrowReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	// validated by the uuid tag
	id := uuid.MustParse(req.Book)
	return &borrowReq{BookID: id, DueDate: *req.DueDate}, true
}

// LoanResp is the wire format of a loan. The book is nested and the
// user is reported by its username.
type LoanResp struct {
	ID         uuid.UUID   `json:"id"`
	Book       *model.Book `json:"book"`
	User       string      `json:"user"`
	BorrowedAt time.Time   `json:"borrowed_at"`
	DueDate    time.Time   `json:"due_date"`
	ReturnedAt *time.Time  `json:"returned_at"`
	IsActive   bool        `json:"is_active"`
	IsOverdue  bool        `json:"is_overdue"`
}

func (rs *resource) SerLoan(l *model.Loan) *LoanResp {
	resp := &LoanResp{
		ID:         l.ID,
		Book:       l.Book,
		User:       l.UserID.String(),
		BorrowedAt: l.BorrowedAt,
		DueDate:    l.DueDate,
		ReturnedAt: l.ReturnedAt,
		IsActive:   l.IsActive(),
		IsOverdue:  l.IsOverdue(rs.now()),
	}
	if l.User != nil {
		resp.User = l.User.Username
	}
	if resp.Book == nil {
		resp.Book = &model.Book{ID: l.BookID}
	}
	return resp
}

func (rs *resource) SerLoans(ll []model.Loan) []*LoanResp {
	resps := make([]*LoanResp, 0, len(ll))
	for i := range ll {
		resps = append(resps, rs.SerLoan(&ll[i]))
	}
	return resps
}
