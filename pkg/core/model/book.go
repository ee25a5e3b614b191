// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// By the way, it is acceptable to annotate structs in this package with
// multiple frameworks dependent tags (e.g., as required by ORM
// libraries) since adding more tags does not complicate definition of
// a struct, but can prevent unnecessary structs duplication.
package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// isbnPattern accepts ISBN-10 and ISBN-13 values without hyphens.
var isbnPattern = regexp.MustCompile(`^(?:\d{10}|\d{13})$`)

// Book models a book of the library catalog. Books are written by the
// staff members and referenced (not owned) by loans.
//
// The availability of a book is not stored as a field. It is computed
// from the set of loans which reference the book whenever it is read,
// so it can never drift from the loan records. The IsAvailable field
// carries that computed value from a repository to its callers and
// must not be persisted.
type Book struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `json:"isbn"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	IsAvailable bool  `json:"is_available"` // derived, read-only
	CurrentLoan *Loan `json:"-"`            // derived, the active loan
}

// ValidateBook checks the client controlled fields of a book. Title and
// author must be non-empty (after trimming spaces) and the isbn must
// consist of exactly 10 or 13 decimal digits. The isbn uniqueness is
// not checked here because it depends on other persisted books; the
// books use case checks it in the same transaction which writes a book.
//
// All invalid fields are reported together in a *ValidationError.
func ValidateBook(b *Book) error {
	var ve ValidationError
	if strings.TrimSpace(b.Title) == "" {
		ve.Add("title", "This field may not be blank.")
	}
	if strings.TrimSpace(b.Author) == "" {
		ve.Add("author", "This field may not be blank.")
	}
	if !ValidISBN(b.ISBN) {
		ve.Add(
			"isbn",
			"ISBN must be 10 or 13 digits (no hyphens allowed here).",
		)
	}
	return ve.OrNil()
}

// ValidISBN reports if isbn consists of exactly 10 or 13 digits.
func ValidISBN(isbn string) bool {
	return isbnPattern.MatchString(isbn)
}

// ComputeAvailability reports whether bookID is available considering
// the given loans. A book is available iff none of its loans is active.
// Loans of other books are ignored, so any superset of the book loans
// may be passed.
func ComputeAvailability(bookID uuid.UUID, loans []Loan) bool {
	for i := range loans {
		if loans[i].BookID == bookID && loans[i].IsActive() {
			return false
		}
	}
	return true
}

// BookOrdering is a sort key for listing books. A leading minus sign
// indicates the descending direction.
type BookOrdering string

// Supported book orderings. The zero value is treated as OrderByTitle.
const (
	OrderByTitle         BookOrdering = "title"
	OrderByTitleDesc     BookOrdering = "-title"
	OrderByAuthor        BookOrdering = "author"
	OrderByAuthorDesc    BookOrdering = "-author"
	OrderByCreatedAt     BookOrdering = "created_at"
	OrderByCreatedAtDesc BookOrdering = "-created_at"
)

// Valid reports if o is one of the supported orderings or empty.
func (o BookOrdering) Valid() bool {
	switch o {
	case "", OrderByTitle, OrderByTitleDesc, OrderByAuthor,
		OrderByAuthorDesc, OrderByCreatedAt, OrderByCreatedAtDesc:
		return true
	default:
		return false
	}
}

// Column returns the column name and direction of the o ordering.
func (o BookOrdering) Column() (column string, desc bool) {
	if o == "" {
		return string(OrderByTitle), false
	}
	if s := string(o); s[0] == '-' {
		return s[1:], true
	}
	return string(o), false
}

// BookFilter narrows down a books listing.
type BookFilter struct {
	AvailableOnly bool         // exclude books having an active loan
	Search        string       // case-insensitive title/author substring
	Ordering      BookOrdering // sort key, title by default
}
