// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import "errors"

// Failure kinds of the books and loans use cases. Their messages are
// reported to end-users as the response detail.
var (
	ErrOverdueBlock = errors.New(
		"you have overdue books; return them before borrowing more",
	)
	ErrLoanLimitExceeded = errors.New("loan limit reached")
	ErrInvalidDueDate    = errors.New("due date must be in the future")
	ErrBookUnavailable   = errors.New("book is not available")
	ErrAlreadyReturned   = errors.New("loan already returned")
	ErrNotAuthorized     = errors.New(
		"you do not have permission to perform this action",
	)
	ErrNotFound = errors.New("not found")

	// ErrBookReferenced indicates that a book may not be deleted
	// because some loans (active or returned) reference it.
	ErrBookReferenced = errors.New("book is referenced by loans")

	// ErrUserReferenced indicates that a user may not be deleted
	// because some loans reference it.
	ErrUserReferenced = errors.New("user is referenced by loans")

	// ErrUsernameTaken indicates a duplicate username.
	ErrUsernameTaken = errors.New("username is already taken")
)
