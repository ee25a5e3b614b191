// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram exports the expected interface of a Salted Challenge
// Response Authentication Mechanism (SCRAM) hasher. The dbinituc use
// case renews the database role passwords through the schema
// repository which needs to hash them, so plaintext passwords never
// appear in the DDL statements (and their possible logs).
//
// Only the stored credentials generation is needed. The client and
// server conversations are handled by PostgreSQL and its driver, so
// they are not modeled here. See pkg/adapter/hash/scram for the
// implementation.
package scram

// Hasher computes the SCRAM stored credentials of a password for a
// fixed underlying hash function (e.g., SHA1 or SHA256). Username and
// authorization identifier do not affect the stored credentials and
// so they are not asked.
type Hasher interface {
	// Hash computes the stored credentials of pass using the base64
	// encoded salt (or a random salt if it is empty) and iters PBKDF2
	// iterations which must be at least 4096. RFC 7677 recommends
	// 15000 or more. The result follows this format:
	//
	//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
	Hash(pass, salt string, iters int) (string, error)
}
