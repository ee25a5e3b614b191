// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram hashes the database role passwords following the
// SCRAM-SHA-256 and SCRAM-SHA-1 stored credentials format, so the
// schema repository can set role passwords without sending them as
// plaintext in ALTER ROLE statements. Use ByName (or the SHA256 and
// SHA1 functions) for the instantiation.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xdg-go/scram"
)

// MinIterations is the least accepted PBKDF2 iterations count.
const MinIterations = 4096

// Mechanism computes SCRAM stored credentials with a fixed underlying
// hash algorithm. It implements the pkg/core/scram.Hasher interface
// using the github.com/xdg-go/scram module.
type Mechanism struct {
	hashGenerator scram.HashGeneratorFcn
	outLen        int // bytes
	name          string
}

// SHA1 returns a SCRAM-SHA-1 mechanism.
func SHA1() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA1,
		outLen:        160 / 8,
		name:          "SCRAM-SHA-1",
	}
}

// SHA256 returns a SCRAM-SHA-256 mechanism.
func SHA256() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA256,
		outLen:        256 / 8,
		name:          "SCRAM-SHA-256",
	}
}

// ByName returns the mechanism of a PostgreSQL authentication method
// name, that is, scram-sha-1 or scram-sha-256.
func ByName(method string) (*Mechanism, error) {
	switch method {
	case "scram-sha-1":
		return SHA1(), nil
	case "scram-sha-256":
		return SHA256(), nil
	default:
		return nil, fmt.Errorf(
			"unsupported authentication method: %q", method,
		)
	}
}

// Name returns the mechanism name, like SCRAM-SHA-256.
func (m *Mechanism) Name() string {
	return m.name
}

// Hash computes the stored credentials of pass with the given salt
// (in base64) and iterations count. An empty salt is replaced with a
// random one. The result has this format:
//
//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
//
// which PostgreSQL accepts as an already hashed role password.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	switch {
	case pass == "":
		return "", errors.New("password must be non-empty")
	case iters < MinIterations:
		return "", fmt.Errorf(
			"iters (%d) is less than %d", iters, MinIterations,
		)
	}
	if salt == "" {
		saltBytes := make([]byte, m.outLen)
		if _, err := rand.Read(saltBytes); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(saltBytes)
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decoding base64 salt: %w", err)
	}
	// username and authzID do not affect the stored credentials
	c, err := m.hashGenerator.NewClient("lendweb", pass, "")
	if err != nil {
		return "", fmt.Errorf("creating SCRAM client: %w", err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(saltBytes),
		Iters: iters,
	})
	return fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name,
		iters, salt,
		base64.StdEncoding.EncodeToString(sc.StoredKey),
		base64.StdEncoding.EncodeToString(sc.ServerKey),
	), nil
}
