// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a major.minor.patch semantic version. The configuration
// file format and the database schema are versioned independently,
// so a binary can refuse the files and schemas which it does not know.
type SemVer [3]uint

// ParseSemVer parses s as one to three dot-separated non-negative
// numbers. Missing minor and patch components are taken as zero.
func ParseSemVer(s string) (SemVer, error) {
	var sv SemVer
	p := strings.Split(s, ".")
	if len(p) > 3 {
		return sv, fmt.Errorf("%q has too many components", s)
	}
	for i, c := range p {
		n, err := strconv.ParseUint(c, 10, 32)
		if err != nil {
			return sv, fmt.Errorf("%q component is not numeric", c)
		}
		sv[i] = uint(n)
	}
	return sv, nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseSemVer.
// The sv is left unchanged in case of errors.
func (sv *SemVer) UnmarshalText(text []byte) error {
	v, err := ParseSemVer(string(text))
	if err != nil {
		return err
	}
	*sv = v
	return nil
}

// MarshalText implements encoding.TextMarshaler interface.
func (sv SemVer) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

// Supports reports if a binary which implements the sv version can
// read data having the v version. Major versions must be equal and
// v may not have a newer minor version.
func (sv SemVer) Supports(v SemVer) bool {
	return sv[0] == v[0] && sv[1] >= v[1]
}

func (sv SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", sv[0], sv[1], sv[2])
}
