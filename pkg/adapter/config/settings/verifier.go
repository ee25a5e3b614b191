// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// OutOfRangeError indicates that the Field setting took a Value which
// is not between its Min and Max boundaries. A nil boundary is not
// checked at all.
type OutOfRangeError[T cmp.Ordered] struct {
	Field    string
	Value    T
	Min, Max *T
}

// Error implements the error interface, naming the violated boundary.
func (e *OutOfRangeError[T]) Error() string {
	if e.Min != nil && e.Value < *e.Min {
		return fmt.Sprintf(
			"%s: %v is less than min (%v)", e.Field, e.Value, *e.Min,
		)
	}
	return fmt.Sprintf(
		"%s: %v is greater than max (%v)", e.Field, e.Value, *e.Max,
	)
}

// CheckRange returns an *OutOfRangeError if value is non-nil and it is
// out of the [minb, maxb] range. The value is not modified. Settings
// which are taken from end-users are checked this way, so a wrong
// value is rejected as a whole.
func CheckRange[T cmp.Ordered](
	field string, value, minb, maxb *T,
) error {
	if value == nil {
		return nil
	}
	v := *value
	if (minb != nil && v < *minb) || (maxb != nil && v > *maxb) {
		return &OutOfRangeError[T]{
			Field: field, Value: v, Min: minb, Max: maxb,
		}
	}
	return nil
}

// Clamp works like CheckRange, but it also replaces an out of range
// value with its nearest boundary value. It is used for settings which
// are loaded from the database and so may not be rejected anymore.
// The returned error describes the original value.
func Clamp[T cmp.Ordered](field string, value *T, minb, maxb *T) error {
	err := CheckRange(field, value, minb, maxb)
	if err == nil {
		return nil
	}
	if minb != nil && *value < *minb {
		*value = *minb
	} else {
		*value = *maxb
	}
	return err
}
