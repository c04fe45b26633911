// ./errors.go

/*
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/
package humandesign

import (
	"errors"

	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/mshafiee/humandesign/timeconv"
)

// ErrValidation matches every input and mandatory-body failure. It is the
// same value as ephemeris.ErrValidation.
var ErrValidation = ephemeris.ErrValidation

// ValidationError names the field or body that failed.
type ValidationError = ephemeris.ValidationError

// Common errors re-exported from the lower packages.
var (
	ErrInvalidTimestamp = timeconv.ErrInvalid
	ErrOutOfRange       = timeconv.ErrOutOfRange
	ErrOutsideRange     = ephemeris.ErrOutsideRange
)

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func invalid(field string, value any, err error) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}
