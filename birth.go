// ./birth.go

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
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/mshafiee/humandesign/timeconv"
)

// Location is a geographic coordinate in degrees. Charts are geocentric, so
// it only travels with the result.
type Location struct {
	Latitude  float64 `json:"latitude" csv:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" csv:"longitude" validate:"gte=-180,lte=180"`
}

// BirthData is the input of a calculation.
type BirthData struct {
	Date     string `json:"date" csv:"date" validate:"required"`          // YYYY-MM-DD, signed year allowed
	Time     string `json:"time" csv:"time" validate:"required"`          // HH:MM or HH:MM:SS
	Timezone string `json:"timezone" csv:"timezone" validate:"omitempty"` // IANA name; empty is UTC
	Location
}

// BirthDataFromTime builds BirthData from an instant. Zones without an IANA
// name are normalised to UTC.
func BirthDataFromTime(t time.Time, lat, lon float64) BirthData {
	zone := t.Location().String()
	if _, err := time.LoadLocation(zone); err != nil || zone == "Local" {
		t, zone = t.UTC(), ""
	}
	if zone == "UTC" {
		zone = ""
	}
	return BirthData{
		Date:     t.Format("2006-01-02"),
		Time:     t.Format("15:04:05"),
		Timezone: zone,
		Location: Location{Latitude: lat, Longitude: lon},
	}
}

type validatorSvc struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

func getValidator() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return strings.ToLower(fld.Name)
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &validatorSvc{v: v, trans: trans}
	})
	return vSvc
}

// Validate checks coordinates and parses the timestamp. It returns the
// parsed civil value so callers do not parse twice.
func (b BirthData) Validate() (timeconv.Civil, error) {
	if err := validateFields(b); err != nil {
		return timeconv.Civil{}, err
	}
	c, err := timeconv.Parse(b.Date, b.Time, b.Timezone)
	if err != nil {
		return timeconv.Civil{}, invalid(timestampField(err), b.Date+" "+b.Time, err)
	}
	if err := c.Validate(); err != nil {
		return timeconv.Civil{}, invalid(timestampField(err), b.Date, err)
	}
	return c, nil
}

func validateFields(b BirthData) error {
	svc := getValidator()
	err := svc.v.Struct(b)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("birth_data", nil, err)
	}
	fe := verrs[0]
	return &ValidationError{
		Field: fe.Field(),
		Value: fe.Value(),
		Msg:   fieldMessage(fe, svc.trans),
	}
}

// fieldMessage keeps the familiar coordinate wording and falls back to the
// validator's English translation for everything else.
func fieldMessage(fe validator.FieldError, trans ut.Translator) string {
	switch fe.Field() {
	case "latitude":
		return fmt.Sprintf("Latitude %v must be between -90 and 90", fe.Value())
	case "longitude":
		return fmt.Sprintf("Longitude %v must be between -180 and 180", fe.Value())
	}
	return fe.Translate(trans)
}

// timestampField names the BirthData field a timeconv.Parse error refers to.
func timestampField(err error) string {
	switch {
	case errors.Is(err, timeconv.ErrUnknownZone):
		return "timezone"
	case errors.Is(err, timeconv.ErrInvalidClock):
		return "time"
	}
	return "date"
}
