// ./timeconv/civil.go

/*
Package timeconv converts civil timestamps into the Julian Day scale used by
the ephemeris engines and back again.

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
package timeconv

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// Supported calendar range, in proleptic Gregorian years.
const (
	MinYear = -13000
	MaxYear = 17000
)

var (
	// ErrInvalid is returned for dates, clocks or zones that do not exist.
	ErrInvalid = errors.New("invalid civil timestamp")
	// ErrOutOfRange is returned for years outside [MinYear, MaxYear].
	ErrOutOfRange = errors.New("date outside supported ephemeris range")

	// ErrInvalidDate, ErrInvalidClock and ErrUnknownZone tell Parse failures
	// apart. Each one also matches ErrInvalid.
	ErrInvalidDate  = fmt.Errorf("%w: bad date", ErrInvalid)
	ErrInvalidClock = fmt.Errorf("%w: bad time of day", ErrInvalid)
	ErrUnknownZone  = fmt.Errorf("%w: unknown timezone", ErrInvalid)
)

// dateRE accepts a signed year of one to five digits, so BCE dates and
// years past 9999 reach the range check in Validate.
var dateRE = regexp.MustCompile(`^([+-]?\d{1,5})-(\d{2})-(\d{2})$`)

// Civil is a wall-clock timestamp, optionally pinned to an IANA zone.
type Civil struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
	Zone   string // IANA name; empty means naive
}

// Parse builds a Civil from a date, a clock and an optional zone name.
//
// Parameters:
//   - date: "YYYY-MM-DD". The year may carry a sign and up to five digits
//     ("-0500-06-15" is 501 BCE).
//   - clock: "HH:MM" or "HH:MM:SS".
//   - zone: IANA zone name, or empty for a naive value.
//
// Returns:
//   - Civil: The parsed value. Years are not range checked until Validate.
//   - error: ErrInvalidDate, ErrInvalidClock or ErrUnknownZone, each of
//     which also matches ErrInvalid.
func Parse(date, clock, zone string) (Civil, error) {
	year, month, day, err := parseDate(strings.TrimSpace(date))
	if err != nil {
		return Civil{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}
	clock = strings.TrimSpace(clock)
	layout := "15:04:05"
	if strings.Count(clock, ":") == 1 {
		layout = "15:04"
	}
	c, err := time.Parse(layout, clock)
	if err != nil {
		return Civil{}, fmt.Errorf("%w %q: %v", ErrInvalidClock, clock, err)
	}
	if zone != "" {
		if _, err := LoadZone(zone); err != nil {
			return Civil{}, err
		}
	}
	return Civil{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   c.Hour(),
		Minute: c.Minute(),
		Second: c.Second(),
		Zone:   zone,
	}, nil
}

func parseDate(s string) (int, time.Month, int, error) {
	m := dateRE.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, errors.New("want YYYY-MM-DD")
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, 0, err
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month %d", month)
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return 0, 0, 0, fmt.Errorf("day %d does not exist in %04d-%02d", day, year, month)
	}
	return year, time.Month(month), day, nil
}

// FromTime captures t's wall clock and location.
func FromTime(t time.Time) Civil {
	zone := t.Location().String()
	if zone == "UTC" {
		zone = ""
	}
	return Civil{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Zone:   zone,
	}
}

// Validate checks field ranges and the supported year window.
func (c Civil) Validate() error {
	if c.Year < MinYear || c.Year > MaxYear {
		return fmt.Errorf("%w: year %d is outside %d to %d", ErrOutOfRange, c.Year, MinYear, MaxYear)
	}
	if c.Month < time.January || c.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, c.Month)
	}
	if c.Day < 1 || c.Day > daysIn(c.Year, c.Month) {
		return fmt.Errorf("%w: day %d does not exist in %04d-%02d", ErrInvalidDate, c.Day, c.Year, c.Month)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
		return fmt.Errorf("%w: %02d:%02d:%02d", ErrInvalidClock, c.Hour, c.Minute, c.Second)
	}
	return nil
}

// In resolves the wall clock to an instant. A naive value is localised to
// zone (UTC when zone is empty); a zoned value keeps its own zone and is then
// viewed from zone.
func (c Civil) In(zone string) (time.Time, error) {
	if err := c.Validate(); err != nil {
		return time.Time{}, err
	}
	own := c.Zone
	if own == "" {
		own = zone
	}
	loc := time.UTC
	if own != "" {
		l, err := LoadZone(own)
		if err != nil {
			return time.Time{}, err
		}
		loc = l
	}
	t := time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, 0, loc)
	if zone != "" && zone != own {
		l, err := LoadZone(zone)
		if err != nil {
			return time.Time{}, err
		}
		t = t.In(l)
	}
	return t, nil
}

func (c Civil) String() string {
	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
	if c.Zone != "" {
		s += " " + c.Zone
	}
	return s
}

// LoadZone wraps time.LoadLocation with ErrUnknownZone.
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownZone, name)
	}
	return loc, nil
}

func daysIn(year int, m time.Month) int {
	switch m {
	case time.February:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}
