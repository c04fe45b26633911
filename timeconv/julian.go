// ./timeconv/julian.go
package timeconv

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

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// JulianDay is a day count on the UT scale, with days starting at noon.
type JulianDay float64

// J2000 is 2000-01-01 12:00 TT, the reference epoch of the engines.
const J2000 = 2451545.0

const secondsPerDay = 86400.0

// gregorianStart is 1582-10-15 00:00, the first day of the Gregorian reform.
const gregorianStart = 2299160.5

// ToJulianDay resolves c and returns the Julian Day of that instant.
//
// Parameters:
//   - c: Wall-clock timestamp. A zoned value keeps its own zone.
//   - zone: IANA zone used to localise a naive c, UTC when empty.
//
// Returns:
//   - JulianDay: The proleptic Gregorian Julian Day on the UT scale.
//   - error: ErrOutOfRange, or an error matching ErrInvalid.
func ToJulianDay(c Civil, zone string) (JulianDay, error) {
	t, err := c.In(zone)
	if err != nil {
		return 0, err
	}
	return FromTime(t.UTC()).julianDayUTC(), nil
}

// TimeToJulianDay converts an instant directly. It does not range-check.
func TimeToJulianDay(t time.Time) JulianDay {
	return JulianDay(julian.TimeToJD(t.UTC()))
}

// julianDayUTC treats the civil fields as UTC.
func (c Civil) julianDayUTC() JulianDay {
	hours := float64(c.Hour) + float64(c.Minute)/60 + float64(c.Second)/3600
	return JulianDay(julian.CalendarGregorianToJD(c.Year, int(c.Month), float64(c.Day)+hours/24))
}

// FromJulianDay is the inverse of ToJulianDay, rounded to the second, in UTC.
func FromJulianDay(jd JulianDay) time.Time {
	if jd >= gregorianStart {
		return julian.JDToTime(float64(jd)).Round(time.Second)
	}
	// julian.JDToTime reads older days as Julian calendar dates; time.Time
	// is proleptic Gregorian throughout.
	z := math.Floor(float64(jd) + 0.5)
	secs := math.Round((float64(jd) + 0.5 - z) * secondsPerDay)
	if secs >= secondsPerDay {
		z++
		secs -= secondsPerDay
	}
	y, m, d := civilDate(int64(z))
	return time.Date(y, m, d, 0, 0, int(secs), 0, time.UTC)
}

// CivilFromJulianDay converts jd to a wall clock in zone (UTC when empty).
func CivilFromJulianDay(jd JulianDay, zone string) (time.Time, error) {
	t := FromJulianDay(jd)
	if zone == "" {
		return t, nil
	}
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// AddDays shifts jd by a fractional number of days.
func (jd JulianDay) AddDays(days float64) JulianDay {
	return jd + JulianDay(days)
}

// TT returns the Julian Ephemeris Day (terrestrial time) for jd.
func (jd JulianDay) TT() float64 {
	return float64(jd) + DeltaT(jd)/secondsPerDay
}

// Centuries returns Julian centuries of TT since J2000.
func (jd JulianDay) Centuries() float64 {
	return (jd.TT() - J2000) / 36525
}

// civilDate is the proleptic Gregorian date of a Julian Day Number.
func civilDate(jdn int64) (int, time.Month, int) {
	a := jdn + 32044
	b := floorDiv(4*a+3, 146097)
	c := a - floorDiv(146097*b, 4)
	d := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*d, 4)
	m := floorDiv(5*e+2, 153)

	day := e - floorDiv(153*m+2, 5) + 1
	month := m + 3 - 12*floorDiv(m, 10)
	year := 100*b + d - 4800 + floorDiv(m, 10)
	return int(year), time.Month(month), int(day)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
