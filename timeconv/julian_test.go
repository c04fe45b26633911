// ./timeconv/julian_test.go

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
package timeconv

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJulianDayReferenceEpochs(t *testing.T) {
	tests := []struct {
		name string
		c    Civil
		want float64
	}{
		{name: "J2000", c: Civil{Year: 2000, Month: time.January, Day: 1, Hour: 12}, want: 2451545.0},
		{name: "sputnik", c: Civil{Year: 1957, Month: time.October, Day: 4, Hour: 19, Minute: 26, Second: 24}, want: 2436116.31},
		{name: "gregorian reform", c: Civil{Year: 1582, Month: time.October, Day: 15}, want: 2299160.5},
		{name: "year zero", c: Civil{Year: 0, Month: time.January, Day: 1}, want: 1721059.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jd, err := ToJulianDay(tt.c, "")
			require.NoError(t, err)
			assert.InDelta(t, tt.want, float64(jd), 1e-6)
		})
	}
}

func TestToJulianDayLocalisesNaiveTimestamp(t *testing.T) {
	c := Civil{Year: 1991, Month: time.August, Day: 13, Hour: 13, Minute: 31}
	local, err := ToJulianDay(c, "Asia/Kolkata")
	require.NoError(t, err)
	utc, err := ToJulianDay(Civil{Year: 1991, Month: time.August, Day: 13, Hour: 8, Minute: 1}, "")
	require.NoError(t, err)
	assert.InDelta(t, float64(utc), float64(local), 1e-9)
}

func TestToJulianDayKeepsOwnZone(t *testing.T) {
	c := Civil{Year: 2020, Month: time.June, Day: 1, Hour: 9, Zone: "America/New_York"}
	a, err := ToJulianDay(c, "Europe/Berlin")
	require.NoError(t, err)
	b, err := ToJulianDay(Civil{Year: 2020, Month: time.June, Day: 1, Hour: 13}, "")
	require.NoError(t, err)
	assert.InDelta(t, float64(b), float64(a), 1e-9)
}

func TestRoundTripWithinOneSecond(t *testing.T) {
	zones := []string{"", "UTC", "Asia/Kolkata", "America/Los_Angeles", "Australia/Adelaide"}
	stamps := []Civil{
		{Year: 1991, Month: time.August, Day: 13, Hour: 13, Minute: 31},
		{Year: 1969, Month: time.July, Day: 20, Hour: 20, Minute: 17, Second: 40},
		{Year: 2024, Month: time.February, Day: 29, Hour: 23, Minute: 59, Second: 59},
		{Year: 1800, Month: time.March, Day: 1},
		{Year: -500, Month: time.June, Day: 15, Hour: 6, Minute: 30},
	}
	for _, zone := range zones {
		for _, c := range stamps {
			want, err := c.In(zone)
			require.NoError(t, err)
			jd, err := ToJulianDay(c, zone)
			require.NoError(t, err)
			got := FromJulianDay(jd)
			diff := math.Abs(got.Sub(want.UTC()).Seconds())
			assert.LessOrEqual(t, diff, 1.0, "%s in %q: got %s want %s", c, zone, got, want.UTC())
		}
	}
}

func TestCivilFromJulianDay(t *testing.T) {
	got, err := CivilFromJulianDay(2451545.0, "Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, 17, got.Hour())
	assert.Equal(t, 30, got.Minute())

	_, err = CivilFromJulianDay(2451545.0, "Mars/Olympus_Mons")
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestParse(t *testing.T) {
	c, err := Parse("1991-08-13", "13:31", "Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, Civil{Year: 1991, Month: time.August, Day: 13, Hour: 13, Minute: 31, Zone: "Asia/Kolkata"}, c)

	c, err = Parse("2001-01-02", "03:04:05", "")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Second)
}

func TestParseRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name              string
		date, clock, zone string
		want              error
	}{
		{name: "non-existent day", date: "2023-02-30", clock: "10:00", want: ErrInvalidDate},
		{name: "malformed date", date: "13/08/1991", clock: "10:00", want: ErrInvalidDate},
		{name: "six digit year", date: "123456-01-01", clock: "10:00", want: ErrInvalidDate},
		{name: "month 13", date: "1991-13-01", clock: "10:00", want: ErrInvalidDate},
		{name: "malformed clock", date: "1991-08-13", clock: "25:61", want: ErrInvalidClock},
		{name: "unknown zone", date: "1991-08-13", clock: "10:00", zone: "Nowhere/City", want: ErrUnknownZone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.date, tt.clock, tt.zone)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseSignedAndWideYears(t *testing.T) {
	c, err := Parse("-0500-06-15", "06:30", "")
	require.NoError(t, err)
	assert.Equal(t, Civil{Year: -500, Month: time.June, Day: 15, Hour: 6, Minute: 30}, c)
	assert.NoError(t, c.Validate())

	// 4 BCE is a leap year in the proleptic Gregorian calendar.
	c, err = Parse("-0004-02-29", "00:00", "")
	require.NoError(t, err)
	assert.Equal(t, -4, c.Year)

	c, err = Parse("+12000-03-01", "12:00", "")
	require.NoError(t, err)
	assert.Equal(t, 12000, c.Year)
	assert.NoError(t, c.Validate())

	c, err = Parse("17001-01-01", "12:00", "")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Validate(), ErrOutOfRange)

	c, err = Parse("-13001-01-01", "12:00", "")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Validate(), ErrOutOfRange)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Civil{Year: 17001, Month: time.January, Day: 1}.Validate(), ErrOutOfRange)
	assert.ErrorIs(t, Civil{Year: -13001, Month: time.January, Day: 1}.Validate(), ErrOutOfRange)
	assert.ErrorIs(t, Civil{Year: 2023, Month: time.February, Day: 29}.Validate(), ErrInvalidDate)
	assert.NoError(t, Civil{Year: 2024, Month: time.February, Day: 29}.Validate())
	assert.ErrorIs(t, Civil{Year: 2024, Month: 13, Day: 1}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, Civil{Year: 2024, Month: 1, Day: 1, Hour: 24}.Validate(), ErrInvalidClock)

	_, err := ToJulianDay(Civil{Year: 20000, Month: time.January, Day: 1}, "")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDeltaT(t *testing.T) {
	// published values: 2000.0 ≈ 63.8 s, 1900.0 ≈ -2.8 s, 1950.0 ≈ 29.1 s
	assert.InDelta(t, 63.8, DeltaT(2451545.0), 0.5)
	assert.InDelta(t, -2.8, DeltaT(2415020.5), 0.5)
	assert.InDelta(t, 29.1, DeltaT(2433282.5), 0.5)

	jd := JulianDay(2451545.0)
	assert.InDelta(t, 63.8/86400, jd.TT()-float64(jd), 1e-5)
	assert.Greater(t, DeltaT(-1e6), 1000.0)
}

func TestDeltaTBeforeTelescope(t *testing.T) {
	// Meeus (10.1) and (10.2): 2177 + 497t + 44.1t² and 102 + 102t + 25.3t²,
	// t in centuries from 2000.
	year1000 := JulianDay(J2000 - 1000*365.2425)
	assert.InDelta(t, 102-1020+2530, DeltaT(year1000), 1)
	year0 := JulianDay(J2000 - 2000*365.2425)
	assert.InDelta(t, 2177-9940+17640, DeltaT(year0), 1)
}

func TestFromJulianDayAcrossGregorianReform(t *testing.T) {
	assert.Equal(t, time.Date(1582, time.October, 15, 0, 0, 0, 0, time.UTC), FromJulianDay(2299160.5))
	// The day before is 1582-10-14 in the proleptic Gregorian calendar, not
	// the Julian calendar's 10-04.
	assert.Equal(t, time.Date(1582, time.October, 14, 0, 0, 0, 0, time.UTC), FromJulianDay(2299159.5))
	assert.Equal(t, time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC), FromJulianDay(J2000))
}
