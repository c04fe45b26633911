// ./ephemeris/ayanamsa.go
package ephemeris

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

import "github.com/soniakeys/meeus/v3/base"

// lahiriJ2000 is the Lahiri (Chitrapaksha) ayanamsa at J2000, in degrees.
const lahiriJ2000 = 23.857092

// Ayanamsa returns the Lahiri ayanamsa: the J2000 value carried along by
// general precession in longitude.
//
// Parameters:
//   - jde: Julian Ephemeris Date.
//
// Returns:
//   - float64: The ayanamsa in degrees, about 23.86 at J2000.
func Ayanamsa(jde float64) float64 {
	return lahiriJ2000 + precessionInLongitude(jde)
}

// ayanamsaRate is the daily change of Ayanamsa, in degrees/day.
func ayanamsaRate(jde float64) float64 {
	t := base.J2000Century(jde)
	return (5029.0966 + 2*1.11113*t) / 3600 / daysPerCent
}

// toSidereal shifts a tropical position into the Lahiri sidereal zodiac.
func toSidereal(jde float64, p Position) Position {
	p.Longitude = normalizeDegrees(p.Longitude - Ayanamsa(jde))
	p.LongitudeSpeed -= ayanamsaRate(jde)
	return p
}
