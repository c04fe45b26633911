// ./ephemeris/moon.go
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

import (
	"github.com/soniakeys/meeus/v3/moonposition"
)

// moonGeometric returns the Moon's geometric ecliptic longitude and latitude
// (degrees, mean equinox of date, no nutation) and its distance in km, from
// the complete series of Meeus chapter 47.
func moonGeometric(jde float64) (lon, lat, distKm float64) {
	l, b, km := moonposition.Position(jde)
	return normalizeDegrees(l.Deg()), b.Deg(), km
}

// meanNode returns the longitude of the mean ascending lunar node of date.
func meanNode(jde float64) float64 {
	return normalizeDegrees(moonposition.Node(jde).Deg())
}

// meanLunarDistance is used as the distance of the node points, in AU.
var meanLunarDistance = 385000.56 / auKm
