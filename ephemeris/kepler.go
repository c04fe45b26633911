// ./ephemeris/kepler.go
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
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"
)

// elements are mean orbital elements referred to the J2000 ecliptic and
// equinox, each given as value at J2000 and rate per Julian century.
//
// Source: E.M. Standish, "Keplerian Elements for Approximate Positions of the
// Major Planets", table 1 (valid 1800 AD - 2050 AD).
type elements struct {
	a, aDot       float64 // semi-major axis, AU
	e, eDot       float64 // eccentricity
	i, iDot       float64 // inclination, degrees
	l, lDot       float64 // mean longitude, degrees
	peri, periDot float64 // longitude of perihelion, degrees
	node, nodeDot float64 // longitude of ascending node, degrees
}

var planetElements = map[Body]elements{
	Mercury: {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749, 252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	Venus:   {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890, 181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	Mars:    {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131, -4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	Jupiter: {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714, 34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	Saturn:  {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609, 49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	Uranus:  {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939, 313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	Neptune: {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372, -55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	Pluto:   {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818, 238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// earthMoonBary stands in for the Earth; the barycentre offset is below 5000 km.
var earthMoonBary = elements{1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668, 100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0, 0}

// heliocentric returns the J2000 ecliptic rectangular position (AU) at jde.
func (el elements) heliocentric(jde float64) [3]float64 {
	t := base.J2000Century(jde)
	a := el.a + el.aDot*t
	e := el.e + el.eDot*t
	inc := el.i + el.iDot*t
	l := el.l + el.lDot*t
	peri := el.peri + el.periDot*t
	node := el.node + el.nodeDot*t

	m := normalizeDegrees(l-peri) * deg
	return orbitToEcliptic(a, e, inc*deg, (peri-node)*deg, node*deg, m)
}

// osculating describes a single-epoch orbit by its time of perihelion.
type osculating struct {
	a, e               float64
	i, argPeri, node   float64 // degrees, J2000 ecliptic
	perihelion         float64 // JDE of perihelion passage
	validFrom, validTo float64 // JDE window in which the elements are used
}

func (o osculating) heliocentric(jde float64) [3]float64 {
	n := 0.9856076686 / math.Pow(o.a, 1.5) // mean motion, degrees/day
	m := normalizeDegrees(n*(jde-o.perihelion)) * deg
	return orbitToEcliptic(o.a, o.e, o.i*deg, o.argPeri*deg, o.node*deg, m)
}

func (o osculating) covers(jde float64) bool {
	return jde >= o.validFrom && jde <= o.validTo
}

// chironOrbit holds elements near the 1996 perihelion. Perturbations by
// Saturn and Uranus limit them to a few decades either side.
var chironOrbit = osculating{
	a:          13.6468,
	e:          0.3823,
	i:          6.9352,
	argPeri:    339.5417,
	node:       209.3882,
	perihelion: 2450128.7,
	validFrom:  2436934.5, // 1960-01-01
	validTo:    2466154.5, // 2040-01-01
}

// solveKepler returns the eccentric anomaly E for mean anomaly m (radians).
// The binary search of Meeus chapter 30 converges for any e < 1.
func solveKepler(m, e float64) float64 {
	return kepler.Kepler3(e, unit.Angle(m)).Rad()
}

// orbitToEcliptic places a body on its orbit and rotates it to the ecliptic.
// Angles are in radians.
func orbitToEcliptic(a, e, inc, argPeri, node, m float64) [3]float64 {
	E := solveKepler(m, e)
	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	cw, sw := math.Cos(argPeri), math.Sin(argPeri)
	cn, sn := math.Cos(node), math.Sin(node)
	ci, si := math.Cos(inc), math.Sin(inc)

	return [3]float64{
		(cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		(cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		(sw*si)*xp + (cw*si)*yp,
	}
}
