// ./ephemeris/analytic.go
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
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/solar"
)

// speedStep is the half-width, in days, of the central difference used for speeds.
const speedStep = 0.01

// Analytic computes positions from closed-form series and needs no data
// files. It is safe for concurrent use.
//
// Approximate error, 1800 to 2050:
//   - Sun: about 10" (Meeus chapter 25 low-precision theory)
//   - Moon: about 10" in longitude and 4" in latitude (Meeus chapter 47)
//   - Pluto: about 1" from 1885 to 2099 (Meeus chapter 37); Standish
//     elements outside that window
//   - Mercury, Venus, Mars: 15" to 40" (Standish mean elements)
//   - Jupiter: up to 400"; Saturn: up to 600"
//   - Uranus: up to 50"; Neptune: about 10"
//
// Gate and line boundaries are 0.9375 and 0.15625 degrees wide, so the
// arcminute errors above shift a line only when a body sits within that
// margin of a boundary.
type Analytic struct{}

// The Meeus chapter 37 Pluto series covers 1885-01-01 to 2099-12-31.
const (
	plutoSeriesFrom = 2409542.5
	plutoSeriesTo   = 2488069.5
)

// NewAnalytic returns the built-in engine.
func NewAnalytic() *Analytic {
	return &Analytic{}
}

func (*Analytic) Name() string { return "analytic" }

// ConcurrentSafe reports that the engine has no mutable state.
func (*Analytic) ConcurrentSafe() bool { return true }

// Geocentric implements Engine.
func (a *Analytic) Geocentric(jde float64, body Body) (Position, error) {
	switch body {
	case SouthNode:
		return Position{}, fmt.Errorf("%s: %w", body, ErrBodyUnavailable)
	case Chiron:
		if !chironOrbit.covers(jde) {
			return Position{}, fmt.Errorf("%s at JDE %.1f: %w", body, jde, ErrBodyUnavailable)
		}
	}
	return withSpeed(jde, func(t float64) (float64, float64, float64, error) {
		return a.apparent(t, body)
	})
}

func (a *Analytic) apparent(jde float64, body Body) (lon, lat, dist float64, err error) {
	switch body {
	case Sun:
		lon, dist = sunApparent(jde)
		return lon, 0, dist, nil
	case Moon:
		l, b, km := moonGeometric(jde)
		dpsi, _ := nutationDeg(jde)
		return normalizeDegrees(l + dpsi), b, km / auKm, nil
	case NorthNode:
		dpsi, _ := nutationDeg(jde)
		return normalizeDegrees(meanNode(jde) + dpsi), 0, meanLunarDistance, nil
	case Chiron:
		lon, lat, dist = heliocentricToApparent(jde, chironOrbit.heliocentric)
		return lon, lat, dist, nil
	case Pluto:
		if jde >= plutoSeriesFrom && jde < plutoSeriesTo {
			lon, lat, dist = heliocentricToApparent(jde, plutoHeliocentric)
			return lon, lat, dist, nil
		}
	}
	el, ok := planetElements[body]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%s: %w", body, ErrBodyUnavailable)
	}
	lon, lat, dist = heliocentricToApparent(jde, el.heliocentric)
	return lon, lat, dist, nil
}

// sunTrue returns the Sun's true geometric longitude of date and its
// distance in AU.
func sunTrue(jde float64) (lon, r float64) {
	t := base.J2000Century(jde)
	s, _ := solar.True(t)
	return normalizeDegrees(s.Deg()), solar.Radius(t)
}

// sunApparent is sunTrue corrected for nutation and aberration.
func sunApparent(jde float64) (lon, r float64) {
	t := base.J2000Century(jde)
	return normalizeDegrees(solar.ApparentLongitude(t).Deg()), solar.Radius(t)
}

// plutoHeliocentric returns Pluto's J2000 ecliptic rectangular position (AU).
func plutoHeliocentric(jde float64) [3]float64 {
	l, b, r := pluto.Heliocentric(jde)
	return eclipticRect(l.Deg(), b.Deg(), r)
}

// heliocentricToApparent turns a heliocentric J2000 ecliptic orbit into an
// apparent geocentric longitude and latitude of date, corrected for light
// time, precession, nutation and aberration.
func heliocentricToApparent(jde float64, helio func(float64) [3]float64) (lon, lat, dist float64) {
	earth := earthMoonBary.heliocentric(jde)
	var v [3]float64
	tau := 0.0
	for i := 0; i < 3; i++ {
		p := helio(jde - tau)
		v = [3]float64{p[0] - earth[0], p[1] - earth[1], p[2] - earth[2]}
		tau = lightDayPerAU * math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2])
	}
	lon, lat, dist = eclipticSpherical(v)
	lon, lat = precessEcliptic(jde, lon, lat)
	dpsi, _ := nutationDeg(jde)
	lon, lat = toApparent(jde, lon, lat, dpsi)
	return lon, lat, dist
}

// toApparent adds nutation in longitude (dpsi, degrees) and annual aberration
// to a geometric ecliptic position of date.
func toApparent(jde, lon, lat, dpsi float64) (float64, float64) {
	sun, _ := sunTrue(jde)
	dl, db := aberration(lon, lat, sun)
	return normalizeDegrees(lon + dpsi + dl), lat + db
}

// withSpeed evaluates f at jde and derives daily motion from a central
// difference. Near the edge of an engine's range it falls back to a one-sided
// difference; speeds stay zero when neither neighbour is available.
func withSpeed(jde float64, f func(float64) (lon, lat, dist float64, err error)) (Position, error) {
	lon, lat, dist, err := f(jde)
	if err != nil {
		return Position{}, err
	}
	pos := Position{Longitude: lon, Latitude: lat, Distance: dist}

	l0, b0, _, errBefore := f(jde - speedStep)
	l1, b1, _, errAfter := f(jde + speedStep)
	switch {
	case errBefore == nil && errAfter == nil:
		pos.LongitudeSpeed = angleDiff(l1, l0) / (2 * speedStep)
		pos.LatitudeSpeed = (b1 - b0) / (2 * speedStep)
	case errAfter == nil:
		pos.LongitudeSpeed = angleDiff(l1, lon) / speedStep
		pos.LatitudeSpeed = (b1 - lat) / speedStep
	case errBefore == nil:
		pos.LongitudeSpeed = angleDiff(lon, l0) / speedStep
		pos.LatitudeSpeed = (lat - b0) / speedStep
	}
	return pos, nil
}
