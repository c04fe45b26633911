// ./ephemeris/frames.go
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
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"
)

const (
	j2000         = 2451545.0
	daysPerCent   = 36525.0
	deg           = math.Pi / 180
	arcsec        = deg / 3600
	auKm          = 149597870.7
	lightDayPerAU = 0.0057755183 // light time for 1 AU, in days
	aberrationK   = 20.49552     // constant of aberration, arcsec
)

// normalizeDegrees reduces an angle into [0, 360).
func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// angleDiff returns a-b wrapped into (-180, 180].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b+180, 360)
	if d <= 0 {
		d += 360
	}
	return d - 180
}

func sinD(x float64) float64 { return math.Sin(x * deg) }
func cosD(x float64) float64 { return math.Cos(x * deg) }

// nutationDeg returns nutation in longitude and obliquity, in degrees, from
// the full IAU 1980 series.
func nutationDeg(jde float64) (dpsi, deps float64) {
	p, e := nutation.Nutation(jde)
	return p.Deg(), e.Deg()
}

// meanObliquity is the IAU 1980 obliquity of the ecliptic, in degrees.
func meanObliquity(jde float64) float64 {
	return nutation.MeanObliquity(jde).Deg()
}

// precessionInLongitude is the general precession from J2000 to jde, degrees.
func precessionInLongitude(jde float64) float64 {
	return base.Horner(base.J2000Century(jde), 0, 5029.0966, 1.11113, -0.000006) / 3600
}

// julianEpoch is the Julian epoch (J2000 = 2000.0) of jde.
func julianEpoch(jde float64) float64 {
	return 2000 + (jde-j2000)/daysPerCent*100
}

// precessEcliptic carries a J2000 ecliptic longitude and latitude (degrees)
// to the mean ecliptic and equinox of jde.
func precessEcliptic(jde, lon, lat float64) (float64, float64) {
	p := precess.NewEclipticPrecessor(2000, julianEpoch(jde))
	from := &coord.Ecliptic{Lon: unit.AngleFromDeg(lon), Lat: unit.AngleFromDeg(lat)}
	to := p.Precess(from, &coord.Ecliptic{})
	return normalizeDegrees(to.Lon.Deg()), to.Lat.Deg()
}

// aberration returns the annual aberration corrections to ecliptic longitude
// and latitude, in degrees, given the Sun's true longitude.
func aberration(lon, lat, sunLon float64) (dlon, dlat float64) {
	k := aberrationK / 3600
	dlon = -k * cosD(sunLon-lon) / cosD(lat)
	dlat = -k * sinD(lat) * sinD(sunLon-lon)
	return dlon, dlat
}

// eclipticRect is the inverse of eclipticSpherical.
func eclipticRect(lon, lat, r float64) [3]float64 {
	return [3]float64{
		r * cosD(lat) * cosD(lon),
		r * cosD(lat) * sinD(lon),
		r * sinD(lat),
	}
}

// eclipticSpherical converts a rectangular ecliptic vector to longitude,
// latitude (degrees) and length.
func eclipticSpherical(v [3]float64) (lon, lat, r float64) {
	r = math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	lon = normalizeDegrees(math.Atan2(v[1], v[0]) / deg)
	lat = math.Atan2(v[2], math.Hypot(v[0], v[1])) / deg
	return lon, lat, r
}

func rotX(a float64) *mat.Dense {
	c, s := math.Cos(a), math.Sin(a)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, s,
		0, -s, c,
	})
}

func rotY(a float64) *mat.Dense {
	c, s := math.Cos(a), math.Sin(a)
	return mat.NewDense(3, 3, []float64{
		c, 0, -s,
		0, 1, 0,
		s, 0, c,
	})
}

func rotZ(a float64) *mat.Dense {
	c, s := math.Cos(a), math.Sin(a)
	return mat.NewDense(3, 3, []float64{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	})
}

// icrfToEclipticOfDate builds the rotation from the J2000 equator (ICRF,
// frame bias ignored) to the mean ecliptic and equinox of date: IAU 1976
// precession followed by the mean obliquity of date.
func icrfToEclipticOfDate(jde float64) *mat.Dense {
	t := base.J2000Century(jde)
	zeta := base.Horner(t, 0, 2306.2181, 0.30188, 0.017998) * arcsec
	z := base.Horner(t, 0, 2306.2181, 1.09468, 0.018203) * arcsec
	theta := base.Horner(t, 0, 2004.3109, -0.42665, -0.041833) * arcsec

	var prec, tmp, out mat.Dense
	tmp.Mul(rotY(theta), rotZ(-zeta))
	prec.Mul(rotZ(-z), &tmp)
	out.Mul(rotX(meanObliquity(jde)*deg), &prec)
	return &out
}

// rotate applies m to v.
func rotate(m mat.Matrix, v [3]float64) [3]float64 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v[:]))
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}
