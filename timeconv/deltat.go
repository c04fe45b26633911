// ./timeconv/deltat.go
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
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
)

// DeltaT returns TT - UT in seconds at jd. Before 1600 it uses the Meeus
// polynomials from chapter 10; from 1600 to 2150 the Espenak & Meeus fits;
// after 2150 the long-term parabola.
func DeltaT(jd JulianDay) float64 {
	y := 2000 + (float64(jd)-J2000)/365.2425
	switch {
	case y < 948:
		return float64(deltat.PolyBefore948(y))
	case y < 1600:
		return float64(deltat.Poly948to1600(y))
	case y < 1700:
		t := y - 1600
		return base.Horner(t, 120, -0.9808, -0.01532, 1.0/7129)
	case y < 1800:
		t := y - 1700
		return base.Horner(t, 8.83, 0.1603, -0.0059285, 0.00013336, -1.0/1174000)
	case y < 1860:
		t := y - 1800
		return base.Horner(t, 13.72, -0.332447, 0.0068612, 0.0041116, -0.00037436, 0.0000121272, -0.0000001699, 0.000000000875)
	case y < 1900:
		t := y - 1860
		return base.Horner(t, 7.62, 0.5737, -0.251754, 0.01680668, -0.0004473624, 1.0/233174)
	case y < 1920:
		t := y - 1900
		return base.Horner(t, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	case y < 1941:
		t := y - 1920
		return base.Horner(t, 21.20, 0.84493, -0.076100, 0.0020936)
	case y < 1961:
		t := y - 1950
		return base.Horner(t, 29.07, 0.407, -1.0/233, 1.0/2547)
	case y < 1986:
		t := y - 1975
		return base.Horner(t, 45.45, 1.067, -1.0/260, -1.0/718)
	case y < 2005:
		t := y - 2000
		return base.Horner(t, 63.86, 0.3345, -0.060374, 0.0017275, 0.000651814, 0.00002373599)
	case y < 2050:
		t := y - 2000
		return base.Horner(t, 62.92, 0.32217, 0.005589)
	case y < 2150:
		return longTerm(y) - 0.5628*(2150-y)
	default:
		return longTerm(y)
	}
}

func longTerm(y float64) float64 {
	u := (y - 1820) / 100
	return -20 + 32*u*u
}
