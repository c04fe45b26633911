// ./ephemeris/de_types.go
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

import "encoding/binary"

// Binary DE file layout.
//
// Record 0 is the header:
//
//	Bytes 0-251:     three 84-byte title lines ("JPL Planetary Ephemeris DE405/LE405", start and final epoch)
//	Bytes 252-2651:  names of the first 400 constants, 6 bytes each
//	Bytes 2652-2675: start JED, final JED, record span in days (float64)
//	Bytes 2676-2679: number of constants (int32)
//	Bytes 2680-2695: AU in km, Earth/Moon mass ratio (float64)
//	Bytes 2696-2839: ipt[0..11], offset/coefficients/sub-intervals per quantity (uint32)
//	Bytes 2840-2843: DE number
//	Bytes 2844-2855: lunar libration ipt row
//	Bytes 2856-:     names of constants 400 and above, when there are more than 400
//
// followed, for DE430t and later, by the ipt rows of the lunar mantle
// angular velocities and TT-TDB. Record 1 holds the constant values. Data
// records start at record 2; each begins with the JED range it covers.
//
// The record size is not stored. It follows from the ipt table: every
// quantity contributes coefficients*sub-intervals*components doubles.

const (
	titleSize     = 84
	headerOffset  = 2652
	headerSize    = 5*8 + 41*4
	maxNamedConst = 400
	constNameSize = 6
	// extraNamesOffset is where the names of constants past the 400th start.
	extraNamesOffset = titleSize*3 + maxNamedConst*constNameSize + headerSize
)

// Quantity rows of the ipt table.
const (
	iptMercury = iota
	iptVenus
	iptEMB
	iptMars
	iptJupiter
	iptSaturn
	iptUranus
	iptNeptune
	iptPluto
	iptMoon // geocentric
	iptSun
	iptNutations
	iptLibrations
	iptMantle
	iptTTTDB
	iptRows
)

var deRows = map[Body]int{
	Mercury: iptMercury,
	Venus:   iptVenus,
	Mars:    iptMars,
	Jupiter: iptJupiter,
	Saturn:  iptSaturn,
	Uranus:  iptUranus,
	Neptune: iptNeptune,
	Pluto:   iptPluto,
	Moon:    iptMoon,
	Sun:     iptSun,
}

// maxCheby bounds the number of Chebyshev coefficients per component. It
// covers every published DE file.
const maxCheby = 18

// chebyshev caches polynomial values between calls that share an argument.
type chebyshev struct {
	posn  [maxCheby]float64 // T_i(tc)
	vel   [maxCheby]float64 // T'_i(tc)
	nPosn uint
	nVel  uint
	twot  float64
}

func newChebyshev() chebyshev {
	var c chebyshev
	c.posn[0] = 1
	c.posn[1] = -2 // not a valid tc, forces the first evaluation
	c.vel[1] = 1
	return c
}

// deHeader is the decoded header of a DE file.
type deHeader struct {
	name    string
	version int
	start   float64
	end     float64
	step    float64
	ncon    uint32
	au      float64
	emrat   float64
	ipt     [iptRows][3]uint32
	order   binary.ByteOrder

	kernelSize uint32 // record size in 4-byte units
	recsize    uint32 // record size in bytes
	ncoeff     uint32 // doubles per record
}

// quantityDimension is the number of components interpolated for an ipt row.
func quantityDimension(row int) int {
	switch row {
	case iptNutations:
		return 2
	case iptTTTDB:
		return 1
	}
	return 3
}
