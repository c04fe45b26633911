// ./gates/nakshatra.go
package gates

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

// NakshatraWidth is the arc of one lunar mansion (13°20').
const NakshatraWidth = 360.0 / 27

const padaWidth = NakshatraWidth / 4

// Nakshatras lists the 27 lunar mansions starting at 0° sidereal Aries.
var Nakshatras = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra", "Punarvasu",
	"Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni", "Hasta",
	"Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha", "Mula", "Purva Ashadha",
	"Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha", "Purva Bhadrapada",
	"Uttara Bhadrapada", "Revati",
}

// Nakshatra locates a longitude within a lunar mansion.
type Nakshatra struct {
	Name      string  `json:"name"`
	Index     int     `json:"index"`
	Pada      int     `json:"pada"`
	DegreesIn float64 `json:"degrees_in_nakshatra"`
}

// LongitudeToNakshatra returns the nakshatra and pada holding a sidereal
// longitude. The longitude is reduced modulo 360 first. NaN and infinite
// input yield a zero Nakshatra with Index -1.
func LongitudeToNakshatra(longitude float64) Nakshatra {
	if !finite(longitude) {
		return Nakshatra{Index: -1}
	}
	lon := normalize(longitude)
	idx := int(lon / NakshatraWidth)
	idx = max(0, min(idx, len(Nakshatras)-1))
	in := lon - float64(idx)*NakshatraWidth
	if in < 0 {
		in = 0
	}
	pada := int(in/padaWidth) + 1
	if pada > 4 {
		pada = 4
	}
	return Nakshatra{
		Name:      Nakshatras[idx],
		Index:     idx,
		Pada:      pada,
		DegreesIn: in,
	}
}
