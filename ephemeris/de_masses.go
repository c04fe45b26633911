// ./ephemeris/de_masses.go

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
package ephemeris

import (
	"strconv"
	"strings"
)

const secondsPerDay = 86400.0

// Mass is one row of the GM table carried in a DE file's constants.
type Mass struct {
	Name       string  `json:"name" csv:"body"`
	GM         float64 `json:"gm_au3_day2" csv:"gm_au3_day2"` // AU³/day²
	GMKm       float64 `json:"gm_km3_s2" csv:"gm_km3_s2"`     // km³/s²
	SunRatio   float64 `json:"mass_over_sun" csv:"mass_over_sun"`
	Reciprocal float64 `json:"sun_over_mass" csv:"sun_over_mass"`
}

var massNames = [...]string{
	"sun", "mercury", "venus", "earth_moon_barycenter", "mars",
	"jupiter", "saturn", "uranus", "neptune", "pluto", "earth", "moon",
	"ceres", "pallas", "juno", "vesta",
}

// Masses builds the GM table from a DE file's constants: GMS, GM1..GM9 (GM3
// is absent; the Earth and Moon are split from GMB by EMRAT) and the
// asteroid masses MA0001..MA0004. Bodies the file does not carry are left
// out. AU in km is needed for the km³/s² column.
func Masses(consts []Constant) []Mass {
	gm := make([]float64, len(massNames))
	var gmb, emrat, au float64

	for _, c := range consts {
		name := strings.TrimSpace(c.Name)
		switch {
		case name == "GMS":
			gm[0] = c.Value
		case name == "GMB":
			gmb = c.Value
		case name == "EMRAT":
			emrat = c.Value
		case name == "AU":
			au = c.Value
		case len(name) == 3 && strings.HasPrefix(name, "GM"):
			if i, err := strconv.Atoi(name[2:]); err == nil && i >= 1 && i <= 9 && i != 3 {
				gm[i] = c.Value
			}
		case len(name) == 6 && strings.HasPrefix(name, "MA000"):
			if i, err := strconv.Atoi(name[5:]); err == nil && i >= 1 && i <= 4 {
				gm[i+11] = c.Value
			}
		}
	}
	if gmb != 0 {
		gm[3] = gmb
		if emrat != 0 {
			gm[11] = gmb / (1 + emrat)
			gm[10] = gmb - gm[11]
		}
	}

	kmScale := au * au * au / (secondsPerDay * secondsPerDay)
	var out []Mass
	for i, v := range gm {
		if v == 0 {
			continue
		}
		m := Mass{Name: massNames[i], GM: v, GMKm: v * kmScale}
		if gm[0] != 0 {
			m.SunRatio = v / gm[0]
			m.Reciprocal = gm[0] / v
		}
		out = append(out, m)
	}
	return out
}
