// ./chart.go

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
package humandesign

import (
	"fmt"
	"time"

	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/mshafiee/humandesign/gates"
)

// Earth is the gate key of the point opposite the Sun.
const Earth = "earth"

// HumanDesignChart is the result of a Human Design calculation. Every map is
// built fresh for each call.
type HumanDesignChart struct {
	ID                   string              `json:"id"`
	PersonalityGates     map[string]int      `json:"personality_gates"`
	DesignGates          map[string]int      `json:"design_gates"`
	PersonalityPositions ephemeris.Positions `json:"personality_positions"`
	DesignPositions      ephemeris.Positions `json:"design_positions"`
	BirthTime            time.Time           `json:"birth_datetime"`  // UTC
	DesignTime           time.Time           `json:"design_datetime"` // birth zone
	DesignMethod         Method              `json:"design_method"`
	SolarArc             SolarArcDetails     `json:"solar_arc_details"`
	Location             Location            `json:"location"`
	Engine               string              `json:"engine"`
}

// SolarArcDetails lets a reader check the design instant.
type SolarArcDetails struct {
	PersonalitySunLongitude string  `json:"personality_sun_longitude"` // %.3f°
	DesignSunLongitude      string  `json:"design_sun_longitude"`      // %.3f°
	SolarArcDifference      string  `json:"solar_arc_difference"`      // %.1f°
	DesignDate              string  `json:"design_date"`               // YYYY-MM-DD HH:MM UTC
	Difference              float64 `json:"difference_degrees"`
	Iterations              int     `json:"iterations"`
	Method                  Method  `json:"method"`
}

// IsFallback reports whether the design instant came from the fixed offset.
func (c *HumanDesignChart) IsFallback() bool {
	return c.DesignMethod == MethodFixedOffset
}

// VedicChart is the sidereal (Lahiri) chart with the Moon's nakshatra.
type VedicChart struct {
	ID            string              `json:"id"`
	Positions     ephemeris.Positions `json:"planetary_positions"`
	MoonNakshatra MoonNakshatra       `json:"moon_nakshatra"`
	Ayanamsa      float64             `json:"ayanamsa"`
	BirthTime     time.Time           `json:"birth_datetime"` // UTC
	Location      Location            `json:"location"`
	Engine        string              `json:"engine"`
}

// MoonNakshatra is the nakshatra holding the sidereal Moon.
type MoonNakshatra struct {
	gates.Nakshatra
	Longitude float64 `json:"longitude"`
}

// gateMap assigns gates to the ten core bodies plus the Earth.
func gateMap(pos ephemeris.Positions) map[string]int {
	out := make(map[string]int, len(ephemeris.Core)+1)
	for _, b := range ephemeris.Core {
		if p, ok := pos.Get(b); ok {
			out[b.String()] = gates.LongitudeToGate(p.Longitude)
		}
	}
	if sun, ok := pos.Get(ephemeris.Sun); ok {
		out[Earth] = gates.LongitudeToGate(normalize(sun.Longitude + 180))
	}
	return out
}

func solarArcDetails(personality, design ephemeris.Positions, d DesignInstant) SolarArcDetails {
	pSun := personality[ephemeris.Sun].Longitude
	dSun := design[ephemeris.Sun].Longitude
	diff := normalize(pSun - dSun + 360)
	return SolarArcDetails{
		PersonalitySunLongitude: fmt.Sprintf("%.3f°", pSun),
		DesignSunLongitude:      fmt.Sprintf("%.3f°", dSun),
		SolarArcDifference:      fmt.Sprintf("%.1f°", diff),
		DesignDate:              d.Time.UTC().Format("2006-01-02 15:04") + " UTC",
		Difference:              diff,
		Iterations:              d.Iterations,
		Method:                  d.Method,
	}
}
