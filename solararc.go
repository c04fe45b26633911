// ./solararc.go

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
	"math"
	"time"

	"github.com/mshafiee/humandesign/timeconv"
)

// Method tells how a design instant was obtained.
type Method string

const (
	// MethodSolarArc is an instant found by matching the Sun's longitude.
	MethodSolarArc Method = "solar_arc"
	// MethodFixedOffset is the 88-calendar-day fallback.
	MethodFixedOffset Method = "fixed_offset"
)

// Search parameters of the design instant.
const (
	DesignArc     = 88.0   // degrees of solar arc before birth
	FallbackDays  = 88     // calendar days used when the search fails
	windowStart   = 100.0  // days before birth
	windowEnd     = 80.0   // days before birth
	arcTolerance  = 0.001  // degrees
	maxIterations = 50
	minWindow     = 0.0001 // days, about 8.6 s
)

// DesignInstant is the moment the Sun stood DesignArc degrees behind its
// birth longitude.
type DesignInstant struct {
	JD         timeconv.JulianDay `json:"julian_day"`
	Time       time.Time          `json:"time"` // in the birth zone
	Method     Method             `json:"method"`
	Iterations int                `json:"iterations"`
	BirthSun   float64            `json:"birth_sun_longitude"`
	Target     float64            `json:"target_sun_longitude"`
}

// sunSource is the one query the search needs.
type sunSource interface {
	SunLongitude(jd timeconv.JulianDay) (float64, error)
}

// findDesignInstant bisects [birth-100, birth-80] for the instant the Sun
// reaches its birth longitude minus DesignArc. When the search does not
// settle within the tolerance it falls back to birth minus FallbackDays
// calendar days in the birth zone. Ephemeris errors are returned as is.
func findDesignInstant(src sunSource, birthJD timeconv.JulianDay, birth time.Time) (DesignInstant, error) {
	birthSun, err := src.SunLongitude(birthJD)
	if err != nil {
		return DesignInstant{}, err
	}
	target := normalize(birthSun - DesignArc)

	jd, iterations, ok, err := bisectSun(src, target, birthJD.AddDays(-windowStart), birthJD.AddDays(-windowEnd))
	if err != nil {
		return DesignInstant{}, err
	}

	d := DesignInstant{
		Method:     MethodSolarArc,
		Iterations: iterations,
		BirthSun:   birthSun,
		Target:     target,
	}
	if ok {
		d.JD = jd
		d.Time = timeconv.FromJulianDay(jd).In(birth.Location())
		return d, nil
	}

	d.Method = MethodFixedOffset
	d.Time = birth.AddDate(0, 0, -FallbackDays)
	d.JD = timeconv.TimeToJulianDay(d.Time)
	return d, nil
}

// bisectSun narrows [start, end] towards target. diff > 0 means the Sun
// still has to move forward, so the lower bound rises.
func bisectSun(src sunSource, target float64, start, end timeconv.JulianDay) (timeconv.JulianDay, int, bool, error) {
	for i := 1; i <= maxIterations; i++ {
		mid := (start + end) / 2
		current, err := src.SunLongitude(mid)
		if err != nil {
			return 0, i, false, err
		}

		diff := arcDiff(target, current)
		if math.Abs(diff) < arcTolerance {
			return mid, i, true, nil
		}
		if diff > 0 {
			start = mid
		} else {
			end = mid
		}
		if math.Abs(float64(end-start)) < minWindow {
			return 0, i, false, nil
		}
	}
	return 0, maxIterations, false, nil
}

// arcDiff is target minus current wrapped into [-180, 180).
func arcDiff(target, current float64) float64 {
	return normalize(target-current+180) - 180
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}
