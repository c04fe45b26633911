// ./ephemeris/ephemeris.go

/*
Package ephemeris computes apparent geocentric ecliptic positions of the Sun,
Moon, planets, lunar node and Chiron.

Two engines are provided:
  - Analytic: a file-free engine built from published series (Sun and Moon
    after Meeus, planets from JPL's approximate Keplerian elements, Chiron
    from osculating elements). It is the default.
  - DE: a reader for JPL binary DE files (DE405, DE430, DE441, ...) that
    interpolates the Chebyshev records directly.

Both are wrapped by a Provider, which adds the reference frame (tropical or
Lahiri sidereal), derives the South Node, and drops optional bodies that an
engine cannot serve.

Usage:

	p := ephemeris.NewProvider(ephemeris.NewAnalytic())
	pos, err := p.Positions(jd, ephemeris.Tropical)
	if err != nil {
	    log.Fatal(err)
	}
	sun, _ := pos.Get(ephemeris.Sun)

License:
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
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks every input or mandatory-data failure.
var ErrValidation = errors.New("validation error")

// ErrBodyUnavailable is returned by an engine that cannot serve a body.
var ErrBodyUnavailable = errors.New("body not available from this engine")

// ErrOutsideRange is returned when the requested time is outside the ephemeris time range.
var ErrOutsideRange = errors.New("requested time is outside ephemeris time range")

// ErrNonFinite is returned when an engine yields NaN or an infinite longitude.
var ErrNonFinite = errors.New("engine returned a non-finite position")

// ValidationError names the field, value or body that failed. It matches
// ErrValidation and the underlying cause with errors.Is.
type ValidationError struct {
	Field string
	Value any
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %v", e.Field, e.Value)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// Body identifies a point whose position can be queried.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	NorthNode // mean lunar node
	SouthNode // derived: NorthNode + 180°
	Chiron
)

var bodyNames = [...]string{
	Sun:       "sun",
	Moon:      "moon",
	Mercury:   "mercury",
	Venus:     "venus",
	Mars:      "mars",
	Jupiter:   "jupiter",
	Saturn:    "saturn",
	Uranus:    "uranus",
	Neptune:   "neptune",
	Pluto:     "pluto",
	NorthNode: "north_node",
	SouthNode: "south_node",
	Chiron:    "chiron",
}

// Mandatory bodies are queried on every call; any failure is fatal.
var Mandatory = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto, NorthNode}

// Optional bodies are omitted from the result when the engine cannot serve them.
var Optional = []Body{Chiron}

// Core lists the ten bodies that carry gates, Sun first.
var Core = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

func (b Body) String() string {
	if b >= 0 && int(b) < len(bodyNames) {
		return bodyNames[b]
	}
	return fmt.Sprintf("body(%d)", int(b))
}

// MarshalText keys JSON maps by body name.
func (b Body) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(bodyNames) {
		return nil, fmt.Errorf("unknown body %d", int(b))
	}
	return []byte(bodyNames[b]), nil
}

func (b *Body) UnmarshalText(text []byte) error {
	v, ok := ParseBody(string(text))
	if !ok {
		return fmt.Errorf("unknown body %q", text)
	}
	*b = v
	return nil
}

// ParseBody looks a body up by its snake_case name.
func ParseBody(name string) (Body, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range bodyNames {
		if n == name {
			return Body(i), true
		}
	}
	return 0, false
}

// Position is an apparent geocentric ecliptic position of date.
type Position struct {
	Longitude      float64 `json:"longitude"`       // degrees, [0, 360)
	Latitude       float64 `json:"latitude"`        // degrees
	Distance       float64 `json:"distance"`        // AU
	LongitudeSpeed float64 `json:"longitude_speed"` // degrees/day
	LatitudeSpeed  float64 `json:"latitude_speed"`  // degrees/day
}

// Positions holds one instant's positions. Optional bodies are simply absent.
type Positions map[Body]Position

// Get reports the position of b and whether it is present.
func (p Positions) Get(b Body) (Position, bool) {
	pos, ok := p[b]
	return pos, ok
}

// Frame selects the zodiac the longitudes are measured in.
type Frame int

const (
	Tropical Frame = iota
	Sidereal       // Lahiri
)

func (f Frame) String() string {
	if f == Sidereal {
		return "sidereal"
	}
	return "tropical"
}

// Engine produces tropical apparent geocentric positions for a TT instant.
type Engine interface {
	Name() string

	// Geocentric returns the apparent position of a body.
	//
	// Parameters:
	//   - jde: Julian Ephemeris Date (TT).
	//   - body: Any Body except SouthNode, which the Provider derives.
	//
	// Returns:
	//   - Position: Longitude and latitude in degrees of date, distance in
	//     AU and daily speeds.
	//   - error: ErrBodyUnavailable, ErrOutsideRange or an engine error.
	Geocentric(jde float64, body Body) (Position, error)
}

// concurrencyReporter is implemented by engines that keep mutable read state.
type concurrencyReporter interface {
	ConcurrentSafe() bool
}
