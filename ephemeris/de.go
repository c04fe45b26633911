// ./ephemeris/de.go
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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// ErrCorruptFile is returned when a DE file header fails its sanity checks.
var ErrCorruptFile = errors.New("ephemeris file corrupt")

// DE reads a JPL binary planetary ephemeris (DE405, DE430, DE441, INPOP in
// DE format, ...). It keeps the last data record and the Chebyshev state in
// memory, so it is not safe for concurrent use; a Provider serialises calls.
type DE struct {
	file     io.ReadSeekCloser
	h        *deHeader
	cache    []float64
	raw      []byte
	cacheLoc uint32
	cached   bool
	cheb     chebyshev
}

// DEInfo describes an open DE file.
type DEInfo struct {
	Name         string  `json:"name"`
	Version      int     `json:"version"`
	Start        float64 `json:"start_jed"`
	End          float64 `json:"end_jed"`
	Step         float64 `json:"step_days"`
	AU           float64 `json:"au_km"`
	EMRAT        float64 `json:"earth_moon_ratio"`
	Constants    int     `json:"constants"`
	RecordSize   int     `json:"record_size"`
	Coefficients int     `json:"coefficients"`
	BigEndian    bool    `json:"big_endian"`
	Nutations    bool    `json:"nutations"`
}

// Constant is one named value from the header records.
type Constant struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StateVector is an ICRF position in AU and velocity in AU/day.
type StateVector struct {
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
}

// OpenDE opens a JPL binary ephemeris (DE200 to DE441, either byte order).
// Close it when done.
//
// Parameters:
//   - path: Path to the binary file (e.g., "lnxp1900p2053.405").
//
// Returns:
//   - *DE: The engine, reading records on demand.
//   - error: A wrapped os error when the file cannot be opened, or
//     ErrCorruptFile when the header does not parse.
func OpenDE(path string) (*DE, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ephemeris file: %w", err)
	}
	d, err := newDE(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func newDE(f io.ReadSeekCloser) (*DE, error) {
	h, err := readHeader(f)
	if err != nil {
		return nil, err
	}
	return &DE{
		file:  f,
		h:     h,
		cache: make([]float64, h.ncoeff),
		raw:   make([]byte, int(h.ncoeff)*8),
		cheb:  newChebyshev(),
	}, nil
}

// Close releases the file.
func (d *DE) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Name is "de" followed by the DE number, e.g. "de441".
func (d *DE) Name() string { return fmt.Sprintf("de%d", d.h.version) }

// ConcurrentSafe reports false: queries share the record cache.
func (d *DE) ConcurrentSafe() bool { return false }

// Range returns the first and last JED covered by the file.
func (d *DE) Range() (start, end float64) { return d.h.start, d.h.end }

func (d *DE) Info() DEInfo {
	return DEInfo{
		Name:         d.h.name,
		Version:      d.h.version,
		Start:        d.h.start,
		End:          d.h.end,
		Step:         d.h.step,
		AU:           d.h.au,
		EMRAT:        d.h.emrat,
		Constants:    int(d.h.ncon),
		RecordSize:   int(d.h.recsize),
		Coefficients: int(d.h.ncoeff),
		BigEndian:    d.h.order == binary.BigEndian,
		Nutations:    d.h.ipt[iptNutations][1] > 0,
	}
}

// Constants reads the names and values of the header constants.
func (d *DE) Constants() ([]Constant, error) {
	n := int(d.h.ncon)
	names := make([]byte, n*constNameSize)
	first := min(n, maxNamedConst) * constNameSize

	if _, err := d.file.Seek(titleSize*3, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to constant names: %w", err)
	}
	if _, err := io.ReadFull(d.file, names[:first]); err != nil {
		return nil, fmt.Errorf("reading constant names: %w", err)
	}
	if n > maxNamedConst {
		if _, err := d.file.Seek(extraNamesOffset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seeking to constant names past %d: %w", maxNamedConst, err)
		}
		if _, err := io.ReadFull(d.file, names[first:]); err != nil {
			return nil, fmt.Errorf("reading constant names past %d: %w", maxNamedConst, err)
		}
	}

	raw := make([]byte, n*8)
	if _, err := d.file.Seek(int64(d.h.recsize), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to constant values: %w", err)
	}
	if _, err := io.ReadFull(d.file, raw); err != nil {
		return nil, fmt.Errorf("reading constant values: %w", err)
	}
	values := make([]float64, n)
	decodeFloat64s(values, raw, d.h.order)

	out := make([]Constant, n)
	for i := range out {
		name := names[i*constNameSize : (i+1)*constNameSize]
		out[i] = Constant{Name: strings.TrimSpace(strings.Trim(string(name), "\x00")), Value: values[i]}
	}
	return out, nil
}

// Barycentric returns the ICRF state of a body relative to the solar-system
// barycentre.
//
// Parameters:
//   - jde: Julian Ephemeris Date (TDB).
//   - body: Sun, Moon or a planet from Mercury to Pluto.
//
// Returns:
//   - StateVector: Position in AU and velocity in AU/day.
//   - error: ErrOutsideRange, ErrBodyUnavailable or a read error.
func (d *DE) Barycentric(jde float64, body Body) (StateVector, error) {
	row, ok := deRows[body]
	if !ok {
		return StateVector{}, fmt.Errorf("%s: %w", body, ErrBodyUnavailable)
	}
	var want [iptRows]bool
	want[row] = true
	if body == Moon {
		want[iptEMB] = true
	}
	pv, err := d.state(jde, want, true)
	if err != nil {
		return StateVector{}, err
	}

	v := pv[row]
	if body == Moon {
		// Moon = EMB + Moon(geocentric) * EMRAT/(1+EMRAT)
		k := d.h.emrat / (1 + d.h.emrat)
		for i := range v {
			v[i] = pv[iptEMB][i] + pv[iptMoon][i]*k
		}
	}
	return StateVector{
		Position: [3]float64{v[0], v[1], v[2]},
		Velocity: [3]float64{v[3], v[4], v[5]},
	}, nil
}

// Geocentric implements Engine. The mean node comes from the analytic
// formula; Chiron is not part of DE files.
func (d *DE) Geocentric(jde float64, body Body) (Position, error) {
	if body == NorthNode {
		return withSpeed(jde, func(t float64) (float64, float64, float64, error) {
			dpsi, err := d.nutationLongitude(t)
			if err != nil {
				return 0, 0, 0, err
			}
			return normalizeDegrees(meanNode(t) + dpsi), 0, meanLunarDistance, nil
		})
	}
	row, ok := deRows[body]
	if !ok {
		return Position{}, fmt.Errorf("%s: %w", body, ErrBodyUnavailable)
	}
	return withSpeed(jde, func(t float64) (float64, float64, float64, error) {
		return d.apparent(t, row)
	})
}

func (d *DE) apparent(jde float64, row int) (lon, lat, dist float64, err error) {
	dpsi, err := d.nutationLongitude(jde)
	if err != nil {
		return 0, 0, 0, err
	}
	toDate := icrfToEclipticOfDate(jde)

	if row == iptMoon {
		// A retarded geocentric vector needs no annual aberration.
		var v [3]float64
		tau := 0.0
		for i := 0; i < 2; i++ {
			if v, err = d.position(jde-tau, iptMoon); err != nil {
				return 0, 0, 0, err
			}
			tau = lightDayPerAU * length(v)
		}
		lon, lat, dist = eclipticSpherical(rotate(toDate, v))
		return normalizeDegrees(lon + dpsi), lat, dist, nil
	}

	earth, err := d.earth(jde)
	if err != nil {
		return 0, 0, 0, err
	}
	var v [3]float64
	tau := 0.0
	for i := 0; i < 3; i++ {
		p, err := d.position(jde-tau, row)
		if err != nil {
			return 0, 0, 0, err
		}
		v = [3]float64{p[0] - earth[0], p[1] - earth[1], p[2] - earth[2]}
		tau = lightDayPerAU * length(v)
	}
	lon, lat, dist = eclipticSpherical(rotate(toDate, v))
	lon, lat = toApparent(jde, lon, lat, dpsi)
	return lon, lat, dist, nil
}

// earth returns the barycentric Earth: EMB - Moon/(1+EMRAT).
func (d *DE) earth(jde float64) ([3]float64, error) {
	var want [iptRows]bool
	want[iptEMB], want[iptMoon] = true, true
	pv, err := d.state(jde, want, false)
	if err != nil {
		return [3]float64{}, err
	}
	k := 1 / (1 + d.h.emrat)
	return [3]float64{
		pv[iptEMB][0] - pv[iptMoon][0]*k,
		pv[iptEMB][1] - pv[iptMoon][1]*k,
		pv[iptEMB][2] - pv[iptMoon][2]*k,
	}, nil
}

func (d *DE) position(jde float64, row int) ([3]float64, error) {
	var want [iptRows]bool
	want[row] = true
	pv, err := d.state(jde, want, false)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{pv[row][0], pv[row][1], pv[row][2]}, nil
}

// nutationLongitude uses the file's nutation series when present and the
// IAU 1980 series otherwise.
func (d *DE) nutationLongitude(jde float64) (float64, error) {
	if d.h.ipt[iptNutations][1] == 0 {
		if err := d.covers(jde); err != nil {
			return 0, err
		}
		dpsi, _ := nutationDeg(jde)
		return dpsi, nil
	}
	var want [iptRows]bool
	want[iptNutations] = true
	pv, err := d.state(jde, want, false)
	if err != nil {
		return 0, err
	}
	return pv[iptNutations][0] / deg, nil
}

func length(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
