// ./ephemeris/de_reader.go
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
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// readHeader decodes record 0 of a DE file and derives the record layout.
func readHeader(r io.ReadSeeker) (*deHeader, error) {
	title := make([]byte, titleSize)
	if _, err := io.ReadFull(r, title); err != nil {
		return nil, fmt.Errorf("%w: reading title: %v", ErrCorruptFile, err)
	}
	if _, err := r.Seek(headerOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to header: %w", err)
	}
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCorruptFile, err)
	}

	h := &deHeader{order: detectByteOrder(raw)}
	f := byteField{buf: raw, order: h.order}
	h.start = f.float64At(0)
	h.end = f.float64At(8)
	h.step = f.float64At(16)
	h.ncon = f.uint32At(24)
	h.au = f.float64At(28)
	h.emrat = f.float64At(36)
	for row := 0; row < iptLibrations; row++ {
		for j := 0; j < 3; j++ {
			h.ipt[row][j] = f.uint32At(44 + (row*3+j)*4)
		}
	}
	// The DE number sits between ipt[11] and the libration row.
	for j := 0; j < 3; j++ {
		h.ipt[iptLibrations][j] = f.uint32At(192 + j*4)
	}

	version, name, err := parseTitle(title)
	if err != nil {
		return nil, err
	}
	h.version, h.name = version, name

	if version >= 430 && h.ncon != maxNamedConst {
		if h.ncon > maxNamedConst {
			if _, err := r.Seek(int64(h.ncon-maxNamedConst)*constNameSize, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("seeking past constant names: %w", err)
			}
		}
		extra := make([]byte, 6*4)
		if _, err := io.ReadFull(r, extra); err != nil {
			return nil, fmt.Errorf("%w: reading ipt rows 13-14: %v", ErrCorruptFile, err)
		}
		ef := byteField{buf: extra, order: h.order}
		for j := 0; j < 3; j++ {
			h.ipt[iptMantle][j] = ef.uint32At(j * 4)
			h.ipt[iptTTTDB][j] = ef.uint32At(12 + j*4)
		}
	}
	// Rows 13 and 14 are trusted only when each starts where the previous ends.
	lib, mantle := h.ipt[iptLibrations], h.ipt[iptMantle]
	if mantle[0] != lib[0]+lib[1]*lib[2]*3 || h.ipt[iptTTTDB][0] != mantle[0]+mantle[1]*mantle[2]*3 {
		h.ipt[iptMantle] = [3]uint32{}
		h.ipt[iptTTTDB] = [3]uint32{}
	}

	if h.emrat > 81.3008 || h.emrat < 81.30055 {
		return nil, fmt.Errorf("%w: Earth/Moon mass ratio %f out of range", ErrCorruptFile, h.emrat)
	}
	if !(h.step > 0) || !(h.end > h.start) || !(h.au > 0) {
		return nil, fmt.Errorf("%w: bad time span [%f, %f] step %f", ErrCorruptFile, h.start, h.end, h.step)
	}

	h.kernelSize = 4
	for row := 0; row < iptRows; row++ {
		p := h.ipt[row]
		h.kernelSize += 2 * p[1] * p[2] * uint32(quantityDimension(row))
	}
	h.recsize = h.kernelSize * 4
	h.ncoeff = h.kernelSize / 2

	for row := 0; row < iptRows; row++ {
		p := h.ipt[row]
		if p[1] == 0 {
			continue
		}
		if p[1] >= maxCheby {
			return nil, fmt.Errorf("%w: row %d has %d coefficients", ErrCorruptFile, row, p[1])
		}
		if p[2] != 1 && p[2] != 2 && p[2] != 4 && p[2] != 8 {
			return nil, fmt.Errorf("%w: row %d has %d sub-intervals", ErrCorruptFile, row, p[2])
		}
		if p[0] == 0 || p[0]-1+p[1]*p[2]*uint32(quantityDimension(row)) > h.ncoeff {
			return nil, fmt.Errorf("%w: row %d overruns the record", ErrCorruptFile, row)
		}
	}
	return h, nil
}

// parseTitle extracts the DE number and the short ephemeris name from the
// first title line. INPOP files put both at the start of the line.
func parseTitle(title []byte) (int, string, error) {
	verField, nameField := title[26:54], title[24:54]
	if bytes.HasPrefix(title, []byte("INPOP")) {
		verField, nameField = title[5:30], title[:30]
	}

	digits := strings.TrimLeft(string(verField), " ")
	if end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); end >= 0 {
		digits = digits[:end]
	}
	version, err := strconv.Atoi(digits)
	if err != nil {
		return 0, "", fmt.Errorf("%w: no DE number in title %q", ErrCorruptFile, bytes.TrimRight(title, " \x00"))
	}

	if i := bytes.IndexByte(nameField, 0); i >= 0 {
		nameField = nameField[:i]
	}
	name := ""
	if parts := strings.Fields(string(nameField)); len(parts) > 0 {
		name = parts[0]
	}
	return version, name, nil
}

// interp evaluates ncm components of a Chebyshev series at frac (0..1) of a
// record spanning span days and split into na sub-intervals. Positions are
// written to out[:ncm] and, when vel is set, daily rates to out[ncm:2*ncm].
func (c *chebyshev) interp(coef []float64, frac, span float64, ncf, ncm, na uint, vel bool, out []float64) {
	dna := float64(na)
	whole, part := math.Modf(dna * frac)
	l := uint(whole)
	tc := 2*part - 1
	if l == na {
		l--
		tc = 1
	}

	if tc != c.posn[1] {
		c.nPosn, c.nVel = 2, 2
		c.posn[1] = tc
		c.twot = tc + tc
	}
	for i := c.nPosn; i < ncf; i++ {
		c.posn[i] = c.twot*c.posn[i-1] - c.posn[i-2]
	}
	if c.nPosn < ncf {
		c.nPosn = ncf
	}

	for i := uint(0); i < ncm; i++ {
		cf := coef[ncf*(i+l*ncm):]
		sum := 0.0
		for j := uint(0); j < ncf; j++ {
			sum += c.posn[j] * cf[j]
		}
		out[i] = sum
	}
	if !vel {
		return
	}

	for i := c.nVel; i < ncf; i++ {
		c.vel[i] = c.twot*c.vel[i-1] + 2*c.posn[i-1] - c.vel[i-2]
	}
	if c.nVel < ncf {
		c.nVel = ncf
	}

	vfac := (dna + dna) / span
	for i := uint(0); i < ncm; i++ {
		cf := coef[ncf*(i+l*ncm):]
		sum := 0.0
		for j := uint(1); j < ncf; j++ {
			sum += c.vel[j] * cf[j]
		}
		out[ncm+i] = sum * vfac
	}
}

// load reads data record nr into the cache unless it is already there.
func (d *DE) load(nr uint32) error {
	if d.cached && nr == d.cacheLoc {
		return nil
	}
	if _, err := d.file.Seek(int64(nr+2)*int64(d.h.recsize), io.SeekStart); err != nil {
		return fmt.Errorf("seeking to record %d: %w", nr, err)
	}
	if _, err := io.ReadFull(d.file, d.raw); err != nil {
		d.cached = false
		return fmt.Errorf("reading record %d: %w", nr, err)
	}
	decodeFloat64s(d.cache, d.raw, d.h.order)
	d.cacheLoc, d.cached = nr, true
	return nil
}

// state interpolates the rows flagged in want at et. Bodies come back in AU
// (and AU/day) relative to the solar-system barycentre, except the Moon row,
// which is geocentric. Nutations stay in radians.
func (d *DE) state(et float64, want [iptRows]bool, vel bool) ([iptRows][6]float64, error) {
	var pv [iptRows][6]float64
	if err := d.covers(et); err != nil {
		return pv, err
	}

	block := (et - d.h.start) / d.h.step
	nr := uint32(block)
	frac := block - float64(nr)
	if frac == 0 && nr != 0 {
		frac = 1
		nr--
	}
	if err := d.load(nr); err != nil {
		return pv, err
	}

	aufac := 1 / d.h.au
	// Rows are visited grouped by sub-interval count so rows sharing a
	// Chebyshev argument reuse the cached polynomials.
	for na := uint32(1); na <= 8; na *= 2 {
		for row := 0; row < iptRows; row++ {
			p := d.h.ipt[row]
			if !want[row] || p[1] == 0 || p[2] != na {
				continue
			}
			ncm := uint(quantityDimension(row))
			d.cheb.interp(d.cache[p[0]-1:], frac, d.h.step, uint(p[1]), ncm, uint(na), vel, pv[row][:])
			if row <= iptSun {
				for j := range pv[row] {
					pv[row][j] *= aufac
				}
			}
		}
	}
	return pv, nil
}

func (d *DE) covers(et float64) error {
	if et < d.h.start || et > d.h.end {
		return fmt.Errorf("JED %.4f not in [%.1f, %.1f]: %w", et, d.h.start, d.h.end, ErrOutsideRange)
	}
	return nil
}
