// ./ephemeris/de_test.go
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
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixtureAU      = 149597870.7
	fixtureEMRAT   = 81.30056
	fixtureStart   = 2451536.5
	fixtureStep    = 32.0
	fixtureRecords = 2
	fixtureNcf     = 13
)

var fixtureConstants = []Constant{
	{Name: "DENUM", Value: 405},
	{Name: "AU", Value: fixtureAU},
	{Name: "EMRAT", Value: fixtureEMRAT},
	{Name: "GMS", Value: 2.959122082855911e-04},
}

// writeDE writes a small DE405-shaped file: rows 0-10 carry 13 coefficients
// over one sub-interval, rows 11-14 are absent. Every series is zero except
// the constant term of the Earth-Moon barycentre's x component, which sits
// 1 AU from the solar-system barycentre, so the Sun is seen exactly at
// ICRF longitude 180 degrees.
func writeDE(t *testing.T, order binary.ByteOrder, emrat float64) string {
	t.Helper()

	var ipt [iptRows][3]uint32
	kernel := 4
	for row := 0; row <= iptSun; row++ {
		ipt[row] = [3]uint32{uint32(3 + 39*row), fixtureNcf, 1}
		kernel += 2 * fixtureNcf * 3
	}
	recsize := kernel * 4
	ncoeff := kernel / 2

	header := make([]byte, recsize)
	copy(header, "JPL Planetary Ephemeris DE405/LE405")
	for i, c := range fixtureConstants {
		copy(header[titleSize*3+i*constNameSize:], fmt.Sprintf("%-6s", c.Name))
	}
	off := headerOffset
	putF := func(v float64) {
		order.PutUint64(header[off:], math.Float64bits(v))
		off += 8
	}
	putU := func(v uint32) {
		order.PutUint32(header[off:], v)
		off += 4
	}
	putF(fixtureStart)
	putF(fixtureStart + fixtureStep*fixtureRecords)
	putF(fixtureStep)
	putU(uint32(len(fixtureConstants)))
	putF(fixtureAU)
	putF(emrat)
	for row := 0; row < iptLibrations; row++ {
		for j := 0; j < 3; j++ {
			putU(ipt[row][j])
		}
	}
	putU(405)
	putU(0)
	putU(0)
	putU(0)
	require.Equal(t, extraNamesOffset, off)

	values := make([]byte, recsize)
	for i, c := range fixtureConstants {
		order.PutUint64(values[i*8:], math.Float64bits(c.Value))
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(values)
	for rec := 0; rec < fixtureRecords; rec++ {
		data := make([]float64, ncoeff)
		data[0] = fixtureStart + float64(rec)*fixtureStep
		data[1] = data[0] + fixtureStep
		data[ipt[iptEMB][0]-1] = fixtureAU
		require.NoError(t, binary.Write(&buf, order, data))
	}

	path := filepath.Join(t.TempDir(), "lnxp-fixture.405")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func openFixture(t *testing.T, order binary.ByteOrder) *DE {
	t.Helper()
	d, err := OpenDE(writeDE(t, order, fixtureEMRAT))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpenDEHeader(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)

	want := DEInfo{
		Name:         "DE405/LE405",
		Version:      405,
		Start:        fixtureStart,
		End:          fixtureStart + fixtureStep*fixtureRecords,
		Step:         fixtureStep,
		AU:           fixtureAU,
		EMRAT:        fixtureEMRAT,
		Constants:    len(fixtureConstants),
		RecordSize:   3448,
		Coefficients: 431,
	}
	if diff := cmp.Diff(want, d.Info()); diff != "" {
		t.Errorf("Info() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "de405", d.Name())
	assert.False(t, d.ConcurrentSafe())
}

func TestDEConstants(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)
	got, err := d.Constants()
	require.NoError(t, err)
	if diff := cmp.Diff(fixtureConstants, got); diff != "" {
		t.Errorf("Constants() mismatch (-want +got):\n%s", diff)
	}
}

func TestDEGeocentricSun(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)

	pos, err := d.Geocentric(j2000, Sun)
	require.NoError(t, err)
	// 180 degrees shifted by nutation and aberration, both under 20".
	assert.InDelta(t, 180, pos.Longitude, 0.02)
	assert.InDelta(t, 0, pos.Latitude, 1e-9)
	assert.InDelta(t, 1, pos.Distance, 1e-12)
	assert.InDelta(t, 0, pos.LongitudeSpeed, 0.001)
}

func TestDEBigEndian(t *testing.T) {
	le := openFixture(t, binary.LittleEndian)
	be := openFixture(t, binary.BigEndian)

	assert.True(t, be.Info().BigEndian)
	assert.False(t, le.Info().BigEndian)

	want, err := le.Geocentric(j2000, Sun)
	require.NoError(t, err)
	got, err := be.Geocentric(j2000, Sun)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	consts, err := be.Constants()
	require.NoError(t, err)
	assert.Equal(t, fixtureConstants, consts)
}

func TestDEBarycentric(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)

	sun, err := d.Barycentric(j2000, Sun)
	require.NoError(t, err)
	assert.Equal(t, StateVector{}, sun)

	// With no geocentric lunar offset the Moon sits on the barycentre of the pair.
	moon, err := d.Barycentric(j2000, Moon)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0, 0}, moon.Position[:], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, moon.Velocity[:], 1e-12)

	_, err = d.Barycentric(j2000, Chiron)
	assert.ErrorIs(t, err, ErrBodyUnavailable)
}

func TestDERecordBoundaries(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)
	start, end := d.Range()

	for _, jde := range []float64{start, start + fixtureStep, end} {
		_, err := d.Barycentric(jde, Sun)
		assert.NoError(t, err, "JED %.1f", jde)
	}
	_, err := d.Barycentric(end+1, Sun)
	assert.ErrorIs(t, err, ErrOutsideRange)
	_, err = d.Barycentric(start-1, Sun)
	assert.ErrorIs(t, err, ErrOutsideRange)
}

func TestDEGeocentricErrors(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)

	_, err := d.Geocentric(2460000.5, Sun)
	assert.ErrorIs(t, err, ErrOutsideRange)

	_, err = d.Geocentric(j2000, Chiron)
	assert.ErrorIs(t, err, ErrBodyUnavailable)
	_, err = d.Geocentric(j2000, SouthNode)
	assert.ErrorIs(t, err, ErrBodyUnavailable)
}

func TestDENodeMatchesAnalytic(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)

	got, err := d.Geocentric(j2000, NorthNode)
	require.NoError(t, err)
	want, err := NewAnalytic().Geocentric(j2000, NorthNode)
	require.NoError(t, err)
	assert.InDelta(t, want.Longitude, got.Longitude, 1e-9)
}

func TestDEProviderOmitsChiron(t *testing.T) {
	p := NewProvider(openFixture(t, binary.LittleEndian))
	assert.True(t, p.serialize)

	pos, err := p.Positions(j2000-64.0/86400, Tropical) // UT such that TT is near J2000
	require.NoError(t, err)
	_, ok := pos.Get(Chiron)
	assert.False(t, ok)
	assert.Len(t, pos, len(Mandatory)+1)
}

func TestOpenDERejectsBadFiles(t *testing.T) {
	_, err := OpenDE(writeDE(t, binary.LittleEndian, 80))
	assert.ErrorIs(t, err, ErrCorruptFile)

	short := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(short, []byte("JPL"), 0o644))
	_, err = OpenDE(short)
	assert.ErrorIs(t, err, ErrCorruptFile)

	_, err = OpenDE(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestChebyshevInterp(t *testing.T) {
	// 1 + 2x + 3(2x^2 - 1) at x = 0.5 is 0.5; its derivative 2 + 12x is 8.
	c := newChebyshev()
	out := make([]float64, 2)
	c.interp([]float64{1, 2, 3}, 0.75, 32, 3, 1, 1, true, out)
	assert.InDelta(t, 0.5, out[0], 1e-12)
	assert.InDelta(t, 8*2.0/32, out[1], 1e-12)

	// Two sub-intervals: frac 0.75 falls in the second at its midpoint.
	c = newChebyshev()
	c.interp([]float64{9, 9, 9, 1, 2, 3}, 0.75, 32, 3, 1, 2, false, out)
	assert.InDelta(t, -2, out[0], 1e-12)

	// The end of the last sub-interval evaluates at x = 1.
	c = newChebyshev()
	c.interp([]float64{1, 2, 3}, 1, 32, 3, 1, 1, false, out)
	assert.InDelta(t, 6, out[0], 1e-12)
}

func TestMasses(t *testing.T) {
	consts := []Constant{
		{Name: "AU", Value: fixtureAU},
		{Name: "EMRAT", Value: 81.3},
		{Name: "GMS", Value: 2.959122082855911e-04},
		{Name: "GM1", Value: 4.912480450364760e-11},
		{Name: "GMB", Value: 8.997011390199871e-10},
		{Name: "MA0001", Value: 1.400476556172344e-13},
		{Name: "GMX", Value: 1},
	}
	got := Masses(consts)

	names := make([]string, len(got))
	for i, m := range got {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"sun", "mercury", "earth_moon_barycenter", "earth", "moon", "ceres"}, names)

	sun := got[0]
	assert.Equal(t, 1.0, sun.SunRatio)
	// GMS in km³/s² is the heliocentric gravitational constant.
	assert.InDelta(t, 1.32712440e11, sun.GMKm, 1e3)

	earth, moon := got[3], got[4]
	assert.InDelta(t, 81.3, earth.GM/moon.GM, 1e-9)
	assert.InDelta(t, got[2].GM, earth.GM+moon.GM, 1e-24)
	assert.InDelta(t, 6.0236e6, got[1].Reciprocal, 1e3)
}

func TestMassesFromFixture(t *testing.T) {
	d := openFixture(t, binary.LittleEndian)
	consts, err := d.Constants()
	require.NoError(t, err)
	got := Masses(consts)
	require.Len(t, got, 1)
	assert.Equal(t, "sun", got[0].Name)
}
