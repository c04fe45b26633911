// ./gates/gates.go

/*
Package gates maps ecliptic longitudes onto the 64 Human Design gates and the
27 Vedic nakshatras.

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
package gates

import "math"

const (
	// Count is the number of gates on the wheel.
	Count = 64
	// Width is the arc covered by a single gate, in degrees.
	Width = 360.0 / Count
	// Offset is added to a tropical longitude before it is binned.
	Offset = 46.0
)

// Godhead is a named run of four consecutive gates on the wheel.
type Godhead struct {
	Name  string
	Gates [4]int
}

// Quarter is one of the four thematic phases of the wheel.
type Quarter struct {
	Name     string
	Godheads [4]Godhead
}

// Quarters is the official wheel, in bin order.
var Quarters = [4]Quarter{
	{Name: "Initiation", Godheads: [4]Godhead{
		{Name: "Kali", Gates: [4]int{13, 49, 30, 55}},
		{Name: "Mitra", Gates: [4]int{37, 63, 22, 36}},
		{Name: "Michael", Gates: [4]int{25, 17, 21, 51}},
		{Name: "Janus", Gates: [4]int{42, 3, 27, 24}},
	}},
	{Name: "Civilization", Godheads: [4]Godhead{
		{Name: "Maia", Gates: [4]int{2, 23, 8, 20}},
		{Name: "Lakshmi", Gates: [4]int{16, 35, 45, 12}},
		{Name: "Parvati", Gates: [4]int{15, 52, 39, 53}},
		{Name: "Ma'at", Gates: [4]int{62, 56, 31, 33}},
	}},
	{Name: "Duality", Godheads: [4]Godhead{
		{Name: "Thoth", Gates: [4]int{7, 4, 29, 59}},
		{Name: "Harmonia", Gates: [4]int{40, 64, 47, 6}},
		{Name: "Christ Consciousness Field", Gates: [4]int{46, 18, 48, 57}},
		{Name: "Minerva", Gates: [4]int{44, 28, 50, 32}},
	}},
	{Name: "Mutation", Godheads: [4]Godhead{
		{Name: "Hades", Gates: [4]int{1, 43, 14, 34}},
		{Name: "Prometheus", Gates: [4]int{9, 5, 26, 11}},
		{Name: "Vishnu", Gates: [4]int{10, 58, 38, 54}},
		{Name: "The Keepers of the Wheel", Gates: [4]int{60, 61, 41, 19}},
	}},
}

// Sequence is the official gate order: Sequence[i] is the gate occupying bin i.
var Sequence = [Count]int{
	13, 49, 30, 55, 37, 63, 22, 36, 25, 17, 21, 51, 42, 3, 27, 24,
	2, 23, 8, 20, 16, 35, 45, 12, 15, 52, 39, 53, 62, 56, 31, 33,
	7, 4, 29, 59, 40, 64, 47, 6, 46, 18, 48, 57, 44, 28, 50, 32,
	1, 43, 14, 34, 9, 5, 26, 11, 10, 58, 38, 54, 60, 61, 41, 19,
}

// bins[g] is the bin index of gate g, or -1 for values outside 1..64.
var bins = func() [Count + 1]int {
	var b [Count + 1]int
	b[0] = -1
	for i, g := range Sequence {
		b[g] = i
	}
	return b
}()

// LongitudeToGate returns the gate that contains an ecliptic longitude.
//
// Parameters:
//   - longitude: Degrees. Any finite value; it is reduced modulo 360 first.
//
// Returns:
//   - int: The gate number, 1 to 64, or 0 when longitude is NaN or infinite.
func LongitudeToGate(longitude float64) int {
	if !finite(longitude) {
		return 0
	}
	return Sequence[binOf(longitude)]
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func binOf(longitude float64) int {
	idx := int(math.Floor(normalize(longitude+Offset) / Width))
	if idx > Count-1 {
		idx = Count - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Bin returns the wheel position (0..63) of a gate.
func Bin(gate int) (int, bool) {
	if gate < 1 || gate > Count {
		return 0, false
	}
	return bins[gate], true
}

// GodheadOf returns the godhead a gate belongs to.
func GodheadOf(gate int) (Godhead, bool) {
	b, ok := Bin(gate)
	if !ok {
		return Godhead{}, false
	}
	return Quarters[b/16].Godheads[(b%16)/4], true
}

// QuarterOf returns the name of the quarter a gate belongs to.
func QuarterOf(gate int) (string, bool) {
	b, ok := Bin(gate)
	if !ok {
		return "", false
	}
	return Quarters[b/16].Name, true
}

// normalize reduces an angle into [0, 360).
func normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
