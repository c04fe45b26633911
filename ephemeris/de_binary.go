// ./ephemeris/de_binary.go
package ephemeris

/*
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/

import (
	"encoding/binary"
	"math"
)

// byteField reads fixed-width numbers out of a header buffer in one byte
// order. DE files are written in the producing machine's order, so the order
// is detected per file instead of being process-wide.
type byteField struct {
	buf   []byte
	order binary.ByteOrder
}

func (f byteField) uint32At(off int) uint32 {
	return f.order.Uint32(f.buf[off : off+4])
}

func (f byteField) float64At(off int) float64 {
	return math.Float64frombits(f.order.Uint64(f.buf[off : off+8]))
}

// detectByteOrder inspects the constant count at offset 24 of the numeric
// header. No DE file has more than 65536 constants, so a larger value means
// the file was written big-endian.
func detectByteOrder(header []byte) binary.ByteOrder {
	if binary.LittleEndian.Uint32(header[24:28]) > 65536 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// decodeFloat64s fills dst from raw bytes in the given order.
func decodeFloat64s(dst []float64, raw []byte, order binary.ByteOrder) {
	for i := range dst {
		dst[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
	}
}
