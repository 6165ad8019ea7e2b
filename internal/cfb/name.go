// Copyright (c) 2025 The gocfb authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cfb

import (
	"encoding/binary"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
)

// Directory entry names are capped at 31 UTF-16 code units plus the null
// terminator (64 bytes total).
const maxNameUnits = 31

// encodeName converts a name to UTF-16LE, truncating to 31 code units on a
// code-point boundary. It returns the encoded bytes including the null
// terminator, the code units without the terminator, and whether the name
// was truncated.
func encodeName(name string) ([]byte, []uint16, bool) {
	enc := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(name))
	if err != nil {
		b = nil
	}

	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}

	truncated := false
	if len(units) > maxNameUnits {
		units = units[:maxNameUnits]
		// Never split a surrogate pair: a dangling high surrogate at the
		// cut point is dropped along with its lost partner.
		if last := units[len(units)-1]; last >= 0xD800 && last < 0xDC00 {
			units = units[:len(units)-1]
		}
		truncated = true
	}

	out := make([]byte, (len(units)+1)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out, units, truncated
}

// upperUnit uppercases a single UTF-16 code unit. Surrogate halves and
// mappings that leave the BMP keep the original unit; the CFB comparison is
// defined on code units, not on locale-aware case folding.
func upperUnit(u uint16) uint16 {
	if u >= 0xD800 && u < 0xE000 {
		return u
	}
	r := unicode.ToUpper(rune(u))
	if r > 0xFFFF {
		return u
	}
	return uint16(r)
}

// compareNames orders directory names by the CFB key: shorter names first,
// then uppercased code-unit comparison.
func compareNames(a, b []uint16) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		ua, ub := upperUnit(a[i]), upperUnit(b[i])
		if ua != ub {
			if ua < ub {
				return -1
			}
			return 1
		}
	}
	return 0
}
