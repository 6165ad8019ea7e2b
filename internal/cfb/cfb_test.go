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

// Test-side decoding helpers. The shipped library is write-only; these walk
// the produced buffer just far enough to verify it.

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
)

type cfbFile struct {
	t   *testing.T
	buf []byte
}

func parseFile(t *testing.T, buf []byte) *cfbFile {
	t.Helper()
	require.GreaterOrEqual(t, len(buf), HeaderSize)
	require.Zero(t, len(buf)%SectorSize)
	return &cfbFile{t: t, buf: buf}
}

func (f *cfbFile) u32(off int) uint32 {
	return binary.LittleEndian.Uint32(f.buf[off : off+4])
}

func (f *cfbFile) sector(n uint32) []byte {
	off := sectorOffset(n)
	require.LessOrEqual(f.t, off+SectorSize, len(f.buf))
	return f.buf[off : off+SectorSize]
}

func (f *cfbFile) totalSectors() uint32 {
	return uint32(len(f.buf)/SectorSize - 1)
}

// Header field accessors.

func (f *cfbFile) fatCount() uint32      { return f.u32(44) }
func (f *cfbFile) dirStart() uint32      { return f.u32(48) }
func (f *cfbFile) minifatStart() uint32  { return f.u32(60) }
func (f *cfbFile) minifatCount() uint32  { return f.u32(64) }
func (f *cfbFile) difatStart() uint32    { return f.u32(68) }
func (f *cfbFile) difatCount() uint32    { return f.u32(72) }
func (f *cfbFile) headerDifat(i int) uint32 {
	return f.u32(headerDifatOffset + i*4)
}

// difat returns the populated prefix of the DIFAT: the FAT sector numbers.
func (f *cfbFile) difat() []uint32 {
	out := make([]uint32, 0, f.fatCount())
	for i := 0; i < headerDifatEntries && len(out) < int(f.fatCount()); i++ {
		out = append(out, f.headerDifat(i))
	}
	sn := f.difatStart()
	for sn != EndOfChain && len(out) < int(f.fatCount()) {
		s := f.sector(sn)
		for i := 0; i < difatEntriesPerSector && len(out) < int(f.fatCount()); i++ {
			out = append(out, binary.LittleEndian.Uint32(s[i*4:]))
		}
		sn = binary.LittleEndian.Uint32(s[difatEntriesPerSector*4:])
	}
	require.Len(f.t, out, int(f.fatCount()))
	return out
}

func (f *cfbFile) fatEntry(i uint32) uint32 {
	fat := f.difat()
	sn := fat[i/fatEntriesPerSector]
	return binary.LittleEndian.Uint32(f.sector(sn)[(i%fatEntriesPerSector)*4:])
}

func (f *cfbFile) minifatEntry(i uint32) uint32 {
	sectors := f.chain(f.minifatStart())
	sn := sectors[i/fatEntriesPerSector]
	return binary.LittleEndian.Uint32(f.sector(sn)[(i%fatEntriesPerSector)*4:])
}

// chain follows FAT pointers from start until ENDOFCHAIN, guarding against
// cycles.
func (f *cfbFile) chain(start uint32) []uint32 {
	var out []uint32
	seen := map[uint32]bool{}
	for sn := start; sn != EndOfChain; sn = f.fatEntry(sn) {
		require.LessOrEqual(f.t, sn, MaxRegSect, "chain escaped into sentinel values")
		require.False(f.t, seen[sn], "cycle at sector %d", sn)
		seen[sn] = true
		out = append(out, sn)
	}
	return out
}

func (f *cfbFile) miniChain(start uint32) []uint32 {
	var out []uint32
	seen := map[uint32]bool{}
	for sn := start; sn != EndOfChain; sn = f.minifatEntry(sn) {
		require.False(f.t, seen[sn], "minifat cycle at minisector %d", sn)
		seen[sn] = true
		out = append(out, sn)
	}
	return out
}

type testDirEntry struct {
	name    string
	nameLen uint16
	typ     uint8
	color   uint8
	left    uint32
	right   uint32
	child   uint32
	clsid   [16]byte
	start   uint32
	size    uint64
}

func (f *cfbFile) dirEntries() []testDirEntry {
	var out []testDirEntry
	for _, sn := range f.chain(f.dirStart()) {
		s := f.sector(sn)
		for j := 0; j < dirEntriesPerSector; j++ {
			b := s[j*dirEntrySize : (j+1)*dirEntrySize]
			e := testDirEntry{
				nameLen: binary.LittleEndian.Uint16(b[64:66]),
				typ:     b[66],
				color:   b[67],
				left:    binary.LittleEndian.Uint32(b[68:72]),
				right:   binary.LittleEndian.Uint32(b[72:76]),
				child:   binary.LittleEndian.Uint32(b[76:80]),
				start:   binary.LittleEndian.Uint32(b[116:120]),
				size:    binary.LittleEndian.Uint64(b[120:128]),
			}
			copy(e.clsid[:], b[80:96])
			if e.nameLen >= 2 {
				units := make([]uint16, e.nameLen/2-1)
				for k := range units {
					units[k] = binary.LittleEndian.Uint16(b[k*2:])
				}
				e.name = string(utf16.Decode(units))
			}
			out = append(out, e)
		}
	}
	return out
}

// entryByName returns the first allocated directory entry with that name.
func (f *cfbFile) entryByName(name string) testDirEntry {
	for _, e := range f.dirEntries() {
		if e.typ != typeUnallocated && e.name == name {
			return e
		}
	}
	f.t.Fatalf("no directory entry named %q", name)
	return testDirEntry{}
}

// miniStream concatenates the mini-stream's backing sectors.
func (f *cfbFile) miniStream() []byte {
	root := f.dirEntries()[0]
	if root.size == 0 {
		return nil
	}
	var out []byte
	for _, sn := range f.chain(root.start) {
		out = append(out, f.sector(sn)...)
	}
	return out[:root.size]
}

// streamBytes reproduces a stream's payload by walking the FAT or MiniFAT.
func (f *cfbFile) streamBytes(e testDirEntry) []byte {
	if e.size == 0 {
		return nil
	}
	var out []byte
	if e.size < MiniStreamCutoff {
		mini := f.miniStream()
		for _, ms := range f.miniChain(e.start) {
			out = append(out, mini[int(ms)*MiniSectorSize:int(ms+1)*MiniSectorSize]...)
		}
	} else {
		for _, sn := range f.chain(e.start) {
			out = append(out, f.sector(sn)...)
		}
	}
	return out[:e.size]
}
