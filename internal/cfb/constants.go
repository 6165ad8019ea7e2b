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

// File signature for OLE2 / Compound File Binary containers.
const headerSignature uint64 = 0xE11AB1A1E011CFD0

// Fixed header constants for a v3 container.
const (
	versionMajor uint16 = 0x0003
	versionMinor uint16 = 0x003E
	byteOrder    uint16 = 0xFFFE // little-endian byte-order mark

	sectorShift     uint16 = 0x0009 // 512-byte sectors
	miniSectorShift uint16 = 0x0006 // 64-byte minisectors
)

// Sector and entry geometry (v3).
const (
	HeaderSize     = 512
	SectorSize     = 512
	MiniSectorSize = 64

	// MiniStreamCutoff is the stream size below which payloads are packed
	// into the mini-stream rather than regular sectors.
	MiniStreamCutoff = 4096

	dirEntrySize = 128

	fatEntriesPerSector = SectorSize / 4
	dirEntriesPerSector = SectorSize / dirEntrySize

	// A DIFAT sector holds 127 FAT-sector numbers; the last 4 bytes are
	// the next_difat chain pointer.
	difatEntriesPerSector = SectorSize/4 - 1

	// The first 109 DIFAT entries live in the header.
	headerDifatEntries = 109
)

// Special sector values.
//
// Regular sectors are numbered 0x00000000-0xFFFFFFF9; everything above
// MaxRegSect is a sentinel.
const (
	MaxRegSect uint32 = 0xFFFFFFFA // maximum regular sector number
	DifSect    uint32 = 0xFFFFFFFC // sector holds DIFAT entries
	FatSect    uint32 = 0xFFFFFFFD // sector holds FAT entries
	EndOfChain uint32 = 0xFFFFFFFE // terminates a sector chain
	FreeSect   uint32 = 0xFFFFFFFF // unallocated sector
	NoStream   uint32 = 0xFFFFFFFF // directory sibling/child: none
)

// Directory entry object types.
const (
	typeUnallocated uint8 = 0x00
	typeStorage     uint8 = 0x01
	typeStream      uint8 = 0x02
	typeRootStorage uint8 = 0x05
)

// Directory entry red-black colors.
const (
	colorRed   uint8 = 0x00
	colorBlack uint8 = 0x01
)

// sectorOffset returns the byte offset of sector n. The 512-byte header
// occupies "sector -1", so sector 0 starts right after it.
func sectorOffset(n uint32) int {
	return SectorSize * (int(n) + 1)
}
