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

import "encoding/binary"

// patchHeader fills in the 512-byte header once every sector start and
// count is known. The header CLSID stays zeroed (the root CLSID lives in
// the Root Entry); the DIFAT array at offset 76 was already populated by
// the DIFAT manager.
//
// Header layout:
//
//	0x00  signature            8 bytes
//	0x08  clsid               16 bytes, zero
//	0x18  version_minor        2 bytes
//	0x1A  version_major        2 bytes
//	0x1C  byte_order           2 bytes
//	0x1E  sector_shift         2 bytes
//	0x20  mini_sector_shift    2 bytes
//	0x22  reserved             6 bytes, zero
//	0x28  dir_sector_count     4 bytes, always zero in v3
//	0x2C  fat_sector_count     4 bytes
//	0x30  dir_start            4 bytes
//	0x34  txn_signature        4 bytes, zero
//	0x38  mini_cutoff          4 bytes
//	0x3C  minifat_start        4 bytes
//	0x40  minifat_count        4 bytes
//	0x44  difat_start          4 bytes
//	0x48  difat_count          4 bytes
//	0x4C  difat entries      109 x 4 bytes
func (w *writer) patchHeader() {
	b := w.buf[:HeaderSize]

	binary.LittleEndian.PutUint64(b[0:8], headerSignature)
	binary.LittleEndian.PutUint16(b[24:26], versionMinor)
	binary.LittleEndian.PutUint16(b[26:28], versionMajor)
	binary.LittleEndian.PutUint16(b[28:30], byteOrder)
	binary.LittleEndian.PutUint16(b[30:32], sectorShift)
	binary.LittleEndian.PutUint16(b[32:34], miniSectorShift)

	binary.LittleEndian.PutUint32(b[44:48], uint32(len(w.fatSectors)))
	binary.LittleEndian.PutUint32(b[48:52], w.dirStart)
	binary.LittleEndian.PutUint32(b[56:60], MiniStreamCutoff)

	if len(w.minifatSectors) > 0 {
		binary.LittleEndian.PutUint32(b[60:64], w.minifatSectors[0])
		binary.LittleEndian.PutUint32(b[64:68], uint32(len(w.minifatSectors)))
	} else {
		binary.LittleEndian.PutUint32(b[60:64], EndOfChain)
	}

	if len(w.difatSectors) > 0 {
		binary.LittleEndian.PutUint32(b[68:72], w.difatSectors[0])
		binary.LittleEndian.PutUint32(b[72:76], uint32(len(w.difatSectors)))
	} else {
		binary.LittleEndian.PutUint32(b[68:72], EndOfChain)
	}
}
