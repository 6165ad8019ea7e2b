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

// Byte offset of the 109-entry DIFAT array inside the header.
const headerDifatOffset = 76

// difatMgr maintains the logical array of FAT-sector numbers. The first 109
// entries live in the header; overflow entries live in DIFAT sectors of 127
// entries plus a next_difat chain pointer in the last 4 bytes.
type difatMgr struct {
	w   *writer
	fat *fatMgr
}

// allocate reserves the planned DIFAT sectors, chains them via next_difat,
// marks each DIFSECT in the primary FAT, then records every FAT sector's
// number in FAT order. Unused slots stay FREESECT.
func (m *difatMgr) allocate() error {
	for i := 0; i < m.w.plan.difatSectors; i++ {
		num, off, err := m.w.allocSector()
		if err != nil {
			return err
		}
		for e := 0; e < difatEntriesPerSector; e++ {
			m.w.putUint32(off+e*4, FreeSect)
		}
		m.w.putUint32(off+difatEntriesPerSector*4, EndOfChain)

		if i > 0 {
			prev := m.w.difatSectors[i-1]
			m.w.putUint32(sectorOffset(prev)+difatEntriesPerSector*4, num)
		}

		m.w.difatSectors = append(m.w.difatSectors, num)
		m.fat.update(m.w.nextFAT, DifSect)
		m.w.nextFAT++
	}

	for i, fs := range m.w.fatSectors {
		m.update(uint32(i), fs)
	}
	// The header array is part of the zeroed buffer; mark the slots beyond
	// the populated prefix FREESECT.
	for i := len(m.w.fatSectors); i < headerDifatEntries; i++ {
		m.update(uint32(i), FreeSect)
	}
	return nil
}

func (m *difatMgr) update(index, value uint32) {
	if index < headerDifatEntries {
		m.w.putUint32(headerDifatOffset+int(index)*4, value)
		return
	}
	rest := index - headerDifatEntries
	sector := m.w.difatSectors[rest/difatEntriesPerSector]
	slot := int(rest%difatEntriesPerSector) * 4
	m.w.putUint32(sectorOffset(sector)+slot, value)
}
