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

// fatMgr maintains the primary allocation table. Entries live directly in
// the output buffer; update writes entry i into FAT sector i/128 at slot
// i%128.
//
// Chain discipline: a stream writer marks each new sector ENDOFCHAIN, then
// for the second and later sectors of a chain patches the previous entry
// with the current sector number.
type fatMgr struct {
	w *writer
}

// allocate reserves the planned FAT sectors, initializes every entry to
// FREESECT and marks each reserved sector's own entry FATSECT. FAT sectors
// are the first sectors allocated, so entry index and sector number
// coincide here.
func (m *fatMgr) allocate() error {
	for i := 0; i < m.w.plan.fatSectors; i++ {
		num, off, err := m.w.allocSector()
		if err != nil {
			return err
		}
		for e := 0; e < fatEntriesPerSector; e++ {
			m.w.putUint32(off+e*4, FreeSect)
		}
		m.w.fatSectors = append(m.w.fatSectors, num)
		m.update(m.w.nextFAT, FatSect)
		m.w.nextFAT++
	}
	return nil
}

func (m *fatMgr) update(index, value uint32) {
	sector := m.w.fatSectors[index/fatEntriesPerSector]
	slot := int(index%fatEntriesPerSector) * 4
	m.w.putUint32(sectorOffset(sector)+slot, value)
}
