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

// minifatMgr maintains the allocation table for 64-byte minisectors inside
// the mini-stream. The layout is identical to the FAT; the MiniFAT sectors
// themselves form a regular chain in the primary FAT.
type minifatMgr struct {
	w   *writer
	fat *fatMgr
}

// allocate reserves the planned MiniFAT sectors, initializes every entry to
// FREESECT and links the sectors into a chain in the primary FAT.
func (m *minifatMgr) allocate() error {
	for i := 0; i < m.w.plan.minifatSectors; i++ {
		num, off, err := m.w.allocSector()
		if err != nil {
			return err
		}
		for e := 0; e < fatEntriesPerSector; e++ {
			m.w.putUint32(off+e*4, FreeSect)
		}
		m.w.minifatSectors = append(m.w.minifatSectors, num)

		m.fat.update(m.w.nextFAT, EndOfChain)
		if i > 0 {
			m.fat.update(m.w.nextFAT-1, num)
		}
		m.w.nextFAT++
	}
	return nil
}

func (m *minifatMgr) update(index, value uint32) {
	sector := m.w.minifatSectors[index/fatEntriesPerSector]
	slot := int(index%fatEntriesPerSector) * 4
	m.w.putUint32(sectorOffset(sector)+slot, value)
}
