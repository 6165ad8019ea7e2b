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

// layoutPlan is the complete sector budget of the file, computed before a
// single byte is written. Allocation consumes exactly the sectors counted
// here; trailing FREESECT entries in the last FAT sector come only from
// 128-entry rounding.
type layoutPlan struct {
	dirEntries int
	dirSectors int

	miniSectors       int // 64-byte minisectors used by small payloads
	minifatSectors    int // regular sectors holding MiniFAT entries
	miniStreamSectors int // regular sectors holding the mini-stream itself

	largeSectors int // regular sectors holding payloads >= the cutoff

	fatSectors   int
	difatSectors int

	totalSectors int
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// difatSectorsFor returns the number of overflow DIFAT sectors needed to
// describe fatSectors FAT sectors, beyond the 109 header entries.
func difatSectorsFor(fatSectors int) int {
	if fatSectors <= headerDifatEntries {
		return 0
	}
	return ceilDiv(fatSectors-headerDifatEntries, difatEntriesPerSector)
}

// planLayout computes the sector counts of every file region.
//
// FAT sizing is mutually recursive: the FAT holds one entry per sector,
// including its own sectors and any DIFAT sectors, and the DIFAT grows with
// the FAT. The count is iterated to a fixed point; each round only ever
// grows the estimate, so it converges in a handful of steps.
func planLayout(entries []Entry, nodes []treeNode) layoutPlan {
	var p layoutPlan

	for _, n := range nodes {
		if !n.isFile {
			continue
		}
		size := len(entries[n.payload].Data)
		if size >= MiniStreamCutoff {
			p.largeSectors += ceilDiv(size, SectorSize)
		} else {
			p.miniSectors += ceilDiv(size, MiniSectorSize)
		}
	}

	p.dirEntries = len(nodes) + 1 // plus the Root Entry
	p.dirSectors = ceilDiv(p.dirEntries*dirEntrySize, SectorSize)

	p.minifatSectors = ceilDiv(p.miniSectors*4, SectorSize)
	p.miniStreamSectors = ceilDiv(p.miniSectors*MiniSectorSize, SectorSize)

	// Sectors that carry chained data and therefore need a FAT entry each.
	chained := p.dirSectors + p.minifatSectors + p.miniStreamSectors + p.largeSectors

	for {
		difat := difatSectorsFor(p.fatSectors)
		need := ceilDiv(chained+p.fatSectors+difat, fatEntriesPerSector)
		if need == p.fatSectors {
			p.difatSectors = difat
			break
		}
		p.fatSectors = need
	}

	p.totalSectors = p.fatSectors + p.difatSectors + chained
	return p
}

// totalBytes is the size of the output buffer: the header plus every sector.
func (p layoutPlan) totalBytes() int {
	return HeaderSize + p.totalSectors*SectorSize
}

// miniStreamBytes is the size of the mini-stream side buffer.
func (p layoutPlan) miniStreamBytes() int {
	return p.miniSectors * MiniSectorSize
}
