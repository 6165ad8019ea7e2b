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
	"sort"
)

// dirEntry is one 128-byte directory entry.
type dirEntry struct {
	name     [64]byte // UTF-16LE, null-terminated
	nameLen  uint16   // 0x40: bytes including the terminator
	objType  uint8    // 0x42
	color    uint8    // 0x43
	left     uint32   // 0x44: stream ID of left sibling, NOSTREAM if none
	right    uint32   // 0x48
	child    uint32   // 0x4C: root of this storage's child tree
	clsid    [16]byte // 0x50
	state    uint32   // 0x60
	created  uint64   // 0x64: FILETIME, always zero here
	modified uint64   // 0x6C
	start    uint32   // 0x74: first sector (root: first mini-stream sector)
	size     uint64   // 0x78: stream size (root: mini-stream size)
}

func (e *dirEntry) marshal(b []byte) {
	copy(b[0:64], e.name[:])
	binary.LittleEndian.PutUint16(b[64:66], e.nameLen)
	b[66] = e.objType
	b[67] = e.color
	binary.LittleEndian.PutUint32(b[68:72], e.left)
	binary.LittleEndian.PutUint32(b[72:76], e.right)
	binary.LittleEndian.PutUint32(b[76:80], e.child)
	copy(b[80:96], e.clsid[:])
	binary.LittleEndian.PutUint32(b[96:100], e.state)
	binary.LittleEndian.PutUint64(b[100:108], e.created)
	binary.LittleEndian.PutUint64(b[108:116], e.modified)
	binary.LittleEndian.PutUint32(b[116:120], e.start)
	binary.LittleEndian.PutUint64(b[120:128], e.size)
}

// dirBuilder emits the directory stream: the Root Entry, one entry per tree
// node, the balanced sibling trees, and unallocated padding in the final
// sector.
type dirBuilder struct {
	w   *writer
	fat *fatMgr
}

func (d *dirBuilder) build() error {
	entries := make([]dirEntry, d.w.plan.dirEntries)
	keys := make([][]uint16, len(entries))

	d.buildRoot(&entries[0])

	for i, n := range d.w.nodes {
		e := &entries[i+1]

		raw, units, truncated := encodeName(n.name)
		if truncated {
			d.w.warnf("name %q exceeds %d UTF-16 units, truncated", n.name, maxNameUnits)
		}
		copy(e.name[:], raw)
		e.nameLen = uint16(len(raw))
		keys[i+1] = units

		e.color = colorBlack
		e.left, e.right, e.child = NoStream, NoStream, NoStream

		if n.isFile {
			e.objType = typeStream
			e.start = d.w.streamStart[n.payload]
			e.size = uint64(len(d.w.entries[n.payload].Data))
		} else {
			e.objType = typeStorage
		}
	}

	d.linkSiblings(entries, keys)
	return d.write(entries)
}

func (d *dirBuilder) buildRoot(e *dirEntry) {
	raw, _, _ := encodeName("Root Entry")
	copy(e.name[:], raw)
	e.nameLen = uint16(len(raw))
	e.objType = typeRootStorage
	e.color = colorBlack
	e.left, e.right, e.child = NoStream, NoStream, NoStream
	e.clsid = d.w.clsid
	if len(d.w.mini) > 0 {
		e.start = d.w.miniStreamStart
		e.size = uint64(len(d.w.mini))
	}
}

// linkSiblings groups entries by parent, sorts each group by the CFB name
// key and builds a balanced binary tree per group by midpoint split. Colors
// alternate by depth, black at each group's root, with no rebalancing or
// recoloring. Groups of 2 siblings, or whose tree is perfect (1, 3, 7, ...
// siblings), have equal black height on every path; other sizes, such as 4
// siblings, can leave paths that differ in black height.
func (d *dirBuilder) linkSiblings(entries []dirEntry, keys [][]uint16) {
	children := map[int][]int{}
	for i, n := range d.w.nodes {
		children[n.parent] = append(children[n.parent], i+1)
	}

	for parent, group := range children {
		sort.SliceStable(group, func(i, j int) bool {
			return compareNames(keys[group[i]], keys[group[j]]) < 0
		})
		root := buildBalanced(entries, group, colorBlack)
		if parent < 0 {
			entries[0].child = root
		} else {
			entries[parent+1].child = root
		}
	}
}

func buildBalanced(entries []dirEntry, ids []int, color uint8) uint32 {
	if len(ids) == 0 {
		return NoStream
	}
	mid := len(ids) / 2
	e := &entries[ids[mid]]
	e.color = color

	next := colorRed
	if color == colorRed {
		next = colorBlack
	}
	e.left = buildBalanced(entries, ids[:mid], next)
	e.right = buildBalanced(entries, ids[mid+1:], next)
	return uint32(ids[mid])
}

func (d *dirBuilder) write(entries []dirEntry) error {
	d.w.dirStart = d.w.nextSector

	unallocated := dirEntry{left: NoStream, right: NoStream, child: NoStream}

	for s := 0; s < d.w.plan.dirSectors; s++ {
		num, off, err := d.w.allocSector()
		if err != nil {
			return err
		}
		if s > 0 {
			d.fat.update(d.w.nextFAT-1, num)
		}
		d.fat.update(d.w.nextFAT, EndOfChain)
		d.w.nextFAT++

		for j := 0; j < dirEntriesPerSector; j++ {
			idx := s*dirEntriesPerSector + j
			dst := d.w.buf[off+j*dirEntrySize : off+(j+1)*dirEntrySize]
			if idx < len(entries) {
				entries[idx].marshal(dst)
			} else {
				unallocated.marshal(dst)
			}
		}
	}
	return nil
}
