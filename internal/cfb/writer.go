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
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/aawilliams85/gocfb/internal/logger"
)

// Entry is one named object of the container. A nil Data means a storage
// (directory); a non-nil Data means a stream with that payload. Paths are
// '/'-separated and relative.
type Entry struct {
	Path string
	Data []byte
}

// Options configures a build.
type Options struct {
	// RootCLSID is copied verbatim into the Root Entry's CLSID field.
	// The zero value writes a null CLSID.
	RootCLSID uuid.UUID

	// Logger, when non-nil, receives non-fatal warnings (name truncation,
	// duplicate paths). Warnings never abort a build.
	Logger *logger.Logger
}

// writer owns the output buffer, the allocator cursors and the per-region
// bookkeeping. The table managers hold a reference to it; the MiniFAT and
// DIFAT managers and the stream and directory writers also hold the FAT
// manager, which they call to chain their sectors. The FAT manager refers
// only to the writer.
type writer struct {
	entries []Entry
	nodes   []treeNode
	plan    layoutPlan
	clsid   [16]byte
	log     *logger.Logger

	buf  []byte // the whole file
	mini []byte // mini-stream side buffer, appended as a regular stream

	// Allocator cursors. nextOffset/nextSector/nextFAT advance in lockstep
	// whenever a data-carrying sector is handed out.
	nextOffset  int
	nextSector  uint32
	nextFAT     uint32
	nextMiniFAT uint32

	// Sector numbers of the table regions, in allocation order.
	fatSectors     []uint32
	minifatSectors []uint32
	difatSectors   []uint32

	// streamStart[i] is the first sector (large streams) or minisector
	// (small streams) of input entry i.
	streamStart     []uint32
	miniStreamStart uint32
	dirStart        uint32
}

// Build produces a CFB v3 container holding the given entries. The result
// is a complete file image; on any error no buffer is returned.
func Build(entries []Entry, opts Options) ([]byte, error) {
	w := &writer{
		entries: entries,
		log:     opts.Logger,
	}
	copy(w.clsid[:], opts.RootCLSID[:])

	for _, e := range entries {
		if len(e.Data) > math.MaxInt32 {
			return nil, fmt.Errorf("%w: stream %q is %d bytes", ErrPayloadTooLarge, e.Path, len(e.Data))
		}
	}

	nodes, err := w.buildTree(entries)
	if err != nil {
		return nil, err
	}
	w.nodes = nodes

	w.plan = planLayout(entries, nodes)
	w.buf = make([]byte, w.plan.totalBytes())
	w.mini = make([]byte, w.plan.miniStreamBytes())
	w.streamStart = make([]uint32, len(entries))

	// The header occupies "sector -1": reserve it before sector 0.
	w.nextOffset = HeaderSize

	fat := &fatMgr{w: w}
	minifat := &minifatMgr{w: w, fat: fat}
	difat := &difatMgr{w: w, fat: fat}

	if err := fat.allocate(); err != nil {
		return nil, err
	}
	if err := minifat.allocate(); err != nil {
		return nil, err
	}
	if err := difat.allocate(); err != nil {
		return nil, err
	}

	ms := &miniStreamWriter{w: w, minifat: minifat}
	ms.writeAll()

	sw := &streamWriter{w: w, fat: fat}
	if err := sw.writeAll(); err != nil {
		return nil, err
	}

	dir := &dirBuilder{w: w, fat: fat}
	if err := dir.build(); err != nil {
		return nil, err
	}

	w.patchHeader()
	return w.buf, nil
}

// allocSector hands out the next free sector, advancing the offset and
// number cursors. The FAT index cursor is advanced by the caller once the
// sector's FAT entry has been laid down.
func (w *writer) allocSector() (uint32, int, error) {
	if w.nextOffset+SectorSize > len(w.buf) {
		return 0, 0, fmt.Errorf("%w: sector %d at offset %d", ErrOverflow, w.nextSector, w.nextOffset)
	}
	num, off := w.nextSector, w.nextOffset
	w.nextSector++
	w.nextOffset += SectorSize
	return num, off, nil
}

func (w *writer) putUint32(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:off+4], v)
}

func (w *writer) warnf(format string, args ...any) {
	if w.log != nil {
		w.log.Warnf(format, args...)
	}
}
