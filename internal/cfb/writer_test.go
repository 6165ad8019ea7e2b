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
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBuild_Empty(t *testing.T) {
	buf, err := Build(nil, Options{})
	require.NoError(t, err)
	require.Len(t, buf, 1536) // header + FAT sector + directory sector

	f := parseFile(t, buf)

	require.Equal(t, headerSignature, binary.LittleEndian.Uint64(buf[0:8]))
	require.Equal(t, versionMinor, binary.LittleEndian.Uint16(buf[24:26]))
	require.Equal(t, versionMajor, binary.LittleEndian.Uint16(buf[26:28]))
	require.Equal(t, byteOrder, binary.LittleEndian.Uint16(buf[28:30]))
	require.Equal(t, sectorShift, binary.LittleEndian.Uint16(buf[30:32]))
	require.Equal(t, miniSectorShift, binary.LittleEndian.Uint16(buf[32:34]))
	require.Zero(t, f.u32(40)) // dir sector count, always zero in v3
	require.Equal(t, uint32(MiniStreamCutoff), f.u32(56))

	require.Equal(t, uint32(1), f.fatCount())
	require.Equal(t, uint32(1), f.dirStart())
	require.Equal(t, EndOfChain, f.minifatStart())
	require.Zero(t, f.minifatCount())
	require.Equal(t, EndOfChain, f.difatStart())
	require.Zero(t, f.difatCount())

	require.Equal(t, uint32(0), f.headerDifat(0))
	for i := 1; i < headerDifatEntries; i++ {
		require.Equal(t, FreeSect, f.headerDifat(i))
	}

	require.Equal(t, FatSect, f.fatEntry(0))
	require.Equal(t, EndOfChain, f.fatEntry(1))
	for i := uint32(2); i < fatEntriesPerSector; i++ {
		require.Equal(t, FreeSect, f.fatEntry(i))
	}

	root := f.dirEntries()[0]
	require.Equal(t, typeRootStorage, root.typ)
	require.Equal(t, "Root Entry", root.name)
	require.Equal(t, uint16(22), root.nameLen)
	require.Equal(t, colorBlack, root.color)
	require.Equal(t, NoStream, root.left)
	require.Equal(t, NoStream, root.right)
	require.Equal(t, NoStream, root.child)
	require.Zero(t, root.start)
	require.Zero(t, root.size)
}

func TestBuild_SingleSmallStream(t *testing.T) {
	buf, err := Build([]Entry{{Path: "a.txt", Data: []byte("hello")}}, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)

	require.Equal(t, uint32(1), f.minifatCount())
	require.Equal(t, EndOfChain, f.minifatEntry(0))

	e := f.entryByName("a.txt")
	require.Equal(t, typeStream, e.typ)
	require.Equal(t, uint16(12), e.nameLen)
	require.Equal(t, uint32(0), e.start)
	require.Equal(t, uint64(5), e.size)

	root := f.dirEntries()[0]
	require.Equal(t, uint64(64), root.size)

	mini := f.miniStream()
	require.Len(t, mini, 64)
	want := append([]byte("hello"), make([]byte, 59)...)
	require.Equal(t, want, mini)

	require.Equal(t, []byte("hello"), f.streamBytes(e))
}

func TestBuild_SingleLargeStream(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 4096)
	buf, err := Build([]Entry{{Path: "big.bin", Data: payload}}, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)

	e := f.entryByName("big.bin")
	require.Equal(t, typeStream, e.typ)
	require.Equal(t, uint64(4096), e.size)

	sectors := f.chain(e.start)
	require.Len(t, sectors, 8)
	for i := 0; i < len(sectors)-1; i++ {
		require.Equal(t, sectors[i]+1, sectors[i+1], "chain sectors are consecutive")
	}
	require.Equal(t, EndOfChain, f.fatEntry(sectors[len(sectors)-1]))

	require.Equal(t, payload, f.streamBytes(e))

	root := f.dirEntries()[0]
	require.Zero(t, root.start)
	require.Zero(t, root.size)
	require.Equal(t, EndOfChain, f.minifatStart())
	require.Zero(t, f.minifatCount())
}

func TestBuild_NestedStorages(t *testing.T) {
	buf, err := Build([]Entry{{Path: "Folder/sub.txt", Data: []byte("x")}}, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)
	entries := f.dirEntries()

	require.Equal(t, typeRootStorage, entries[0].typ)
	require.Equal(t, uint32(1), entries[0].child)

	require.Equal(t, "Folder", entries[1].name)
	require.Equal(t, typeStorage, entries[1].typ)
	require.Equal(t, uint32(2), entries[1].child)
	require.Equal(t, NoStream, entries[1].left)
	require.Equal(t, NoStream, entries[1].right)
	require.Zero(t, entries[1].start)
	require.Zero(t, entries[1].size)

	require.Equal(t, "sub.txt", entries[2].name)
	require.Equal(t, typeStream, entries[2].typ)
	require.Equal(t, NoStream, entries[2].left)
	require.Equal(t, NoStream, entries[2].right)
	require.Equal(t, NoStream, entries[2].child)
	require.Equal(t, []byte("x"), f.streamBytes(entries[2]))
}

func TestBuild_SiblingTree(t *testing.T) {
	buf, err := Build([]Entry{
		{Path: "bbb", Data: []byte("1")},
		{Path: "aaaa", Data: []byte("2")},
		{Path: "c", Data: []byte("3")},
	}, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)
	entries := f.dirEntries()

	// Emission order is case-insensitive by name: aaaa, bbb, c.
	require.Equal(t, "aaaa", entries[1].name)
	require.Equal(t, "bbb", entries[2].name)
	require.Equal(t, "c", entries[3].name)

	// The sibling tree sorts by the CFB key (length first): c < bbb < aaaa,
	// so bbb is the black root with c and aaaa as red children.
	require.Equal(t, uint32(2), entries[0].child)
	require.Equal(t, colorBlack, entries[2].color)
	require.Equal(t, uint32(3), entries[2].left)
	require.Equal(t, uint32(1), entries[2].right)
	require.Equal(t, colorRed, entries[3].color)
	require.Equal(t, colorRed, entries[1].color)
	require.Equal(t, NoStream, entries[1].child)
	require.Equal(t, NoStream, entries[3].child)
}

func TestBuild_DifatOverflow(t *testing.T) {
	// One payload large enough to push the FAT past the 109 header DIFAT
	// entries: 14100 data sectors need 112 FAT sectors and one DIFAT sector.
	payload := make([]byte, 14100*SectorSize)
	buf, err := Build([]Entry{{Path: "huge.bin", Data: payload}}, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)

	require.Greater(t, f.fatCount(), uint32(headerDifatEntries))
	require.NotEqual(t, EndOfChain, f.difatStart())
	require.Equal(t, uint32(1), f.difatCount())

	fat := f.difat()
	ds := f.sector(f.difatStart())
	require.Equal(t, fat[109], binary.LittleEndian.Uint32(ds[0:4]))
	require.Equal(t, EndOfChain, binary.LittleEndian.Uint32(ds[difatEntriesPerSector*4:]))

	require.Equal(t, DifSect, f.fatEntry(f.difatStart()))
	for _, sn := range fat {
		require.Equal(t, FatSect, f.fatEntry(sn))
	}

	e := f.entryByName("huge.bin")
	require.Len(t, f.chain(e.start), 14100)
}

func TestBuild_RootCLSID(t *testing.T) {
	id := uuid.MustParse("BE87C5E3-E3CB-4BAB-8427-578ECCE263F7")
	buf, err := Build([]Entry{{Path: "s", Data: []byte("data")}}, Options{RootCLSID: id})
	require.NoError(t, err)

	f := parseFile(t, buf)
	root := f.dirEntries()[0]
	require.Equal(t, id[:], root.clsid[:])

	// The header CLSID stays zeroed.
	require.Equal(t, make([]byte, 16), buf[8:24])

	s := f.entryByName("s")
	require.Equal(t, make([]byte, 16), s.clsid[:], "stream entries carry no CLSID")
}

func TestBuild_EmptyStream(t *testing.T) {
	buf, err := Build([]Entry{
		{Path: "empty.bin", Data: []byte{}},
		{Path: "tiny.bin", Data: []byte("abc")},
	}, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)

	e := f.entryByName("empty.bin")
	require.Equal(t, typeStream, e.typ)
	require.Zero(t, e.start)
	require.Zero(t, e.size)

	// The empty stream occupies no minisector: tiny.bin starts at 0.
	tiny := f.entryByName("tiny.bin")
	require.Equal(t, uint32(0), tiny.start)
	require.Equal(t, []byte("abc"), f.streamBytes(tiny))
	require.Equal(t, uint64(64), f.dirEntries()[0].size)
}

func TestBuild_ExplicitStorage(t *testing.T) {
	buf, err := Build([]Entry{{Path: "Vault"}}, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)
	e := f.entryByName("Vault")
	require.Equal(t, typeStorage, e.typ)
	require.Equal(t, uint32(1), f.dirEntries()[0].child)
}

func TestBuild_InvalidPaths(t *testing.T) {
	for _, p := range []string{"", "/abs", "a//b", "a/../b", "..", "./a"} {
		_, err := Build([]Entry{{Path: p, Data: []byte("x")}}, Options{})
		require.ErrorIs(t, err, ErrInvalidPath, "path %q", p)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	entries := []Entry{
		{Path: "docs/readme.txt", Data: []byte("readme")},
		{Path: "docs/data/blob.bin", Data: bytes.Repeat([]byte{0xAB}, 5000)},
		{Path: "zzz", Data: []byte("z")},
		{Path: "empty"},
	}
	a, err := Build(entries, Options{})
	require.NoError(t, err)
	b, err := Build(entries, Options{})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestBuild_Invariants(t *testing.T) {
	entries := []Entry{
		{Path: "a/b/c.bin", Data: bytes.Repeat([]byte{0x5A}, 9000)},
		{Path: "a/b/d.bin", Data: []byte("small payload")},
		{Path: "a/e.bin", Data: make([]byte, 4096)},
		{Path: "f.bin", Data: []byte{}},
		{Path: "g"},
		{Path: "h.bin", Data: bytes.Repeat([]byte{0x77}, 130)},
	}
	buf, err := Build(entries, Options{})
	require.NoError(t, err)

	f := parseFile(t, buf)
	require.Zero(t, len(buf)%SectorSize)

	// FATSECT/DIFSECT counts match the header, and the populated DIFAT
	// prefix equals the FAT sector list.
	var fatSect, difSect int
	for i := uint32(0); i < f.totalSectors(); i++ {
		switch f.fatEntry(i) {
		case FatSect:
			fatSect++
		case DifSect:
			difSect++
		}
	}
	require.Equal(t, int(f.fatCount()), fatSect)
	require.Equal(t, int(f.difatCount()), difSect)

	// Every sector belongs to at most one chain.
	owners := map[uint32]string{}
	claim := func(name string, sectors []uint32) {
		for _, sn := range sectors {
			require.NotContains(t, owners, sn, "sector %d claimed by %s and %s", sn, owners[sn], name)
			owners[sn] = name
		}
	}
	claim("directory", f.chain(f.dirStart()))
	claim("minifat", f.chain(f.minifatStart()))
	root := f.dirEntries()[0]
	claim("ministream", f.chain(root.start))
	for _, e := range f.dirEntries() {
		if e.typ == typeStream && e.size >= MiniStreamCutoff {
			claim(e.name, f.chain(e.start))
		}
	}

	// Chain walks reproduce the payloads.
	for _, in := range entries {
		if in.Data == nil {
			continue
		}
		name := in.Path[strings.LastIndexByte(in.Path, '/')+1:]
		e := f.entryByName(name)
		require.Equal(t, uint64(len(in.Data)), e.size)
		if len(in.Data) > 0 {
			require.Equal(t, in.Data, f.streamBytes(e))
		}
	}
}
