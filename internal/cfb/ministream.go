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

// miniStreamWriter packs payloads below the cutoff into the mini-stream
// side buffer as 64-byte minisectors, linking them through the MiniFAT.
// The side buffer itself is written out later by the stream writer as one
// regular stream.
type miniStreamWriter struct {
	w       *writer
	minifat *minifatMgr
}

func (s *miniStreamWriter) writeAll() {
	for _, n := range s.w.nodes {
		if !n.isFile {
			continue
		}
		data := s.w.entries[n.payload].Data
		if len(data) >= MiniStreamCutoff {
			continue
		}
		if len(data) == 0 {
			// Empty streams occupy no minisectors; readers must not
			// dereference the start when size is zero.
			s.w.streamStart[n.payload] = 0
			continue
		}
		s.w.streamStart[n.payload] = s.w.nextMiniFAT
		s.write(data)
	}
}

func (s *miniStreamWriter) write(data []byte) {
	n := ceilDiv(len(data), MiniSectorSize)
	for x := 0; x < n; x++ {
		off := int(s.w.nextMiniFAT) * MiniSectorSize
		if x > 0 {
			s.minifat.update(s.w.nextMiniFAT-1, s.w.nextMiniFAT)
		}
		s.minifat.update(s.w.nextMiniFAT, EndOfChain)
		copy(s.w.mini[off:off+MiniSectorSize], data[x*MiniSectorSize:])
		s.w.nextMiniFAT++
	}
}
