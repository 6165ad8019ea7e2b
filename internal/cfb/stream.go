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

// streamWriter copies payloads at or above the mini-stream cutoff into
// regular sectors and links them into FAT chains. Once all large payloads
// are down, the aggregated mini-stream buffer is appended as one additional
// regular stream.
type streamWriter struct {
	w   *writer
	fat *fatMgr
}

func (s *streamWriter) writeAll() error {
	for _, n := range s.w.nodes {
		if !n.isFile {
			continue
		}
		data := s.w.entries[n.payload].Data
		if len(data) < MiniStreamCutoff {
			continue
		}
		s.w.streamStart[n.payload] = s.w.nextSector
		if err := s.write(data); err != nil {
			return err
		}
	}

	if len(s.w.mini) > 0 {
		s.w.miniStreamStart = s.w.nextSector
		if err := s.write(s.w.mini); err != nil {
			return err
		}
	}
	return nil
}

func (s *streamWriter) write(data []byte) error {
	n := ceilDiv(len(data), SectorSize)
	for x := 0; x < n; x++ {
		_, off, err := s.w.allocSector()
		if err != nil {
			return err
		}
		if x > 0 {
			s.fat.update(s.w.nextFAT-1, s.w.nextFAT)
		}
		s.fat.update(s.w.nextFAT, EndOfChain)
		// The last chunk is zero-padded for free: the buffer starts zeroed.
		copy(s.w.buf[off:off+SectorSize], data[x*SectorSize:])
		s.w.nextFAT++
	}
	return nil
}
