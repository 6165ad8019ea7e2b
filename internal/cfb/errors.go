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

import "errors"

var (
	// ErrInvalidPath is returned for absolute or empty paths, paths with
	// empty or ".." segments, or segments longer than 255 bytes.
	ErrInvalidPath = errors.New("cfb: invalid path")

	// ErrPayloadTooLarge is returned when a single stream payload exceeds
	// 2^31 - 1 bytes.
	ErrPayloadTooLarge = errors.New("cfb: payload too large")

	// ErrOverflow is returned when allocation would run past the planned
	// buffer. It indicates a planner bug, not bad input.
	ErrOverflow = errors.New("cfb: allocation exceeds planned buffer")
)
