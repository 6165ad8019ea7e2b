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
package pbar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aawilliams85/gocfb/pkg/util/format"
)

const MinRefreshRate = time.Millisecond * 250

// ProgressBarState tracks payload collection progress while packing.
type ProgressBarState struct {
	TotalBytes     int64
	ReadBytes      int64
	EntriesAdded   int
	StartTime      time.Time
	LastUpdateTime time.Time
}

// NewProgressBarState initializes a new ProgressBarState
func NewProgressBarState(totalBytes int64) *ProgressBarState {
	return &ProgressBarState{
		TotalBytes: totalBytes,
		StartTime:  time.Now(),
	}
}

// Render updates and prints the progress bar line
func (pbs *ProgressBarState) Render(force bool) {
	if !force && time.Since(pbs.LastUpdateTime) < MinRefreshRate {
		return
	}
	if pbs.TotalBytes <= 0 {
		return
	}

	percentage := float64(pbs.ReadBytes) / float64(pbs.TotalBytes) * 100

	barLength := 20
	filledLen := int(float64(barLength) * percentage / 100)
	var bar string
	if filledLen >= barLength {
		bar = strings.Repeat("=", barLength)
	} else {
		bar = strings.Repeat("=", filledLen) + ">" + strings.Repeat(" ", barLength-filledLen-1)
	}

	pbs.LastUpdateTime = time.Now()

	// \r rewrites the line in place; trailing spaces clear leftovers from
	// a previously longer line.
	fmt.Fprintf(os.Stdout, "\r[INFO] Packing: [%s] %3.0f%% (%s/%s) | Entries: %d    ",
		bar,
		percentage,
		format.FormatBytes(pbs.ReadBytes),
		format.FormatBytes(pbs.TotalBytes),
		pbs.EntriesAdded)

	os.Stdout.Sync()
}

// Finish terminates the progress bar line.
func (pbs *ProgressBarState) Finish() {
	fmt.Println()
}
