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
package manifest

import (
	"encoding/xml"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/aawilliams85/gocfb/pkg/sysinfo"
)

const SchemaVersion = "1.0"

// Header is the root element of a pack manifest document.
type Header struct {
	XMLName   xml.Name  `xml:"packmanifest"`
	Version   string    `xml:"version,attr,omitempty"` // schema version, an attribute
	Creator   Creator   `xml:"creator"`                // the software that produced the container
	Container Container `xml:"container"`              // the produced container file
}

// Creator describes the software and environment used to pack the container.
type Creator struct {
	Package              string  `xml:"package"`
	Version              string  `xml:"version"`
	ExecutionEnvironment ExecEnv `xml:"execution_environment"`
}

// ExecEnv provides information about the host where the container was packed.
type ExecEnv struct {
	OS      string `xml:"os_sysname"`
	Release string `xml:"os_release"`
	Version string `xml:"os_version"`
	Host    string `xml:"host"`
	Arch    string `xml:"arch"`
	UID     int    `xml:"uid"`
	Start   string `xml:"start_time"`
}

// Container describes the produced CFB file.
type Container struct {
	Filename   string `xml:"filename"`
	SectorSize int    `xml:"sectorsize"`
	Size       uint64 `xml:"size"`
}

// EntryObject represents a single stream or storage inside the container.
type EntryObject struct {
	XMLName xml.Name `xml:"entry"`
	Path    string   `xml:"path"`
	Kind    string   `xml:"kind"` // "stream" or "storage"
	Size    uint64   `xml:"size"`
}

// GetExecEnv retrieves runtime information to populate the ExecEnv struct.
func GetExecEnv() ExecEnv {
	sinfo, err := sysinfo.Stat()
	if err != nil {
		sinfo = &sysinfo.SysUnknown
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return ExecEnv{
		OS:      sinfo.Name,
		Release: sinfo.Release,
		Version: sinfo.Version,
		Host:    hostname,
		Arch:    runtime.GOARCH,
		UID:     os.Getuid(),
		Start:   time.Now().UTC().Format(time.RFC3339),
	}
}

// Writer streams a pack manifest to an io.Writer element by element.
type Writer struct {
	enc *xml.Encoder
	out io.Writer
}

// NewWriter creates a manifest writer with two-space indentation.
func NewWriter(w io.Writer) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	return &Writer{
		enc: enc,
		out: w,
	}
}

// WriteHeader writes the XML declaration and the opening <packmanifest>
// element with the creator and container blocks.
func (w *Writer) WriteHeader(hdr Header) error {
	_, _ = w.out.Write([]byte(xml.Header))

	start := xml.StartElement{
		Name: xml.Name{Local: "packmanifest"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "version"}, Value: hdr.Version},
		},
	}
	if err := w.enc.EncodeToken(start); err != nil {
		return err
	}

	creator := xml.StartElement{Name: xml.Name{Local: "creator"}}
	if err := w.enc.EncodeElement(hdr.Creator, creator); err != nil {
		return err
	}
	container := xml.StartElement{Name: xml.Name{Local: "container"}}
	return w.enc.EncodeElement(hdr.Container, container)
}

// WriteEntry encodes one container entry.
func (w *Writer) WriteEntry(obj EntryObject) error {
	return w.enc.Encode(obj)
}

// Close writes the closing tag and flushes the encoder.
func (w *Writer) Close() error {
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "packmanifest"}}); err != nil {
		return err
	}
	return w.enc.Flush()
}
