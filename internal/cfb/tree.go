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
	"fmt"
	"sort"
	"strings"
)

const maxSegmentBytes = 255

// treeNode is one directory object derived from the input paths, in the
// order it will be emitted to the directory stream (entry index = position
// in the slice + 1; entry 0 is the Root Entry).
type treeNode struct {
	name    string
	isFile  bool
	payload int // index into the input entries; -1 for derived storages
	parent  int // index of the parent node; -1 for root-level nodes
}

// pathNode is the intermediate hierarchy built while walking input paths.
type pathNode struct {
	name     string
	isFile   bool
	payload  int
	children map[string]*pathNode
	order    []string // child names in insertion order, for a stable sort
}

func newPathNode(name string) *pathNode {
	return &pathNode{
		name:     name,
		payload:  -1,
		children: map[string]*pathNode{},
	}
}

func (n *pathNode) child(name string) *pathNode {
	c, ok := n.children[name]
	if !ok {
		c = newPathNode(name)
		n.children[name] = c
		n.order = append(n.order, name)
	}
	return c
}

// splitPath validates a '/'-separated relative path and returns its segments.
func splitPath(p string) ([]string, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") {
		return nil, fmt.Errorf("%w: absolute path %q", ErrInvalidPath, p)
	}
	segs := strings.Split(p, "/")
	for _, s := range segs {
		switch {
		case s == "":
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, p)
		case s == "." || s == "..":
			return nil, fmt.Errorf("%w: %q segment in %q", ErrInvalidPath, s, p)
		case len(s) > maxSegmentBytes:
			return nil, fmt.Errorf("%w: segment exceeds %d bytes in %q", ErrInvalidPath, maxSegmentBytes, p)
		}
	}
	return segs, nil
}

// buildTree normalizes the input entries into a depth-first ordered node
// sequence. Intermediate path segments become storage nodes even when the
// input never names them. Siblings are emitted in case-insensitive name
// order; a parent always precedes its children.
//
// The first entry to claim a path wins; later duplicates (and entries whose
// path crosses an existing stream) are dropped with a warning.
func (w *writer) buildTree(entries []Entry) ([]treeNode, error) {
	root := newPathNode("")
	claimed := map[string]bool{}

	for i, e := range entries {
		segs, err := splitPath(e.Path)
		if err != nil {
			return nil, err
		}
		if claimed[e.Path] {
			w.warnf("duplicate path %q, keeping first occurrence", e.Path)
			continue
		}
		claimed[e.Path] = true

		cur := root
		skip := false
		for depth, s := range segs {
			last := depth == len(segs)-1
			existing, seen := cur.children[s]
			if seen && (existing.isFile || (last && e.Data != nil)) {
				w.warnf("duplicate path %q, keeping first occurrence", e.Path)
				skip = true
				break
			}
			cur = cur.child(s)
			if last && e.Data != nil {
				cur.isFile = true
				cur.payload = i
			}
		}
		if skip {
			continue
		}
	}

	var nodes []treeNode
	var emit func(n *pathNode, parent int)
	emit = func(n *pathNode, parent int) {
		names := append([]string(nil), n.order...)
		sort.SliceStable(names, func(i, j int) bool {
			return strings.ToUpper(names[i]) < strings.ToUpper(names[j])
		})
		for _, name := range names {
			c := n.children[name]
			idx := len(nodes)
			nodes = append(nodes, treeNode{
				name:    c.name,
				isFile:  c.isFile,
				payload: c.payload,
				parent:  parent,
			})
			emit(c, idx)
		}
	}
	emit(root, -1)

	return nodes, nil
}
