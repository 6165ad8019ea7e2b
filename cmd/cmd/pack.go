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
package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aawilliams85/gocfb/internal/cfb"
	"github.com/aawilliams85/gocfb/internal/env"
	"github.com/aawilliams85/gocfb/internal/logger"
	"github.com/aawilliams85/gocfb/pkg/manifest"
	"github.com/aawilliams85/gocfb/pkg/pbar"
	"github.com/aawilliams85/gocfb/pkg/util/format"
	ioutil "github.com/aawilliams85/gocfb/pkg/util/io"
)

func DefinePackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pack <dir>",
		Short:        "Pack a directory tree into a CFB container",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunPack,
	}

	cmd.Flags().StringP("output", "o", "", "path of the output container (default: <dir>.cfb)")
	cmd.Flags().String("clsid", "", "root storage CLSID as a UUID string")
	cmd.Flags().String("report", "", "write an XML pack manifest to the specified file")
	cmd.Flags().String("log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

type packOptions struct {
	Output     string
	Report     string
	CLSID      uuid.UUID
	LogLevel   logger.Level
	NoProgress bool
}

func RunPack(cmd *cobra.Command, args []string) error {
	dir := filepath.Clean(args[0])

	opts, err := parsePackOptions(cmd, dir)
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, opts.LogLevel)

	entries, totalBytes, err := collectEntries(dir, opts.NoProgress)
	if err != nil {
		return err
	}

	log.Infof("packing %d entries (%s) from %s", len(entries), format.FormatBytes(totalBytes), dir)

	buf, err := cfb.Build(entries, cfb.Options{
		RootCLSID: opts.CLSID,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	if err := ioutil.WriteImage(opts.Output, buf); err != nil {
		return err
	}
	log.Infof("wrote %s (%s)", opts.Output, format.FormatBytes(int64(len(buf))))

	if opts.Report != "" {
		if err := writeManifest(opts, entries, uint64(len(buf))); err != nil {
			return err
		}
		log.Infof("wrote manifest %s", opts.Report)
	}
	return nil
}

func parsePackOptions(cmd *cobra.Command, dir string) (packOptions, error) {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = dir + ".cfb"
	}

	report, _ := cmd.Flags().GetString("report")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	logLevel, _ := cmd.Flags().GetString("log-level")

	var clsid uuid.UUID
	if s, _ := cmd.Flags().GetString("clsid"); s != "" {
		parsed, err := uuid.Parse(s)
		if err != nil {
			return packOptions{}, fmt.Errorf("invalid --clsid %q: %w", s, err)
		}
		clsid = parsed
	}

	return packOptions{
		Output:     output,
		Report:     report,
		CLSID:      clsid,
		LogLevel:   logger.ParseLevel(logLevel),
		NoProgress: noProgress,
	}, nil
}

// collectEntries walks dir and returns one stream entry per regular file
// and one storage entry per empty directory. Paths are '/'-separated and
// relative to dir; intermediate storages are derived by the writer itself.
func collectEntries(dir string, noProgress bool) ([]cfb.Entry, int64, error) {
	var files []string
	var dirs []string
	hasChild := map[string]bool{}
	var totalBytes int64

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if parent := parentPath(rel); parent != "" {
			hasChild[parent] = true
		}

		if d.IsDir() {
			dirs = append(dirs, rel)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, rel)
		totalBytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	bar := pbar.NewProgressBarState(totalBytes)

	var entries []cfb.Entry
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, 0, err
		}
		if data == nil {
			data = []byte{}
		}
		entries = append(entries, cfb.Entry{Path: rel, Data: data})

		bar.ReadBytes += int64(len(data))
		bar.EntriesAdded++
		if !noProgress {
			bar.Render(false)
		}
	}
	if !noProgress && len(files) > 0 {
		bar.Render(true)
		bar.Finish()
	}

	// Empty directories are not implied by any stream path; pack them as
	// explicit storages.
	for _, rel := range dirs {
		if !hasChild[rel] {
			entries = append(entries, cfb.Entry{Path: rel})
		}
	}

	return entries, totalBytes, nil
}

func parentPath(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}

func writeManifest(opts packOptions, entries []cfb.Entry, containerSize uint64) error {
	f, err := os.Create(opts.Report)
	if err != nil {
		return err
	}
	defer f.Close()

	w := manifest.NewWriter(f)
	defer w.Close()

	err = w.WriteHeader(manifest.Header{
		Version: manifest.SchemaVersion,
		Creator: manifest.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: manifest.GetExecEnv(),
		},
		Container: manifest.Container{
			Filename:   opts.Output,
			SectorSize: cfb.SectorSize,
			Size:       containerSize,
		},
	})
	if err != nil {
		return err
	}

	for _, e := range entries {
		kind := "stream"
		if e.Data == nil {
			kind = "storage"
		}
		if err := w.WriteEntry(manifest.EntryObject{
			Path: e.Path,
			Kind: kind,
			Size: uint64(len(e.Data)),
		}); err != nil {
			return err
		}
	}
	return nil
}
