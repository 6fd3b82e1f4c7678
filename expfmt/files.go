// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expfmt

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// A Files reads experiment records from a sequence of input files.
//
// Each input becomes the Record.Label of the records read from it. By
// default, this will be the file name directly from Paths, except
// that duplicate strings will be disambiguated by appending "#N". If
// AllowLabels is true, then entries in Paths may be of the form
// label=path, and the label part will be used (without any
// disambiguation).
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated
	// as consisting of stdin.
	AllowStdin bool

	// AllowLabels indicates that custom labels are allowed in
	// Paths.
	AllowLabels bool

	// MapID is passed to each file's Reader. If nil, DefaultMapID
	// is used.
	MapID MapIDFunc

	// Open opens a non-stdin path. If nil, os.Open is used.
	// internal/gcs provides an Open that also understands
	// gs://bucket/object paths.
	Open func(path string) (io.ReadCloser, error)

	// inputs is the sequence of remaining inputs, or nil if this
	// Files has not started yet. Note that this distinguishes nil
	// from length 0.
	inputs []input

	reader  Reader
	file    io.ReadCloser
	isStdin bool
	cur     input
	err     error
}

type input struct {
	path      string
	label     string
	isStdin   bool
	isLabeled bool
}

// SplitLabel splits a label=path argument. If arg has no "=", the
// label is empty.
func SplitLabel(arg string) (label, path string) {
	if i := strings.Index(arg, "="); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return "", arg
}

// init does first-use initialization of f.
func (f *Files) init() {
	// Set f.inputs to a non-nil slice to indicate initialization
	// has happened.
	f.inputs = []input{}

	pathCount := make(map[string]int)
	if f.AllowStdin && len(f.Paths) == 0 {
		f.inputs = append(f.inputs, input{"-", "-", true, false})
	}
	for _, path := range f.Paths {
		label := path
		isLabeled := false
		if f.AllowLabels && strings.Contains(path, "=") {
			label, path = SplitLabel(path)
			isLabeled = true
		} else {
			pathCount[path]++
		}

		isStdin := f.AllowStdin && path == "-"
		f.inputs = append(f.inputs, input{path, label, isStdin, isLabeled})
	}

	// The same path given twice would otherwise merge two runs
	// into one label and silently double the sample size.
	pathI := make(map[string]int)
	for i := range f.inputs {
		inp := &f.inputs[i]
		if inp.isLabeled || pathCount[inp.path] <= 1 {
			continue
		}
		inp.label = fmt.Sprintf("%s#%d", inp.path, pathI[inp.path])
		pathI[inp.path]++
	}
}

// Scan advances the reader to the next record in the sequence of
// files and reports whether a record was read. The caller should use
// the Record method to get the record. If Scan reaches the end of the
// file sequence, or if an I/O or parse error occurs, it returns
// false. In this case, the caller should use the Err method to check
// for errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}

	if f.inputs == nil {
		f.init()
	}

	for {
		if f.file == nil {
			if len(f.inputs) == 0 {
				return false
			}
			inp := f.inputs[0]
			f.inputs = f.inputs[1:]

			if inp.isStdin {
				f.isStdin, f.file = true, os.Stdin
			} else {
				open := f.Open
				if open == nil {
					open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
				}
				file, err := open(inp.path)
				if err != nil {
					f.err = err
					return false
				}
				f.isStdin, f.file = false, file
			}
			f.cur = inp
			f.reader.MapID = f.MapID
			f.reader.Reset(f.file, inp.path, inp.label)
		}

		if f.reader.Scan() {
			return true
		}
		err := f.reader.Err()
		if !f.isStdin {
			f.file.Close()
		}
		f.file = nil
		if err != nil {
			f.err = err
			return false
		}
	}
}

// Record returns the record that was just read by Scan.
// See Reader.Record.
func (f *Files) Record() *Record {
	return f.reader.Record()
}

// Label returns the label of the input currently being read.
func (f *Files) Label() string {
	return f.cur.label
}

// Err returns the I/O or parse error that stopped Scan, if any.
// If Scan stopped because it read each file to completion,
// or if Scan has not yet returned false, Err returns nil.
func (f *Files) Err() error {
	return f.err
}
