// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A Reader reads the tab-separated experiment log format.
//
// Its API is modeled on bufio.Scanner. A Reader reuses the Record it
// returns; a caller should Clone anything it needs to retain.
//
// Unlike a scanner that skips bad lines, a Reader stops at the first
// malformed row: statistics over partially read logs are not
// meaningful, so Err returns a *ParseError and the input is abandoned.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	// MapID derives Record.MapID from the MapName column. If nil,
	// DefaultMapID is used.
	MapID MapIDFunc

	s   *bufio.Scanner
	err error

	fileName string
	label    string
	line     int

	header []string
	cols   columnIndex

	rec Record
}

// columnIndex records the position of each known column in the
// header, or -1 if the column is absent.
type columnIndex struct {
	algorithm, trial, mapName, waypoints, steps, fmCalls, timePerAction int
	width                                                               int // minimum number of fields in a row
}

const maxLine = 1 << 20

// NewReader constructs a reader to parse experiment logs from r.
// fileName is used in error messages and as Record.Source; label is
// stored in Record.Label unless the input has an Algorithm column.
func NewReader(r io.Reader, fileName, label string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, label)
	return reader
}

// Reset resets the reader to begin reading from a new input. The new
// input must start with its own header row.
func (r *Reader) Reset(ior io.Reader, fileName, label string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLine)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.err = nil
	r.fileName = fileName
	r.label = label
	r.line = 0
	r.header = r.header[:0]
	r.cols = columnIndex{}
	r.rec = Record{Label: label, Source: fileName}
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Record method to get the
// record. If Scan reaches EOF, an I/O error occurs or the input is
// malformed, it returns false, in which case the caller should use
// the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}

	for r.s.Scan() {
		r.line++
		line := strings.TrimRight(r.s.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(r.header) == 0 {
			if err := r.parseHeader(line); err != nil {
				r.err = err
				return false
			}
			continue
		}
		if err := r.parseRow(line); err != nil {
			r.err = err
			return false
		}
		return true
	}

	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line, err)
		return false
	}
	if len(r.header) == 0 {
		r.err = &ParseError{File: r.fileName, Line: r.line, Msg: "missing header row"}
	}
	return false
}

// Record returns the record that was just read by Scan. The Record
// is owned by the Reader and is overwritten by the next call to Scan.
func (r *Reader) Record() *Record {
	return &r.rec
}

// Err returns the first I/O or parse error that stopped Scan, if
// any. If Scan stopped because it read the input to completion, or
// if Scan has not yet returned false, Err returns nil.
func (r *Reader) Err() error {
	return r.err
}

// Header returns the column names of the current input, or nil if
// the header row has not been read yet.
func (r *Reader) Header() []string {
	if len(r.header) == 0 {
		return nil
	}
	return r.header
}

func (r *Reader) parseHeader(line string) *ParseError {
	fields := strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	r.header = append(r.header[:0], fields...)

	find := func(name string) int {
		for i, f := range fields {
			if f == name {
				return i
			}
		}
		return -1
	}
	c := columnIndex{
		algorithm:     find(ColAlgorithm),
		trial:         find(ColTrial),
		mapName:       find(ColMapName),
		waypoints:     find(ColWaypointsVisited),
		steps:         find(ColSteps),
		fmCalls:       find(ColFmCalls),
		timePerAction: find(ColTimePerAction),
	}
	for _, req := range []struct {
		name string
		idx  int
	}{{ColMapName, c.mapName}, {ColWaypointsVisited, c.waypoints}, {ColSteps, c.steps}} {
		if req.idx < 0 {
			r.header = r.header[:0]
			return &ParseError{File: r.fileName, Line: r.line, Column: req.name, Msg: "missing required column"}
		}
	}
	for _, idx := range []int{c.algorithm, c.trial, c.mapName, c.waypoints, c.steps, c.fmCalls, c.timePerAction} {
		if idx+1 > c.width {
			c.width = idx + 1
		}
	}
	r.cols = c
	return nil
}

func (r *Reader) parseRow(line string) *ParseError {
	fields := strings.Split(line, "\t")
	if len(fields) < r.cols.width {
		return &ParseError{File: r.fileName, Line: r.line, Msg: fmt.Sprintf("row has %d fields, want at least %d", len(fields), r.cols.width)}
	}

	rec := &r.rec
	rec.Line = r.line
	// Merged logs name the algorithm of each row. An empty field
	// falls back to the input's label.
	rec.Label = r.label
	if r.cols.algorithm >= 0 {
		if alg := strings.TrimSpace(fields[r.cols.algorithm]); alg != "" {
			rec.Label = alg
		}
	}
	rec.RawMap = strings.TrimSpace(fields[r.cols.mapName])
	mapID := r.MapID
	if mapID == nil {
		mapID = DefaultMapID
	}
	rec.MapID = mapID(rec.RawMap)

	var err *ParseError
	if rec.WaypointsVisited, err = r.count(fields, r.cols.waypoints, ColWaypointsVisited); err != nil {
		return err
	}
	if rec.Steps, err = r.count(fields, r.cols.steps, ColSteps); err != nil {
		return err
	}
	rec.Trial = 0
	if r.cols.trial >= 0 {
		if rec.Trial, err = r.count(fields, r.cols.trial, ColTrial); err != nil {
			return err
		}
	}
	if rec.FmCallsPerAction, err = r.optFloat(fields, r.cols.fmCalls, ColFmCalls); err != nil {
		return err
	}
	if rec.TimePerActionMs, err = r.optFloat(fields, r.cols.timePerAction, ColTimePerAction); err != nil {
		return err
	}
	return nil
}

// count parses a non-negative integer field.
func (r *Reader) count(fields []string, idx int, col string) (int, *ParseError) {
	f := strings.TrimSpace(fields[idx])
	v, err := strconv.Atoi(f)
	if err != nil {
		return 0, &ParseError{File: r.fileName, Line: r.line, Column: col, Msg: fmt.Sprintf("%q is not an integer", f)}
	}
	if v < 0 {
		return 0, &ParseError{File: r.fileName, Line: r.line, Column: col, Msg: fmt.Sprintf("negative value %d", v)}
	}
	return v, nil
}

// optFloat parses an optional numeric field. An absent column or an
// empty field yields NaN.
func (r *Reader) optFloat(fields []string, idx int, col string) (float64, *ParseError) {
	if idx < 0 {
		return nan, nil
	}
	f := strings.TrimSpace(fields[idx])
	if f == "" {
		return nan, nil
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, &ParseError{File: r.fileName, Line: r.line, Column: col, Msg: fmt.Sprintf("%q is not a number", f)}
	}
	return v, nil
}
