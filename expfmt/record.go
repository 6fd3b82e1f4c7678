// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expfmt reads and writes the tab-separated experiment log
// format written by the PTSP experiment runner.
//
// A log starts with a header row naming its columns. The columns
// MapName, WaypointsVisited and Steps are required; Trial,
// FmCallsPerAction and TimePerActionMs are parsed when present and all
// other columns are ignored. A log written by Writer also has an
// Algorithm column naming the algorithm of each row, which overrides
// the label of the input. Each following non-blank row is one trial
// of one algorithm on one map.
package expfmt

import (
	"fmt"
	"math"
	"path"
	"strings"
)

// Column names understood by Reader.
const (
	ColTrial            = "Trial"
	ColMapName          = "MapName"
	ColWaypointsVisited = "WaypointsVisited"
	ColSteps            = "Steps"
	ColFmCalls          = "FmCallsPerAction"
	ColTimePerAction    = "TimePerActionMs"
)

// A Record is a single trial outcome.
type Record struct {
	// Label is the algorithm label of the record: the Algorithm
	// field if the input has one, otherwise the label of the
	// source it was read from.
	Label string

	// Source and Line locate the record in its input. They are
	// purely diagnostic.
	Source string
	Line   int

	// RawMap is the MapName field exactly as it appeared in the
	// input, and MapID is the identifier derived from it by the
	// reader's MapIDFunc.
	RawMap string
	MapID  string

	// Trial is the trial number, or 0 if the input has no Trial
	// column.
	Trial int

	WaypointsVisited int
	Steps            int

	// FmCallsPerAction and TimePerActionMs are NaN if the input
	// does not carry them.
	FmCallsPerAction float64
	TimePerActionMs  float64
}

// StepsPerWaypoint returns Steps / (WaypointsVisited + 1). The +1
// keeps the metric finite for trials that visit no waypoint.
func (r *Record) StepsPerWaypoint() float64 {
	return float64(r.Steps) / float64(r.WaypointsVisited+1)
}

// Clone returns a copy of r. Reader reuses its Record between calls
// to Scan, so callers that retain records must clone them.
func (r *Record) Clone() *Record {
	r2 := *r
	return &r2
}

// Pos returns the file name and line number of r.
func (r *Record) Pos() (fileName string, line int) {
	return r.Source, r.Line
}

func (r *Record) String() string {
	return fmt.Sprintf("%s %s waypoints=%d steps=%d", r.Label, r.MapID, r.WaypointsVisited, r.Steps)
}

// A MapIDFunc derives a map identifier from a raw MapName field.
//
// All inputs compared against each other must use the same MapIDFunc,
// otherwise the same map can end up in different groups.
type MapIDFunc func(raw string) string

// DefaultMapID derives the map identifier using the runner's naming
// scheme: the base name of the path without its extension, split on
// "_", second segment. For example, "maps/ptsp_map7.map" yields
// "map7".
//
// Names that do not follow the scheme are not rejected. If the stem
// contains no "_", DefaultMapID returns the whole stem, so unrelated
// naming schemes silently produce identifiers that may not line up
// across inputs.
func DefaultMapID(raw string) string {
	s := stem(raw)
	parts := strings.Split(s, "_")
	if len(parts) < 2 {
		return s
	}
	return parts[1]
}

// StemMapID uses the whole base name of the path without its
// extension as the map identifier.
func StemMapID(raw string) string {
	return stem(raw)
}

// stem returns the base name of raw without its extension. Both "/"
// and "\" are treated as separators since logs are written on either
// platform.
func stem(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, "/")
	base := path.Base(raw)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// MapIDFuncs maps the names accepted in configuration files to
// MapIDFuncs.
var MapIDFuncs = map[string]MapIDFunc{
	"":        DefaultMapID,
	"segment": DefaultMapID,
	"stem":    StemMapID,
}

// A ParseError reports malformed input: a missing header or required
// column, a short row, or a numeric field that does not parse.
type ParseError struct {
	File   string
	Line   int
	Column string // empty if the error is not about a single column
	Msg    string
}

func (e *ParseError) Pos() (fileName string, line int) {
	return e.File, e.Line
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Column, e.Msg)
}

var nan = math.NaN()
