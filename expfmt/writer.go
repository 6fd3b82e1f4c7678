// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expfmt

import (
	"bytes"
	"io"
	"math"
	"strconv"
)

// Extra columns emitted by Writer. Reader takes Record.Label from the
// Algorithm column and ignores the derived ones, so a Writer can merge
// the logs of several algorithms into one file that reads back as the
// same records.
const (
	ColAlgorithm        = "Algorithm"
	ColMapID            = "MapID"
	ColStepsPerWaypoint = "StepsPerWaypoint"
)

var writerHeader = []string{
	ColAlgorithm, ColTrial, ColMapName, ColMapID,
	ColWaypointsVisited, ColSteps, ColStepsPerWaypoint,
	ColFmCalls, ColTimePerAction,
}

// A Writer writes experiment records in the tab-separated log format,
// adding the algorithm label, the derived map identifier and the
// steps-per-waypoint metric as extra columns.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer

	wroteHeader bool
}

// NewWriter returns a writer that writes records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes rec to w, preceded by the header row if this is the
// first record.
func (w *Writer) Write(rec *Record) error {
	if !w.wroteHeader {
		w.writeRow(writerHeader)
		w.wroteHeader = true
	}

	w.writeRow([]string{
		rec.Label,
		strconv.Itoa(rec.Trial),
		rec.RawMap,
		rec.MapID,
		strconv.Itoa(rec.WaypointsVisited),
		strconv.Itoa(rec.Steps),
		formatFloat(rec.StepsPerWaypoint()),
		formatFloat(rec.FmCallsPerAction),
		formatFloat(rec.TimePerActionMs),
	})

	// Writes to the buffer can't fail, so only the flush needs
	// checking.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *Writer) writeRow(fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.buf.WriteByte('\t')
		}
		w.buf.WriteString(f)
	}
	w.buf.WriteByte('\n')
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
