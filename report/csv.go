// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/ptsp-tools/expstat/expproc"
)

var (
	summaryCSVHeader    = []string{"algorithm", "map", "metric", "n", "min", "max", "mean", "stddev"}
	comparisonCSVHeader = []string{"algorithm", "baseline", "map", "metric", "direction", "t", "dof", "p", "error"}
)

// WriteCSV writes the summaries and then the comparisons as two CSV
// tables separated by an empty row. Undefined values are written as
// empty fields.
func WriteCSV(w io.Writer, sums []expproc.GroupedSummary, cmps []*Comparison) error {
	o := csv.NewWriter(w)
	o.Write(summaryCSVHeader)
	for _, s := range sums {
		o.Write([]string{s.Algorithm, s.MapID, s.Metric, strconv.Itoa(s.N), strof(s.Min), strof(s.Max), strof(s.Mean), strof(s.StdDev)})
	}
	if len(cmps) > 0 {
		o.Write(nil)
		o.Write(comparisonCSVHeader)
	}
	for _, c := range cmps {
		for _, l := range c.lines() {
			row := []string{c.AlgorithmA, c.AlgorithmB, l.MapID, c.Metric, c.Direction.String()}
			if l.Err != nil {
				row = append(row, "", "", "", l.Err.Reason())
			} else {
				row = append(row, strof(l.Result.T), strof(l.Result.DoF), strof(l.Result.P), "")
			}
			o.Write(row)
		}
	}
	o.Flush()
	return o.Error()
}

func strof(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
