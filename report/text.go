// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/aclements/go-gg/table"
	"github.com/ptsp-tools/expstat/expproc"
)

// WriteText writes c in the form
//
//	Result for Welch t-test that A StepsPerWaypoint is less than B
//	map1: statistics=-4.8698	p-value=0.0455
//	map2: error: sample is too small: need at least 2 observations
//	Average p-value: 0.0455
//
// followed by a blank line.
func WriteText(w io.Writer, c *Comparison) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Result for Welch t-test that %s %s is %s than %s\n", c.AlgorithmA, c.Metric, c.Direction, c.AlgorithmB)
	for _, l := range c.lines() {
		if l.Err != nil {
			fmt.Fprintf(bw, "%s: error: %s\n", l.MapID, l.Err.Reason())
			continue
		}
		fmt.Fprintf(bw, "%s: statistics=%.4f\tp-value=%.4f\n", l.MapID, l.Result.T, l.Result.P)
	}
	fmt.Fprintf(bw, "Average p-value: %.4f\n\n", c.AveragePValue())
	return bw.Flush()
}

// WriteSummaryTable writes sums as an aligned table with columns map,
// algorithm, n, min, max, mean and stddev.
func WriteSummaryTable(w io.Writer, sums []expproc.GroupedSummary) error {
	if len(sums) == 0 {
		return nil
	}
	var (
		maps, algs             = make([]string, len(sums)), make([]string, len(sums))
		ns                     = make([]int, len(sums))
		mins, maxs, means, sds = make([]float64, len(sums)), make([]float64, len(sums)), make([]float64, len(sums)), make([]float64, len(sums))
	)
	for i, s := range sums {
		maps[i], algs[i], ns[i] = s.MapID, s.Algorithm, s.N
		mins[i], maxs[i], means[i], sds[i] = s.Min, s.Max, s.Mean, s.StdDev
	}
	t := new(table.Builder).
		Add("map", maps).
		Add("algorithm", algs).
		Add("n", ns).
		Add("min", mins).
		Add("max", maxs).
		Add("mean", means).
		Add("stddev", sds).
		Done()
	fmt.Fprintf(w, "%s\n", sums[0].Metric)
	return table.Fprint(w, t, "%s", "%s", "%d", "%.4f", "%.4f", "%.4f", "%.4f")
}

// WriteMeanTable writes a table built by expproc.MeanTable.
func WriteMeanTable(w io.Writer, g table.Grouping) error {
	return table.Fprint(w, g, "%s", "%s", "%d", "%.4f", "%.4f", "%.4f")
}
