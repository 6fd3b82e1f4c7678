// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders summaries and comparisons as text, CSV, HTML
// and charts.
//
// Renderers consume only expproc.GroupedSummary values, Comparisons
// and expproc means tables. They never load or aggregate records.
package report

import (
	"github.com/ptsp-tools/expstat/expmath"
	"github.com/ptsp-tools/expstat/expproc"
)

// A Comparison is the outcome of comparing one pair of algorithms
// on every map.
type Comparison struct {
	AlgorithmA, AlgorithmB string
	Metric                 string
	Direction              expmath.Direction

	// Results holds the successful per-map tests in natural map
	// order.
	Results []expproc.ComparisonResult

	// Errors holds the maps that could not be compared.
	Errors []*expproc.ComparisonError
}

// NewComparison collects the return values of expproc.CompareGroups.
func NewComparison(a, b, metric string, dir expmath.Direction, results map[string]expproc.ComparisonResult, err error) *Comparison {
	return &Comparison{
		AlgorithmA: a,
		AlgorithmB: b,
		Metric:     metric,
		Direction:  dir,
		Results:    expproc.SortedResults(results),
		Errors:     expproc.ComparisonErrors(err),
	}
}

// AveragePValue returns the mean p-value over the successful results.
func (c *Comparison) AveragePValue() float64 {
	m := make(map[string]expproc.ComparisonResult, len(c.Results))
	for _, r := range c.Results {
		m[r.MapID] = r
	}
	return expproc.AveragePValue(m)
}

// A line is one per-map entry of a Comparison, either a result or an
// error.
type line struct {
	MapID  string
	Result *expproc.ComparisonResult
	Err    *expproc.ComparisonError
}

// lines merges results and errors in natural map order.
func (c *Comparison) lines() []line {
	var out []line
	ids := make([]string, 0, len(c.Results)+len(c.Errors))
	byID := make(map[string]line)
	for i := range c.Results {
		r := &c.Results[i]
		byID[r.MapID] = line{MapID: r.MapID, Result: r}
		ids = append(ids, r.MapID)
	}
	for _, e := range c.Errors {
		byID[e.MapID] = line{MapID: e.MapID, Err: e}
		ids = append(ids, e.MapID)
	}
	expproc.SortMapIDs(ids)
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}
