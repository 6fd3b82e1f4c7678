// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expproc

import (
	"math"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
)

// MeanTable aggregates metric m of sets into a table with one row per
// (map, algorithm) pair. The columns are "map", "algorithm", "n",
// "mean <m>", "min <m>" and "max <m>".
//
// It returns an empty table if no record carries m.
func MeanTable(sets []*ResultSet, m Metric) table.Grouping {
	var maps, algs []string
	var vals []float64
	for _, set := range sets {
		for _, rec := range set.Records {
			v := m.Value(rec)
			if math.IsNaN(v) {
				continue
			}
			maps = append(maps, rec.MapID)
			algs = append(algs, set.Label)
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return new(table.Table)
	}

	t := new(table.Builder).Add("map", maps).Add("algorithm", algs).Add(m.Name, vals).Done()
	agg := ggstat.Agg("map", "algorithm")(
		ggstat.AggCount("n"),
		ggstat.AggMean(m.Name),
		ggstat.AggMin(m.Name),
		ggstat.AggMax(m.Name),
	)
	return agg.F(t)
}

// A Pivot is a MeanTable rearranged into a map × algorithm matrix.
type Pivot struct {
	// MapIDs are the rows, in natural order.
	MapIDs []string
	// Algorithms are the columns, in order of first appearance.
	Algorithms []string
	// Means[i][j] is the mean for Algorithms[i] on MapIDs[j], or
	// NaN if the algorithm has no results for that map.
	Means [][]float64
}

// PivotMeans rearranges a MeanTable for metric m into a Pivot.
func PivotMeans(g table.Grouping, m Metric) *Pivot {
	p := new(Pivot)
	type key struct{ alg, mapID string }
	means := make(map[key]float64)
	seenMap := make(map[string]bool)
	seenAlg := make(map[string]bool)
	for _, gid := range g.Tables() {
		t := g.Table(gid)
		maps := t.MustColumn("map").([]string)
		algs := t.MustColumn("algorithm").([]string)
		vals := t.MustColumn("mean " + m.Name).([]float64)
		for i := range maps {
			means[key{algs[i], maps[i]}] = vals[i]
			if !seenMap[maps[i]] {
				seenMap[maps[i]] = true
				p.MapIDs = append(p.MapIDs, maps[i])
			}
			if !seenAlg[algs[i]] {
				seenAlg[algs[i]] = true
				p.Algorithms = append(p.Algorithms, algs[i])
			}
		}
	}
	SortMapIDs(p.MapIDs)

	p.Means = make([][]float64, len(p.Algorithms))
	for i, alg := range p.Algorithms {
		row := make([]float64, len(p.MapIDs))
		for j, id := range p.MapIDs {
			v, ok := means[key{alg, id}]
			if !ok {
				v = math.NaN()
			}
			row[j] = v
		}
		p.Means[i] = row
	}
	return p
}
