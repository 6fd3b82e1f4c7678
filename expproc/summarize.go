// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expproc

import (
	"github.com/ptsp-tools/expstat/expmath"
)

// A GroupedSummary holds the descriptive statistics of one metric for
// one (algorithm, map) pair.
type GroupedSummary struct {
	Algorithm string
	MapID     string
	Metric    string

	expmath.Summary
}

// Summarize groups the records of set by map identifier and computes
// min, max, mean and standard deviation of m for each group.
//
// A group with a single record gets a NaN standard deviation and an
// expmath.ErrSingleSample warning instead of an error; callers should
// report Warnings to the user.
func Summarize(set *ResultSet, m Metric) map[string]GroupedSummary {
	out := make(map[string]GroupedSummary)
	for mapID, values := range set.Groups(m) {
		out[mapID] = GroupedSummary{
			Algorithm: set.Label,
			MapID:     mapID,
			Metric:    m.Name,
			Summary:   expmath.Summarize(expmath.NewSample(values)),
		}
	}
	return out
}

// SummaryList returns the summaries of sets for m as a flat list,
// ordered by set and then by map identifier in natural order.
func SummaryList(sets []*ResultSet, m Metric) []GroupedSummary {
	var out []GroupedSummary
	for _, set := range sets {
		sums := Summarize(set, m)
		ids := make([]string, 0, len(sums))
		for id := range sums {
			ids = append(ids, id)
		}
		SortMapIDs(ids)
		for _, id := range ids {
			out = append(out, sums[id])
		}
	}
	return out
}
