// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expproc

import (
	"errors"
	"fmt"
	"math"

	"github.com/ptsp-tools/expstat/expmath"
)

// A ComparisonResult is the outcome of a one-sided Welch test of
// metric Metric between AlgorithmA and AlgorithmB on one map.
type ComparisonResult struct {
	AlgorithmA, AlgorithmB string
	MapID                  string
	Metric                 string

	expmath.Comparison
}

// A ComparisonError reports a map that could not be compared.
type ComparisonError struct {
	MapID                  string
	AlgorithmA, AlgorithmB string

	// Missing is the label of the set that has no records for
	// MapID, or "" if both sets have records.
	Missing string

	// Err is the underlying cause, such as expmath.ErrSampleSize.
	Err error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("%s: %s vs %s: %s", e.MapID, e.AlgorithmA, e.AlgorithmB, e.Reason())
}

// Reason describes the failure without naming the map or algorithms.
func (e *ComparisonError) Reason() string {
	if e.Missing != "" {
		return "no results for " + e.Missing
	}
	return e.Err.Error()
}

func (e *ComparisonError) Unwrap() error {
	return e.Err
}

// ErrMissingMap is the cause of a ComparisonError for a map present
// in only one of the compared sets.
var ErrMissingMap = errors.New("map missing from one side")

// CompareGroups tests, for every map identifier of a and b, whether
// the metric m of a is greater (or less, per dir) than that of b,
// using a one-sided Welch two-sample t-test.
//
// Maps that cannot be compared, because they are missing from one set
// or have fewer than two observations on a side, do not stop the
// batch. They are left out of the result map and reported as
// *ComparisonError values joined into the returned error, so the
// result map is meaningful even if the error is non-nil.
func CompareGroups(a, b *ResultSet, m Metric, dir expmath.Direction) (map[string]ComparisonResult, error) {
	return CompareGroupsWith(a, b, m, dir, expmath.DefaultThresholds)
}

// CompareGroupsWith is CompareGroups with explicit thresholds.
func CompareGroupsWith(a, b *ResultSet, m Metric, dir expmath.Direction, t expmath.Thresholds) (map[string]ComparisonResult, error) {
	if dir != expmath.Greater && dir != expmath.Less {
		return nil, fmt.Errorf("invalid direction %v", dir)
	}
	ga, gb := a.Groups(m), b.Groups(m)

	var ids []string
	for id := range ga {
		ids = append(ids, id)
	}
	for id := range gb {
		if _, ok := ga[id]; !ok {
			ids = append(ids, id)
		}
	}
	SortMapIDs(ids)

	out := make(map[string]ComparisonResult)
	var errs []error
	for _, id := range ids {
		xa, okA := ga[id]
		xb, okB := gb[id]
		if !okA || !okB {
			missing := a.Label
			if okA {
				missing = b.Label
			}
			errs = append(errs, &ComparisonError{MapID: id, AlgorithmA: a.Label, AlgorithmB: b.Label, Missing: missing, Err: ErrMissingMap})
			continue
		}
		c, err := expmath.CompareWith(expmath.NewSample(xa), expmath.NewSample(xb), dir, t)
		if err != nil {
			errs = append(errs, &ComparisonError{MapID: id, AlgorithmA: a.Label, AlgorithmB: b.Label, Err: err})
			continue
		}
		out[id] = ComparisonResult{
			AlgorithmA: a.Label,
			AlgorithmB: b.Label,
			MapID:      id,
			Metric:     m.Name,
			Comparison: c,
		}
	}
	return out, errors.Join(errs...)
}

// ComparisonErrors unpacks the *ComparisonError values joined into an
// error returned by CompareGroups.
func ComparisonErrors(err error) []*ComparisonError {
	if err == nil {
		return nil
	}
	var out []*ComparisonError
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			out = append(out, ComparisonErrors(e)...)
		}
		return out
	}
	var ce *ComparisonError
	if errors.As(err, &ce) {
		out = append(out, ce)
	}
	return out
}

// AveragePValue returns the arithmetic mean of the p-values of
// results, or NaN if results is empty.
func AveragePValue(results map[string]ComparisonResult) float64 {
	if len(results) == 0 {
		return math.NaN()
	}
	// Sum in a fixed order so repeated runs print identical output.
	var sum float64
	for _, r := range SortedResults(results) {
		sum += r.P
	}
	return sum / float64(len(results))
}

// SortedResults returns the results in natural map order.
func SortedResults(results map[string]ComparisonResult) []ComparisonResult {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	SortMapIDs(ids)
	out := make([]ComparisonResult, len(ids))
	for i, id := range ids {
		out[i] = results[id]
	}
	return out
}
