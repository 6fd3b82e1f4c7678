// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expmath computes descriptive statistics over samples of
// experiment measurements and compares samples with a one-sided Welch
// two-sample t-test.
//
// Statistical edge cases are not errors. Summaries and comparisons
// carry a list of warnings, captured as an []error value, and degrade
// to explicit sentinel values (NaN standard deviation, p-value of 1)
// instead of failing. These warnings should be presented to the user
// along with the results. Only a comparison that is undefined (fewer
// than two observations on a side) returns an error.
package expmath

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrSingleSample warns that a summary's standard deviation is
	// undefined because the sample has one observation.
	ErrSingleSample = errors.New("single observation: standard deviation is undefined")

	// ErrEmptySample reports a summary of a sample with no
	// observations.
	ErrEmptySample = errors.New("empty sample")
)

// A Sample is a set of repeated measurements of one metric of one
// algorithm on one map.
type Sample struct {
	// Values are the measured values, in ascending order.
	Values []float64
}

// NewSample constructs a Sample from a copy of values.
func NewSample(values []float64) *Sample {
	vs := append([]float64(nil), values...)
	sort.Float64s(vs)
	return &Sample{vs}
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// constant reports whether all values of a non-empty s are equal.
// Testing the sorted bounds is exact, unlike a computed variance.
func (s *Sample) constant() bool {
	return len(s.Values) > 0 && s.Values[0] == s.Values[len(s.Values)-1]
}

// equal reports whether s and s2 hold the same values.
func (s *Sample) equal(s2 *Sample) bool {
	return floats.Equal(s.Values, s2.Values)
}

// N returns the number of observations in s.
func (s *Sample) N() int {
	return len(s.Values)
}

// A Summary holds the descriptive statistics of a Sample.
type Summary struct {
	N int

	Min, Max float64
	Mean     float64

	// StdDev is the sample standard deviation (with Bessel's
	// correction). It is NaN if N < 2.
	StdDev float64

	// Warnings is a list of warnings about this summary.
	Warnings []error
}

// Summarize computes the descriptive statistics of s.
//
// A sample with one observation has Min = Max = Mean and a NaN
// StdDev, with ErrSingleSample in Warnings. An empty sample has all
// statistics NaN, with ErrEmptySample in Warnings.
func Summarize(s *Sample) Summary {
	n := len(s.Values)
	if n == 0 {
		nan := math.NaN()
		return Summary{Min: nan, Max: nan, Mean: nan, StdDev: nan, Warnings: []error{ErrEmptySample}}
	}

	sum := Summary{
		N:   n,
		Min: floats.Min(s.Values),
		Max: floats.Max(s.Values),
	}
	if sum.Min == sum.Max {
		// Constant sample. Avoid rounding noise in the mean.
		sum.Mean, sum.StdDev = sum.Min, 0
	} else {
		sum.Mean, sum.StdDev = stat.MeanStdDev(s.Values, nil)
	}
	if n == 1 {
		sum.StdDev = math.NaN()
		sum.Warnings = append(sum.Warnings, ErrSingleSample)
	}
	return sum
}

// Defined reports whether every statistic of s is a number.
func (s Summary) Defined() bool {
	return s.N > 0 && !math.IsNaN(s.Mean) && !math.IsNaN(s.StdDev)
}

// String formats s as "mean ± stddev [min, max] n=N".
func (s Summary) String() string {
	return fmt.Sprintf("%.4g ± %.4g [%.4g, %.4g] n=%d", s.Mean, s.StdDev, s.Min, s.Max, s.N)
}
