// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expmath

import (
	"errors"
	"math"
	"testing"
)

func aeq(x, y float64) bool {
	return math.Abs(x-y) < 1e-9*math.Max(1, math.Abs(y))
}

func TestSummarize(t *testing.T) {
	check := func(values []float64, min, max, mean, std float64, warn error) {
		t.Helper()
		s := Summarize(NewSample(values))
		if s.N != len(values) {
			t.Errorf("%v: N = %d, want %d", values, s.N, len(values))
		}
		for _, c := range []struct {
			name      string
			got, want float64
		}{{"Min", s.Min, min}, {"Max", s.Max, max}, {"Mean", s.Mean, mean}, {"StdDev", s.StdDev, std}} {
			if math.IsNaN(c.want) {
				if !math.IsNaN(c.got) {
					t.Errorf("%v: %s = %v, want NaN", values, c.name, c.got)
				}
			} else if !aeq(c.got, c.want) {
				t.Errorf("%v: %s = %v, want %v", values, c.name, c.got, c.want)
			}
		}
		switch {
		case warn == nil && len(s.Warnings) != 0:
			t.Errorf("%v: unexpected warnings %v", values, s.Warnings)
		case warn != nil && (len(s.Warnings) != 1 || !errors.Is(s.Warnings[0], warn)):
			t.Errorf("%v: warnings %v, want [%v]", values, s.Warnings, warn)
		}
	}
	nan := math.NaN()

	check([]float64{3, 1, 2}, 1, 3, 2, 1, nil)
	check([]float64{10, 12, 11, 14, 13}, 10, 14, 12, 1.5811388300841898, nil)
	// Constant groups have exactly zero spread.
	check([]float64{0.1, 0.1, 0.1}, 0.1, 0.1, 0.1, 0, nil)
	check([]float64{100.0 / 6, 100.0 / 6}, 100.0/6, 100.0/6, 100.0/6, 0, nil)
	// Single observations have no standard deviation.
	check([]float64{7}, 7, 7, 7, nan, ErrSingleSample)
	check(nil, nan, nan, nan, nan, ErrEmptySample)
}

func TestNewSampleCopies(t *testing.T) {
	in := []float64{3, 1, 2}
	s := NewSample(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("NewSample modified its input: %v", in)
	}
	if s.Values[0] != 1 || s.Values[2] != 3 {
		t.Errorf("NewSample did not sort: %v", s.Values)
	}
}

func TestSummaryDefined(t *testing.T) {
	if !Summarize(NewSample([]float64{1, 2})).Defined() {
		t.Error("two observations should be defined")
	}
	if Summarize(NewSample([]float64{1})).Defined() {
		t.Error("one observation should not be defined")
	}
}
