// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expmath

import (
	"errors"
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	// Reference values computed independently from the Welch
	// formulas and the Student t distribution.
	for _, test := range []struct {
		name        string
		x1, x2      []float64
		dir         Direction
		t, dof, p   float64
		significant bool
	}{
		{"greater", []float64{10, 12, 11, 14, 13}, []float64{8, 9, 7, 10, 9, 8}, Greater, 4.234008652363937, 6.745585874799358, 0.002103180369797064, true},
		{"lessWrongWay", []float64{10, 12, 11, 14, 13}, []float64{8, 9, 7, 10, 9, 8}, Less, 4.234008652363937, 6.745585874799358, 0.9978968196302029, false},
		{"stepsPerWaypoint", []float64{100.0 / 6, 120.0 / 6}, []float64{150.0 / 4, 140.0 / 3}, Less, -4.869838648985537, 1.259918104316305, 0.04547181538936697, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			c, err := Compare(NewSample(test.x1), NewSample(test.x2), test.dir)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(c.T-test.t) > 1e-9 {
				t.Errorf("T = %v, want %v", c.T, test.t)
			}
			if math.Abs(c.DoF-test.dof) > 1e-9 {
				t.Errorf("DoF = %v, want %v", c.DoF, test.dof)
			}
			if math.Abs(c.P-test.p) > 1e-4 {
				t.Errorf("P = %v, want %v", c.P, test.p)
			}
			if c.Significant() != test.significant {
				t.Errorf("Significant() = %v, want %v", c.Significant(), test.significant)
			}
			if c.N1 != len(test.x1) || c.N2 != len(test.x2) {
				t.Errorf("N = %d+%d, want %d+%d", c.N1, c.N2, len(test.x1), len(test.x2))
			}
			if len(c.Warnings) != 0 {
				t.Errorf("unexpected warnings %v", c.Warnings)
			}
		})
	}
}

func TestCompareZeroVariance(t *testing.T) {
	check := func(x1, x2 []float64, dir Direction, wantT, wantP float64) {
		t.Helper()
		c, err := Compare(NewSample(x1), NewSample(x2), dir)
		if err != nil {
			t.Fatalf("%v vs %v: %v", x1, x2, err)
		}
		if math.IsNaN(wantT) != math.IsNaN(c.T) || (!math.IsNaN(wantT) && c.T != wantT) {
			t.Errorf("%v vs %v %v: T = %v, want %v", x1, x2, dir, c.T, wantT)
		}
		if c.P != wantP {
			t.Errorf("%v vs %v %v: P = %v, want %v", x1, x2, dir, c.P, wantP)
		}
		if len(c.Warnings) != 1 || !errors.Is(c.Warnings[0], ErrZeroVariance) {
			t.Errorf("%v vs %v: warnings %v, want [%v]", x1, x2, c.Warnings, ErrZeroVariance)
		}
	}
	inf := math.Inf(1)

	// Identical constant samples show no difference.
	check([]float64{5, 5, 5}, []float64{5, 5}, Greater, math.NaN(), 1)
	check([]float64{0.1, 0.1, 0.1}, []float64{0.1, 0.1, 0.1}, Less, math.NaN(), 1)
	// Constant samples that differ.
	check([]float64{6, 6}, []float64{5, 5}, Greater, inf, 0)
	check([]float64{6, 6}, []float64{5, 5}, Less, inf, 1)
	check([]float64{4, 4}, []float64{5, 5}, Less, -inf, 0)
	check([]float64{4, 4}, []float64{5, 5}, Greater, -inf, 1)
}

func TestCompareIdentical(t *testing.T) {
	for _, dir := range []Direction{Greater, Less} {
		// Order does not matter; samples are sorted.
		c, err := Compare(NewSample([]float64{100, 140, 120}), NewSample([]float64{120, 100, 140}), dir)
		if err != nil {
			t.Fatal(err)
		}
		if c.T != 0 || c.P != 1 || !math.IsNaN(c.DoF) {
			t.Errorf("%v: got T=%v DoF=%v P=%v, want T=0 DoF=NaN P=1", dir, c.T, c.DoF, c.P)
		}
		if c.Significant() {
			t.Errorf("%v: identical samples are significant", dir)
		}
		if len(c.Warnings) != 1 || !errors.Is(c.Warnings[0], ErrIdenticalSamples) {
			t.Errorf("%v: warnings %v, want [%v]", dir, c.Warnings, ErrIdenticalSamples)
		}
	}

	// Same spread, different values: an ordinary test.
	c, err := Compare(NewSample([]float64{1, 2, 3}), NewSample([]float64{1, 2, 4}), Greater)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Warnings) != 0 || c.P == 1 {
		t.Errorf("near-identical: got %v warnings %v", c, c.Warnings)
	}
}

func TestCompareOneConstant(t *testing.T) {
	// Only one side constant is an ordinary Welch test.
	c, err := Compare(NewSample([]float64{5, 5, 5}), NewSample([]float64{1, 2, 3}), Greater)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Warnings) != 0 || !(c.T > 0) || !(c.P < 0.05) {
		t.Errorf("got %v warnings %v", c, c.Warnings)
	}
}

func TestCompareSampleSize(t *testing.T) {
	for _, test := range []struct{ x1, x2 []float64 }{
		{[]float64{1}, []float64{1, 2}},
		{[]float64{1, 2}, []float64{3}},
		{nil, []float64{1, 2}},
	} {
		c, err := Compare(NewSample(test.x1), NewSample(test.x2), Less)
		if !errors.Is(err, ErrSampleSize) {
			t.Errorf("%v vs %v: got error %v, want %v", test.x1, test.x2, err, ErrSampleSize)
		}
		if c.N1 != len(test.x1) || c.N2 != len(test.x2) {
			t.Errorf("%v vs %v: N = %d+%d", test.x1, test.x2, c.N1, c.N2)
		}
	}
}

func TestCompareBadDirection(t *testing.T) {
	if _, err := Compare(NewSample([]float64{1, 2}), NewSample([]float64{1, 2}), 0); err == nil {
		t.Error("Compare with zero Direction succeeded")
	}
}

func TestParseDirection(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"greater", Greater, true},
		{"Less", Less, true},
		{">", Greater, true},
		{"two-sided", 0, false},
		{"", 0, false},
	} {
		got, err := ParseDirection(test.in)
		if (err == nil) != test.ok || got != test.want {
			t.Errorf("ParseDirection(%q) = %v, %v", test.in, got, err)
		}
	}

	var d Direction
	if err := d.UnmarshalText([]byte("less")); err != nil || d != Less {
		t.Errorf("UnmarshalText(less) = %v, %v", d, err)
	}
	if b, err := Greater.MarshalText(); err != nil || string(b) != "greater" {
		t.Errorf("MarshalText = %q, %v", b, err)
	}
}
