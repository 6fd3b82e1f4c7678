// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expmath

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aclements/go-moremath/stats"
)

var (
	// ErrSampleSize is returned by Compare when a sample has fewer
	// than two observations, where the t-test is undefined.
	ErrSampleSize = errors.New("sample is too small: need at least 2 observations")

	// ErrZeroVariance warns that both samples of a comparison are
	// constant, so the t statistic was replaced by a sentinel.
	ErrZeroVariance = errors.New("both samples have zero variance")

	// ErrIdenticalSamples warns that the two samples of a comparison
	// hold the same values, so no test was run.
	ErrIdenticalSamples = errors.New("samples are identical")
)

// A Direction is the alternative hypothesis of a one-sided
// comparison of s1 against s2.
type Direction int

const (
	// Greater tests whether the mean of s1 is greater than the
	// mean of s2.
	Greater Direction = iota + 1
	// Less tests whether the mean of s1 is less than the mean of
	// s2.
	Less
)

func (d Direction) String() string {
	switch d {
	case Greater:
		return "greater"
	case Less:
		return "less"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func (d Direction) hypothesis() stats.LocationHypothesis {
	if d == Less {
		return stats.LocationLess
	}
	return stats.LocationGreater
}

// ParseDirection parses "greater" or "less" (case-insensitively).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "greater", ">":
		return Greater, nil
	case "less", "<":
		return Less, nil
	}
	return 0, fmt.Errorf("unknown direction %q: want greater or less", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d != Greater && d != Less {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// A Thresholds configures the thresholds used to interpret
// comparisons.
type Thresholds struct {
	// Alpha is the level below which a comparison's p-value is
	// considered significant. This is typically 0.05.
	Alpha float64
}

// DefaultThresholds contains a reasonable set of defaults for Thresholds.
var DefaultThresholds = Thresholds{
	Alpha: 0.05,
}

// A Comparison is the result of a one-sided Welch two-sample t-test.
type Comparison struct {
	// T is the t statistic. It is ±Inf or NaN if both samples
	// have zero variance (see Compare).
	T float64

	// DoF is the Welch–Satterthwaite degrees of freedom. It is NaN
	// if both samples have zero variance.
	DoF float64

	// P is the p-value of the null hypothesis that the means are
	// equal against the alternative given by Direction.
	P float64

	// N1 and N2 are the sizes of the two samples.
	N1, N2 int

	Direction Direction

	// Alpha is the significance threshold the comparison was
	// made with.
	Alpha float64

	// Warnings is a list of warnings about this comparison
	// result.
	Warnings []error
}

// Significant reports whether c rejects the null hypothesis at its
// Alpha level.
func (c Comparison) Significant() bool {
	return c.P < c.Alpha
}

// String summarizes the comparison in the form
// "t=T p=0.PPPP n=N1+N2".
func (c Comparison) String() string {
	return fmt.Sprintf("t=%.4f p=%.4f n=%d+%d", c.T, c.P, c.N1, c.N2)
}

// Compare tests whether the mean of s1 is greater (or less, per dir)
// than the mean of s2 without assuming equal variances, using
// DefaultThresholds.
func Compare(s1, s2 *Sample, dir Direction) (Comparison, error) {
	return CompareWith(s1, s2, dir, DefaultThresholds)
}

// CompareWith is Compare with explicit thresholds.
//
// Compare returns ErrSampleSize if either sample has fewer than two
// observations.
//
// If both samples have zero variance the t statistic is undefined.
// Instead of failing, CompareWith reports the limit of the test:
// equal means give T = NaN and P = 1; a difference in the tested
// direction gives T = ±Inf and P = 0; a difference against it gives
// T = ±Inf and P = 1. ErrZeroVariance is added to Warnings.
//
// Otherwise, samples holding exactly the same values show no
// difference in either direction: T = 0 and P = 1, with
// ErrIdenticalSamples in Warnings.
func CompareWith(s1, s2 *Sample, dir Direction, t Thresholds) (Comparison, error) {
	if dir != Greater && dir != Less {
		return Comparison{}, fmt.Errorf("invalid direction %d", int(dir))
	}
	c := Comparison{N1: s1.N(), N2: s2.N(), Direction: dir, Alpha: t.Alpha}
	if c.N1 < 2 || c.N2 < 2 {
		return c, ErrSampleSize
	}

	if s1.constant() && s2.constant() {
		c.DoF = math.NaN()
		c.Warnings = append(c.Warnings, ErrZeroVariance)
		diff := s1.Values[0] - s2.Values[0]
		switch {
		case diff == 0:
			c.T, c.P = math.NaN(), 1
		case (diff > 0) == (dir == Greater):
			c.T, c.P = math.Inf(sign(diff)), 0
		default:
			c.T, c.P = math.Inf(sign(diff)), 1
		}
		return c, nil
	}

	if s1.equal(s2) {
		c.T, c.DoF, c.P = 0, math.NaN(), 1
		c.Warnings = append(c.Warnings, ErrIdenticalSamples)
		return c, nil
	}

	res, err := stats.TwoSampleWelchTTest(s1.sample(), s2.sample(), dir.hypothesis())
	if err != nil {
		// The checks above cover the failure modes of the
		// t-test; report anything else as no significant
		// difference, along with the error.
		c.T, c.DoF, c.P = math.NaN(), math.NaN(), 1
		c.Warnings = append(c.Warnings, err)
		return c, nil
	}
	c.T, c.DoF, c.P = res.T, res.DoF, res.P
	return c, nil
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}
