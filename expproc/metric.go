// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expproc

import (
	"fmt"
	"strings"

	"github.com/ptsp-tools/expstat/expfmt"
)

// A Metric selects one measurement from each record.
type Metric struct {
	// Name is the column-style name of the metric, such as
	// "StepsPerWaypoint".
	Name string

	// Label is a human-readable axis label.
	Label string

	// Value extracts the metric from a record. It may return NaN
	// for records that do not carry the metric.
	Value func(*expfmt.Record) float64
}

func (m Metric) String() string {
	return m.Name
}

// The metrics known to ParseMetric.
var (
	WaypointsVisited = Metric{expfmt.ColWaypointsVisited, "Waypoints visited", func(r *expfmt.Record) float64 {
		return float64(r.WaypointsVisited)
	}}
	Steps = Metric{expfmt.ColSteps, "Steps", func(r *expfmt.Record) float64 {
		return float64(r.Steps)
	}}
	StepsPerWaypoint = Metric{expfmt.ColStepsPerWaypoint, "Steps per waypoint", (*expfmt.Record).StepsPerWaypoint}
	FmCallsPerAction = Metric{expfmt.ColFmCalls, "Forward model calls per action", func(r *expfmt.Record) float64 {
		return r.FmCallsPerAction
	}}
	TimePerActionMs = Metric{expfmt.ColTimePerAction, "Time per action (ms)", func(r *expfmt.Record) float64 {
		return r.TimePerActionMs
	}}
)

// Metrics lists the known metrics in display order.
var Metrics = []Metric{WaypointsVisited, Steps, StepsPerWaypoint, FmCallsPerAction, TimePerActionMs}

var metricAliases = map[string]Metric{
	"waypoints": WaypointsVisited,
	"steps":     Steps,
	"spw":       StepsPerWaypoint,
	"fmcalls":   FmCallsPerAction,
	"time":      TimePerActionMs,
}

// ParseMetric returns the metric with the given name. Names match
// the metric's column name case-insensitively, or one of the short
// forms "waypoints", "steps", "spw", "fmcalls" and "time".
func ParseMetric(name string) (Metric, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, m := range Metrics {
		if strings.ToLower(m.Name) == lower {
			return m, nil
		}
	}
	if m, ok := metricAliases[lower]; ok {
		return m, nil
	}
	return Metric{}, fmt.Errorf("unknown metric %q", name)
}
