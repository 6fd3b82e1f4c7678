// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expconfig reads expstat experiment configurations.
//
// A configuration names the experiments to load (a label, a source
// path and a display color each), the comparisons to run between them,
// the charts to render and an optional SQL archive:
//
//	map_id: segment
//	output_dir: out
//	experiments:
//	  - {label: QD-S-MCTS, source: QD.csv, color: red}
//	  - {label: S-MCTS, source: S.csv, color: "#1f77b4"}
//	comparisons:
//	  - {treatment: QD-S-MCTS, baselines: [S-MCTS], metric: WaypointsVisited, direction: greater}
//	charts:
//	  - {metric: StepsPerWaypoint, kind: errorbars, xlabel: "Avg. Steps per Waypoint", xmax: 1000}
//	store: {driver: sqlite3, dsn: results.db}
package expconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ptsp-tools/expstat/expfmt"
	"github.com/ptsp-tools/expstat/expmath"
	"github.com/ptsp-tools/expstat/expproc"
	"github.com/ptsp-tools/expstat/report"
	"gopkg.in/yaml.v3"
)

// A Config describes one expstat run: the experiments to load and
// what to compute and render from them. The zero Config is valid and
// has no experiments.
type Config struct {
	// MapID selects the map identifier scheme: "segment" (the
	// default) or "stem". See expfmt.MapIDFuncs.
	MapID string `yaml:"map_id"`

	// OutputDir is where charts are written. Relative paths are
	// relative to the current directory, not the config file.
	OutputDir string `yaml:"output_dir"`

	// Alpha is the significance level. Zero means
	// expmath.DefaultThresholds.
	Alpha float64 `yaml:"alpha"`

	Experiments []Experiment `yaml:"experiments"`
	Comparisons []Comparison `yaml:"comparisons"`
	Charts      []Chart      `yaml:"charts"`
	Store       *Store       `yaml:"store"`
}

// An Experiment is one labeled result set.
type Experiment struct {
	Label  string `yaml:"label"`
	Source string `yaml:"source"`
	Color  string `yaml:"color"`
}

// A Comparison tests Treatment against each of Baselines.
type Comparison struct {
	Treatment string   `yaml:"treatment"`
	Baselines []string `yaml:"baselines"`
	Metric    string   `yaml:"metric"`
	Direction string   `yaml:"direction"`
}

// Chart kinds.
const (
	ErrorBars = "errorbars"
	Means     = "means"
)

// A Chart renders one metric of every experiment. XMin and XMax fix
// the value axis range when set; XLabel overrides the metric's label.
type Chart struct {
	Metric string   `yaml:"metric"`
	Kind   string   `yaml:"kind"`
	XLabel string   `yaml:"xlabel"`
	XMin   *float64 `yaml:"xmin"`
	XMax   *float64 `yaml:"xmax"`
}

// A Store names the SQL database results are archived in. Driver is
// sqlite3 or mysql and DSN is passed to sql.Open.
type Store struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Parse decodes a single YAML document. Unknown fields are errors.
// Parse does not validate the configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return &cfg, nil
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Load reads, parses and validates the configuration at path.
// Relative experiment sources are resolved against the directory of
// path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	for i := range c.Experiments {
		src := c.Experiments[i].Source
		if src == "" || src == "-" || filepath.IsAbs(src) || strings.HasPrefix(src, "gs://") {
			continue
		}
		c.Experiments[i].Source = filepath.Join(dir, src)
	}
}

// Validate reports every problem in c, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, ok := expfmt.MapIDFuncs[c.MapID]; !ok {
		bad("map_id: unknown scheme %q", c.MapID)
	}
	if c.Alpha < 0 || c.Alpha >= 1 {
		bad("alpha: %v out of range [0, 1)", c.Alpha)
	}

	labels := make(map[string]bool)
	for i, e := range c.Experiments {
		switch {
		case e.Label == "":
			bad("experiments[%d]: missing label", i)
		case labels[e.Label]:
			bad("experiments[%d]: duplicate label %q", i, e.Label)
		}
		labels[e.Label] = true
		if e.Source == "" {
			bad("experiments[%d] (%s): missing source", i, e.Label)
		}
		if e.Color != "" {
			if _, err := report.ParseColor(e.Color); err != nil {
				bad("experiments[%d] (%s): %v", i, e.Label, err)
			}
		}
	}

	for i, cmp := range c.Comparisons {
		if !labels[cmp.Treatment] {
			bad("comparisons[%d]: unknown treatment %q", i, cmp.Treatment)
		}
		if len(cmp.Baselines) == 0 {
			bad("comparisons[%d]: no baselines", i)
		}
		for _, b := range cmp.Baselines {
			if !labels[b] {
				bad("comparisons[%d]: unknown baseline %q", i, b)
			}
		}
		if _, err := expproc.ParseMetric(cmp.Metric); err != nil {
			bad("comparisons[%d]: %v", i, err)
		}
		if _, err := expmath.ParseDirection(cmp.Direction); err != nil {
			bad("comparisons[%d]: %v", i, err)
		}
	}

	for i, ch := range c.Charts {
		if _, err := expproc.ParseMetric(ch.Metric); err != nil {
			bad("charts[%d]: %v", i, err)
		}
		if ch.Kind != ErrorBars && ch.Kind != Means {
			bad("charts[%d]: unknown kind %q: want %s or %s", i, ch.Kind, ErrorBars, Means)
		}
		if ch.XMin != nil && ch.XMax != nil && *ch.XMin >= *ch.XMax {
			bad("charts[%d]: xmin %v not below xmax %v", i, *ch.XMin, *ch.XMax)
		}
	}

	if c.Store != nil {
		switch c.Store.Driver {
		case "sqlite3", "mysql":
		default:
			bad("store: unknown driver %q: want sqlite3 or mysql", c.Store.Driver)
		}
		if c.Store.DSN == "" {
			bad("store: missing dsn")
		}
	}
	return errors.Join(errs...)
}

// MapIDFunc returns the map identifier function selected by c.MapID.
func (c *Config) MapIDFunc() expfmt.MapIDFunc {
	if f := expfmt.MapIDFuncs[c.MapID]; f != nil {
		return f
	}
	return expfmt.DefaultMapID
}

// Thresholds returns the significance thresholds of c.
func (c *Config) Thresholds() expmath.Thresholds {
	t := expmath.DefaultThresholds
	if c.Alpha != 0 {
		t.Alpha = c.Alpha
	}
	return t
}

// Experiment returns the experiment labeled label, or nil.
func (c *Config) Experiment(label string) *Experiment {
	for i := range c.Experiments {
		if c.Experiments[i].Label == label {
			return &c.Experiments[i]
		}
	}
	return nil
}

// LoadExperiments loads every experiment of c with l, in order. The
// MapID of l is overridden by c's scheme so all sets agree.
func (c *Config) LoadExperiments(l expproc.Loader) ([]*expproc.ResultSet, error) {
	l.MapID = c.MapIDFunc()
	sets := make([]*expproc.ResultSet, 0, len(c.Experiments))
	for _, e := range c.Experiments {
		set, err := l.Load(e.Label, e.Source)
		if err != nil {
			return nil, err
		}
		set.Color = e.Color
		sets = append(sets, set)
	}
	return sets, nil
}
