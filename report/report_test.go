// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ptsp-tools/expstat/expfmt"
	"github.com/ptsp-tools/expstat/expmath"
	"github.com/ptsp-tools/expstat/expproc"
)

func testSets() []*expproc.ResultSet {
	rec := func(mapID string, waypoints, steps int) *expfmt.Record {
		return &expfmt.Record{MapID: mapID, WaypointsVisited: waypoints, Steps: steps, FmCallsPerAction: math.NaN(), TimePerActionMs: math.NaN()}
	}
	a := &expproc.ResultSet{Label: "A", Color: "red", Records: []*expfmt.Record{
		rec("map1", 5, 100), rec("map1", 5, 120), rec("map2", 0, 900),
	}}
	b := &expproc.ResultSet{Label: "B", Records: []*expfmt.Record{
		rec("map1", 3, 150), rec("map1", 2, 140), rec("map2", 1, 10), rec("map2", 1, 12),
	}}
	return []*expproc.ResultSet{a, b}
}

func testComparison(t *testing.T) *Comparison {
	t.Helper()
	sets := testSets()
	res, err := expproc.CompareGroups(sets[0], sets[1], expproc.StepsPerWaypoint, expmath.Less)
	if len(res) != 1 || err == nil {
		t.Fatalf("CompareGroups: got %d results, error %v; want 1 result and 1 error", len(res), err)
	}
	return NewComparison("A", "B", expproc.StepsPerWaypoint.Name, expmath.Less, res, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, testComparison(t)); err != nil {
		t.Fatal(err)
	}
	want := `Result for Welch t-test that A StepsPerWaypoint is less than B
map1: statistics=-4.8698	p-value=0.0455
map2: error: sample is too small: need at least 2 observations
Average p-value: 0.0455

`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestWriteTextNoResults(t *testing.T) {
	c := &Comparison{AlgorithmA: "A", AlgorithmB: "B", Metric: "Steps", Direction: expmath.Greater}
	var buf bytes.Buffer
	if err := WriteText(&buf, c); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "Average p-value: NaN\n\n") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteSummaryTable(t *testing.T) {
	sums := expproc.SummaryList(testSets(), expproc.Steps)
	var buf bytes.Buffer
	if err := WriteSummaryTable(&buf, sums); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if lines[0] != "Steps" {
		t.Errorf("first line %q, want metric name", lines[0])
	}
	if len(lines) != 2+len(sums) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), 2+len(sums), buf.String())
	}
	for _, col := range []string{"map", "algorithm", "n", "min", "max", "mean", "stddev"} {
		if !strings.Contains(lines[1], col) {
			t.Errorf("header %q lacks column %s", lines[1], col)
		}
	}
	if !strings.Contains(lines[2], "110.0000") || !strings.Contains(lines[2], "14.1421") {
		t.Errorf("A/map1 row %q lacks mean 110 and stddev 14.1421", lines[2])
	}
	if !strings.Contains(lines[3], "NaN") {
		t.Errorf("single observation row %q lacks NaN stddev", lines[3])
	}

	buf.Reset()
	if err := WriteSummaryTable(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("empty summaries: got %q, %v", buf.String(), err)
	}
}

func TestWriteMeanTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMeanTable(&buf, expproc.MeanTable(testSets(), expproc.Steps)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"mean Steps", "145.0000", "900.0000"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in:\n%s", want, buf.String())
		}
	}
}

func TestWriteCSV(t *testing.T) {
	sums := expproc.SummaryList(testSets()[:1], expproc.Steps)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sums, []*Comparison{testComparison(t)}); err != nil {
		t.Fatal(err)
	}
	want := `algorithm,map,metric,n,min,max,mean,stddev
A,map1,Steps,2,100,120,110,14.142135623730951
A,map2,Steps,1,900,900,900,

algorithm,baseline,map,metric,direction,t,dof,p,error
`
	got := buf.String()
	if !strings.HasPrefix(got, want) {
		t.Fatalf("got:\n%s\nwant prefix:\n%s", got, want)
	}
	rest := strings.Split(strings.TrimSuffix(got[len(want):], "\n"), "\n")
	if len(rest) != 2 {
		t.Fatalf("got %d comparison rows, want 2:\n%s", len(rest), got)
	}
	if !strings.HasPrefix(rest[0], "A,B,map1,StepsPerWaypoint,less,-4.8698") {
		t.Errorf("map1 row %q", rest[0])
	}
	if rest[1] != "A,B,map2,StepsPerWaypoint,less,,,,sample is too small: need at least 2 observations" {
		t.Errorf("map2 row %q", rest[1])
	}
}

func TestWriteHTML(t *testing.T) {
	sums := expproc.SummaryList(testSets(), expproc.StepsPerWaypoint)
	var buf bytes.Buffer
	if err := WriteHTML(&buf, "A vs B <run 1>", sums, []*Comparison{testComparison(t)}); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{
		"<title>A vs B &lt;run 1&gt;</title>",
		`<tr class="significant"><td class="name">map1<td>-4.8698<td>0.0455`,
		`<tr class="error"><td class="name">map2`,
		"sample is too small",
		"<h2>A StepsPerWaypoint less than B</h2>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestCharts(t *testing.T) {
	dir := t.TempDir()
	sets := testSets()
	xmax := 1000.0
	c := &Chart{Metric: expproc.StepsPerWaypoint, XLabel: "Avg. Steps per Waypoint", XMax: &xmax, Colors: map[string]string{"A": "red"}}

	p, err := c.ErrorBars(expproc.SummaryList(sets, c.Metric))
	if err != nil {
		t.Fatal(err)
	}
	if p.X.Max != 1000 {
		t.Errorf("X.Max = %v, want 1000", p.X.Max)
	}
	paths, err := Save(p, 2, dir, FileName(c.Metric.Name, "errorbars"), PNG, SVG)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "StepsPerWaypoint-errorbars.png"),
		filepath.Join(dir, "StepsPerWaypoint-errorbars.svg"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}

	pv := expproc.PivotMeans(expproc.MeanTable(sets, c.Metric), c.Metric)
	p, err = c.Means(pv)
	if err != nil {
		t.Fatal(err)
	}
	paths, err = Save(p, len(pv.MapIDs), dir, FileName(c.Metric.Name, "means"), PNG)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range append(want, paths...) {
		fi, err := os.Stat(path)
		if err != nil {
			t.Error(err)
		} else if fi.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}

	if _, err := Save(p, 1, dir, "x", "pdf"); err == nil {
		t.Errorf("want error for unknown format")
	}
}

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in   string
		want color.Color
	}{
		{"red", color.RGBA{0xff, 0, 0, 0xff}},
		{" SteelBlue ", color.RGBA{0x46, 0x82, 0xb4, 0xff}},
		{"#1f77b4", color.RGBA{0x1f, 0x77, 0xb4, 0xff}},
		{"#abc", color.RGBA{0xaa, 0xbb, 0xcc, 0xff}},
	} {
		got, err := ParseColor(test.in)
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: got %v, want %v", test.in, got, test.want)
		}
	}
	for _, bad := range []string{"", "nocolor", "#12", "#ggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("%q: want error", bad)
		}
	}
}

func TestSetColor(t *testing.T) {
	if got := setColor(3, "blue"); got != (color.RGBA{0, 0, 0xff, 0xff}) {
		t.Errorf("configured color: got %v", got)
	}
	if got := setColor(len(palette)+1, ""); got != palette[1] {
		t.Errorf("palette wraps: got %v, want %v", got, palette[1])
	}
	if got := setColor(0, "bogus"); got != palette[0] {
		t.Errorf("bad name falls back: got %v", got)
	}
	if got := translucent(color.RGBA{0xff, 0, 0, 0xff}, 0.5); got != (color.NRGBA{0xff, 0, 0, 0x7f}) {
		t.Errorf("translucent: got %v", got)
	}
}

func TestComparisonErrorsOrder(t *testing.T) {
	c := &Comparison{
		Results: []expproc.ComparisonResult{{MapID: "map10"}},
		Errors: []*expproc.ComparisonError{
			{MapID: "map2", Err: errors.New("x")},
			{MapID: "map1", Missing: "B"},
		},
	}
	var got []string
	for _, l := range c.lines() {
		got = append(got, l.MapID)
	}
	if diff := cmp.Diff([]string{"map1", "map2", "map10"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
