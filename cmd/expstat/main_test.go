// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ptsp-tools/expstat/internal/diff"
)

func init() {
	logTimestamps = false
}

// run runs expstat in testdata and returns its output.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	if err := os.Chdir("testdata"); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir("..")

	var got, gotErr bytes.Buffer
	t.Logf("expstat %s", strings.Join(args, " "))
	err = expstat(&got, &gotErr, args)
	return got.String(), gotErr.String(), err
}

func golden(t *testing.T, name string, args ...string) string {
	t.Helper()
	got, gotErr, err := run(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %s\n%s", err, gotErr)
	}
	d, err := diff.Golden(filepath.Join("testdata", name+".stdout"), []byte(got))
	if err != nil {
		t.Fatal(err)
	}
	if d != "" {
		t.Errorf("%s.stdout:\n%s", name, d)
	}
	return gotErr
}

func TestFlags(t *testing.T) {
	stderr := golden(t, "waypoints",
		"-metric", "WaypointsVisited",
		"-compare", "QD-S-MCTS:S-MCTS,MCTS",
		"QD-S-MCTS=qd.tsv", "S-MCTS=smcts.tsv", "MCTS=mcts.tsv")
	// Failed maps are logged as well as printed.
	if !strings.Contains(stderr, "sample is too small") || !strings.Contains(stderr, "map=map3") {
		t.Errorf("stderr lacks the map3 warning:\n%s", stderr)
	}
}

func TestDefaultComparison(t *testing.T) {
	// Without -compare, the first input is the treatment.
	golden(t, "waypoints",
		"-metric", "waypoints",
		"QD-S-MCTS=qd.tsv", "S-MCTS=smcts.tsv", "MCTS=mcts.tsv")
}

func TestMergedLog(t *testing.T) {
	// A log merged by expfilter splits into its algorithms, in
	// order of appearance.
	golden(t, "waypoints", "-metric", "WaypointsVisited", "merged.tsv")
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	golden(t, "config", "-config", "experiments.yaml", "-charts", dir, "-chart-format", "png,svg")
	for _, name := range []string{
		"StepsPerWaypoint-errorbars.png",
		"StepsPerWaypoint-errorbars.svg",
		"WaypointsVisited-means.png",
		"WaypointsVisited-means.svg",
	} {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Error(err)
		} else if fi.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestFilter(t *testing.T) {
	got, _, err := run(t, "-metric", "WaypointsVisited", "-filter", "^map1$", "QD-S-MCTS=qd.tsv", "S-MCTS=smcts.tsv")
	if err != nil {
		t.Fatal(err)
	}
	want := "Result for Welch t-test that QD-S-MCTS WaypointsVisited is greater than S-MCTS\n" +
		"map1: statistics=3.5762\tp-value=0.0061\n" +
		"Average p-value: 0.0061\n\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSummary(t *testing.T) {
	got, _, err := run(t, "-summary", "-metric", "Steps", "A=qd.tsv")
	if err != nil {
		t.Fatal(err)
	}
	// A single input has nothing to compare against.
	if strings.Contains(got, "Welch") {
		t.Errorf("unexpected comparison:\n%s", got)
	}
	for _, want := range []string{"Steps\n", "stddev", "map10", "210.0000"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestCSV(t *testing.T) {
	got, _, err := run(t, "-format", "csv", "-metric", "WaypointsVisited", "QD-S-MCTS=qd.tsv", "S-MCTS=smcts.tsv")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"algorithm,map,metric,n,min,max,mean,stddev\n",
		"QD-S-MCTS,map1,WaypointsVisited,4,8,10,9.25,",
		"QD-S-MCTS,S-MCTS,map10,WaypointsVisited,greater,,,1,\n",
		"QD-S-MCTS,S-MCTS,map3,WaypointsVisited,greater,,,,sample is too small",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestHTML(t *testing.T) {
	got, _, err := run(t, "-format", "html", "-metric", "WaypointsVisited", "QD-S-MCTS=qd.tsv", "S-MCTS=smcts.tsv")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>QD-S-MCTS vs S-MCTS</title>", `class="significant"`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestArchive(t *testing.T) {
	db := "sqlite3:" + filepath.Join(t.TempDir(), "results.db")
	_, stderr, err := run(t, "-db", db, "-metric", "WaypointsVisited", "QD-S-MCTS=qd.tsv", "S-MCTS=smcts.tsv", "MCTS=mcts.tsv")
	if err != nil {
		t.Fatal(err)
	}
	i := strings.Index(stderr, "run=")
	if i < 0 {
		t.Fatalf("no run ID logged:\n%s", stderr)
	}
	id := strings.Fields(stderr[i+len("run="):])[0]

	stdout, _, err := run(t, "-db", db, "-show", id)
	if err != nil {
		t.Fatal(err)
	}
	// The archived run prints like the original.
	want, err := os.ReadFile(filepath.Join("testdata", "waypoints.stdout"))
	if err != nil {
		t.Fatal(err)
	}
	if stdout != string(want) {
		t.Errorf("archived run:\n%s\nwant:\n%s", stdout, want)
	}

	// -summary adds the archived summary tables.
	stdout, _, err = run(t, "-db", db, "-show", id, "-summary")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"WaypointsVisited\n", "stddev", "QD-S-MCTS", "9.2500", string(want)} {
		if !strings.Contains(stdout, want) {
			t.Errorf("missing %q in:\n%s", want, stdout)
		}
	}

	if _, _, err := run(t, "-db", db, "-show", "19700101.1"); err == nil {
		t.Errorf("want error for unknown run")
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"-format", "pdf", "a=qd.tsv"},
		{"-chart-format", "gif", "a=qd.tsv"},
		{"-db", "sqlite3", "a=qd.tsv"},
		{"-show", "20260101.1"},
		{"-compare", "QD", "QD=qd.tsv"},
		{"-config", "experiments.yaml", "a=qd.tsv"},
		{"-metric", "speed", "a=qd.tsv"},
		{"-map-id", "hash", "a=qd.tsv"},
	} {
		_, stderr, err := run(t, args...)
		if !errors.Is(err, errUsage) {
			t.Errorf("%v: got error %v, want usage error", args, err)
		}
		if !strings.Contains(stderr, "usage: expstat") {
			t.Errorf("%v: no usage message:\n%s", args, stderr)
		}
	}
}

func TestErrors(t *testing.T) {
	for _, test := range []struct {
		args []string
		want string
	}{
		{[]string{"a=missing.tsv"}, "missing.tsv"},
		{[]string{"-compare", "a:b", "a=merged.tsv"}, `unknown treatment "a"`},
		{[]string{"-compare", "a:nope", "a=qd.tsv"}, `unknown baseline "nope"`},
	} {
		_, _, err := run(t, test.args...)
		if err == nil || errors.Is(err, errUsage) || !strings.Contains(err.Error(), test.want) {
			t.Errorf("%v: got error %v, want %q", test.args, err, test.want)
		}
	}
}
