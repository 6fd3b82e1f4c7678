// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expproc aggregates experiment records into per-map
// statistics and compares algorithms map by map.
//
// The basic flow is to load one ResultSet per algorithm, summarize
// each ResultSet for a Metric, and compare pairs of ResultSets with
// CompareGroups. All ResultSets taking part in one comparison must be
// loaded with the same expfmt.MapIDFunc; expproc groups by the MapID
// stored in each record and never re-derives it.
package expproc

import (
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/ptsp-tools/expstat/expfmt"
)

// A ResultSet is the ordered sequence of records of one algorithm,
// loaded from one source.
type ResultSet struct {
	Label string

	// Color is the display color of the set, passed through to
	// renderers. It may be empty.
	Color string

	Records []*expfmt.Record
}

// A Loader loads ResultSets from tab-separated experiment logs.
type Loader struct {
	// MapID derives map identifiers. If nil, expfmt.DefaultMapID
	// is used.
	MapID expfmt.MapIDFunc

	// Open opens a source path. If nil, os.Open is used.
	Open func(path string) (io.ReadCloser, error)
}

// Load reads the whole log at path into a ResultSet labeled label.
// A malformed log fails with an error wrapping *expfmt.ParseError and
// no partial set is returned.
//
// If the log has an Algorithm column, as logs merged by expfmt.Writer
// do, only the rows of algorithm label are loaded, and it is an error
// if there are none.
func (l *Loader) Load(label, path string) (*ResultSet, error) {
	open := l.Open
	if open == nil {
		open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := expfmt.NewReader(f, path, label)
	r.MapID = l.MapID
	set := &ResultSet{Label: label}
	merged := false
	for r.Scan() {
		rec := r.Record()
		if rec.Label != label {
			merged = true
			continue
		}
		set.Records = append(set.Records, rec.Clone())
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", label, err)
	}
	if merged && len(set.Records) == 0 {
		return nil, fmt.Errorf("loading %s: %s has no records for algorithm %q", label, path, label)
	}
	return set, nil
}

// LoadFile is shorthand for a Loader with the given MapIDFunc loading
// one local file.
func LoadFile(path, label string, mapID expfmt.MapIDFunc) (*ResultSet, error) {
	l := Loader{MapID: mapID}
	return l.Load(label, path)
}

// LoadFiles reads all of files and splits the records into one
// ResultSet per record label, in order of first appearance, so a
// merged log yields one ResultSet per algorithm. Inputs without
// records produce no ResultSet.
func LoadFiles(files *expfmt.Files) ([]*ResultSet, error) {
	var sets []*ResultSet
	byLabel := make(map[string]*ResultSet)
	for files.Scan() {
		rec := files.Record().Clone()
		set := byLabel[rec.Label]
		if set == nil {
			set = &ResultSet{Label: rec.Label}
			byLabel[rec.Label] = set
			sets = append(sets, set)
		}
		set.Records = append(set.Records, rec)
	}
	if err := files.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// Groups returns the values of metric m for each map identifier in
// s. Records for which m is NaN are skipped.
func (s *ResultSet) Groups(m Metric) map[string][]float64 {
	groups := make(map[string][]float64)
	for _, rec := range s.Records {
		v := m.Value(rec)
		if math.IsNaN(v) {
			continue
		}
		groups[rec.MapID] = append(groups[rec.MapID], v)
	}
	return groups
}

// MapIDs returns the distinct map identifiers of s in natural order.
func (s *ResultSet) MapIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, rec := range s.Records {
		if !seen[rec.MapID] {
			seen[rec.MapID] = true
			ids = append(ids, rec.MapID)
		}
	}
	SortMapIDs(ids)
	return ids
}

// Filter returns a ResultSet holding the records of s whose MapID
// matches re.
func (s *ResultSet) Filter(re *regexp.Regexp) *ResultSet {
	out := &ResultSet{Label: s.Label, Color: s.Color}
	for _, rec := range s.Records {
		if re.MatchString(rec.MapID) {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

var digits = regexp.MustCompile(`\d+`)

// SortMapIDs sorts map identifiers in natural order, so that "map2"
// sorts before "map10".
func SortMapIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return naturalLess(ids[i], ids[j])
	})
}

func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ia, ib := digits.FindStringIndex(a), digits.FindStringIndex(b)
		if ia == nil || ib == nil || ia[0] != ib[0] || a[:ia[0]] != b[:ib[0]] {
			return a < b
		}
		na, _ := strconv.ParseUint(a[ia[0]:ia[1]], 10, 64)
		nb, _ := strconv.ParseUint(b[ib[0]:ib[1]], 10, 64)
		if na != nb {
			return na < nb
		}
		if a[ia[0]:ia[1]] != b[ib[0]:ib[1]] {
			// Same value, different zero padding.
			return a[ia[0]:ia[1]] < b[ib[0]:ib[1]]
		}
		a, b = a[ia[1]:], b[ib[1]:]
	}
	return a < b
}
