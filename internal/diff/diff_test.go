// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	if d := Diff([]byte("a\nb\n"), []byte("a\nb\n")); d != "" {
		t.Errorf("equal inputs: got %q", d)
	}
	d := Diff([]byte("a\nb\n"), []byte("a\nc\n"))
	if !strings.Contains(d, "b") || !strings.Contains(d, "c") {
		t.Errorf("diff %q does not mention both sides", d)
	}
}

func TestGolden(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.golden")
	if err := os.WriteFile(path, []byte("map1\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if d, err := Golden(path, []byte("map1\n")); d != "" || err != nil {
		t.Errorf("match: got %q, %v", d, err)
	}
	if _, err := os.Stat(path + ".got"); !os.IsNotExist(err) {
		t.Errorf("match wrote a .got file")
	}

	d, err := Golden(path, []byte("map2\n"))
	if d == "" || err != nil {
		t.Errorf("mismatch: got %q, %v", d, err)
	}
	got, err := os.ReadFile(path + ".got")
	if err != nil || string(got) != "map2\n" {
		t.Errorf(".got file: %q, %v", got, err)
	}

	// Missing golden files read as empty.
	if d, err := Golden(filepath.Join(dir, "missing"), nil); d != "" || err != nil {
		t.Errorf("missing: got %q, %v", d, err)
	}
}
