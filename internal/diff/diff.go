// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff compares command output against golden files.
package diff

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Diff returns a human-readable description of the differences
// between want and got, or "" if they are equal. If the "diff" command
// is available, it returns the output of unified diff on the two.
func Diff(want, got []byte) string {
	if bytes.Equal(want, got) {
		return ""
	}
	fallback := fmt.Sprintf("want:\n%s\ngot:\n%s", want, got)

	cmd := "diff"
	if runtime.GOOS == "plan9" {
		cmd = "/bin/ape/diff"
	}
	if _, err := exec.LookPath(cmd); err != nil {
		return fallback
	}

	d, err := os.MkdirTemp("", "expstat-diff")
	if err != nil {
		return fallback
	}
	defer os.RemoveAll(d)
	if os.WriteFile(filepath.Join(d, "want"), want, 0666) != nil ||
		os.WriteFile(filepath.Join(d, "got"), got, 0666) != nil {
		return fallback
	}

	c := exec.Command(cmd, "-u", "want", "got")
	c.Dir = d
	// diff exits with a non-zero status when the files don't
	// match. Ignore that failure as long as we get output.
	data, _ := c.CombinedOutput()
	if len(data) == 0 {
		return fallback
	}
	return string(data)
}

// Golden compares got against the contents of path and returns the
// differences, or "" if they match. A missing golden file reads as
// empty. On mismatch, got is written next to path with the suffix
// ".got" for inspection.
func Golden(path string, got []byte) (string, error) {
	want, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	d := Diff(want, got)
	if d == "" {
		return "", nil
	}
	if err := os.WriteFile(path+".got", got, 0666); err != nil {
		return d, err
	}
	return d, nil
}
