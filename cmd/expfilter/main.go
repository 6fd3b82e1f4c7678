// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Expfilter reads PTSP experiment logs from input files, keeps the
// records whose map identifier and algorithm label match the given
// patterns, and writes them to stdout as a single log. If no inputs
// are provided, it reads from stdin.
//
// Usage:
//
//	expfilter [-map regexp] [-algorithm regexp] [-map-id scheme] [label=]inputs...
//
// The output adds Algorithm, MapID and StepsPerWaypoint columns to
// each record, so logs from several algorithms can be merged into one
// file and read back by expstat.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/ptsp-tools/expstat/expfmt"
	"github.com/ptsp-tools/expstat/internal/gcs"
)

var errUsage = errors.New("usage error")

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	if err := expfilter(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error().Err(err).Msg("expfilter failed")
		os.Exit(1)
	}
}

func expfilter(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("expfilter", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: expfilter [flags] [inputs...]\n")
		flags.PrintDefaults()
	}
	var (
		flagMap   = flags.String("map", "", "keep only maps whose identifier matches `regexp`")
		flagAlgo  = flags.String("algorithm", "", "keep only inputs whose label matches `regexp`")
		flagMapID = flags.String("map-id", "", "map identifier `scheme`: segment or stem")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	usageErr := func(format string, args ...interface{}) error {
		fmt.Fprintf(wErr, "expfilter: "+format+"\n", args...)
		flags.Usage()
		return errUsage
	}

	mapID, ok := expfmt.MapIDFuncs[*flagMapID]
	if !ok {
		return usageErr("unknown -map-id scheme %q", *flagMapID)
	}
	var mapRE, algoRE *regexp.Regexp
	var err error
	if *flagMap != "" {
		if mapRE, err = regexp.Compile(*flagMap); err != nil {
			return usageErr("bad -map: %v", err)
		}
	}
	if *flagAlgo != "" {
		if algoRE, err = regexp.Compile(*flagAlgo); err != nil {
			return usageErr("bad -algorithm: %v", err)
		}
	}

	opener := gcs.NewOpener(context.Background())
	defer opener.Close()
	writer := expfmt.NewWriter(w)
	files := expfmt.Files{
		Paths:       flags.Args(),
		AllowStdin:  true,
		AllowLabels: true,
		MapID:       mapID,
		Open:        opener.Open,
	}
	for files.Scan() {
		rec := files.Record()
		if algoRE != nil && !algoRE.MatchString(rec.Label) {
			continue
		}
		if mapRE != nil && !mapRE.MatchString(rec.MapID) {
			continue
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return files.Err()
}
