// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Expstat summarizes PTSP experiment logs per map and tests whether
// one algorithm's results differ significantly from another's.
//
// Usage:
//
//	expstat [flags] label=results.tsv label=results.tsv ...
//	expstat -config experiments.yaml [flags]
//	expstat -db driver:dsn -show runID
//
// Each input is a tab-separated log with a header row naming at least
// the columns MapName, WaypointsVisited and Steps. Inputs may be local
// files or gs://bucket/object paths. The label of an input defaults to
// its path.
//
// For each comparison, expstat runs a one-sided Welch two-sample t-test
// per map and prints
//
//	Result for Welch t-test that QD-S-MCTS WaypointsVisited is greater than S-MCTS
//	map1: statistics=3.5762	p-value=0.0061
//	map3: error: sample is too small: need at least 2 observations
//	Average p-value: 0.0061
//
// Comparisons come from the configuration file or from -compare flags
// of the form treatment:baseline[,baseline...]. Without either, the
// first input is compared against every other input.
//
// The -summary flag adds a per-map table of n, min, max, mean and
// standard deviation. The -format flag selects text, csv or html
// output.
//
// With -charts, expstat also writes an error-bar chart and a mean bar
// chart of the metric to the given directory, named
// <metric>-errorbars.png and <metric>-means.png. A configuration file
// can instead list the charts to draw.
//
// With -db, the summaries and comparisons are archived as a new run
// in a sqlite3 or mysql database, for example -db sqlite3:results.db.
// -show prints an archived run instead of reading inputs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ptsp-tools/expstat/expconfig"
	"github.com/ptsp-tools/expstat/expfmt"
	"github.com/ptsp-tools/expstat/expmath"
	"github.com/ptsp-tools/expstat/expproc"
	"github.com/ptsp-tools/expstat/internal/gcs"
	"github.com/ptsp-tools/expstat/report"
	"github.com/ptsp-tools/expstat/store"
)

func main() {
	log := newLogger(os.Stderr, false)
	if err := expstat(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error().Err(err).Msg("expstat failed")
		os.Exit(1)
	}
}

// errUsage reports a command line error. The usage message has
// already been printed.
var errUsage = errors.New("usage error")

// logTimestamps is cleared by tests for reproducible logs.
var logTimestamps = true

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	if !logTimestamps {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(cw).Level(level).With()
	if logTimestamps {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, " ") }
func (l *stringList) Set(s string) error { *l = append(*l, s); return nil }

func expstat(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("expstat", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `usage: expstat [flags] label=results.tsv...
       expstat -config experiments.yaml [flags]
       expstat -db driver:dsn -show runID
`)
		flags.PrintDefaults()
	}
	var compares stringList
	flags.Var(&compares, "compare", "compare `treatment:baseline[,baseline]`; may be repeated")
	var (
		flagConfig    = flags.String("config", "", "read experiments, comparisons and charts from YAML `file`")
		flagMetric    = flags.String("metric", expproc.StepsPerWaypoint.Name, "`metric` for -compare, -summary and -charts")
		flagDirection = flags.String("direction", "greater", "alternative hypothesis of -compare: greater or less")
		flagAlpha     = flags.Float64("alpha", 0, "significance level `α` (default 0.05)")
		flagMapID     = flags.String("map-id", "", "map identifier `scheme`: segment or stem (default segment)")
		flagFilter    = flags.String("filter", "", "only use maps whose identifier matches `regexp`")
		flagFormat    = flags.String("format", "text", "print results as text, csv or html")
		flagSummary   = flags.Bool("summary", false, "print per-map summary tables (text format)")
		flagCharts    = flags.String("charts", "", "write charts of -metric to `dir`")
		flagChartFmt  = flags.String("chart-format", "png", "comma-separated chart image `formats`: png, svg")
		flagDB        = flags.String("db", "", "archive results in `driver:dsn` (sqlite3 or mysql)")
		flagShow      = flags.String("show", "", "print archived run `id` from -db and exit")
		flagVerbose   = flags.Bool("v", false, "log debug messages")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	log := newLogger(wErr, *flagVerbose)
	usageErr := func(format string, args ...interface{}) error {
		fmt.Fprintf(wErr, "expstat: "+format+"\n", args...)
		flags.Usage()
		return errUsage
	}

	metric, err := expproc.ParseMetric(*flagMetric)
	if err != nil {
		return usageErr("%v", err)
	}
	if _, ok := expfmt.MapIDFuncs[*flagMapID]; !ok {
		return usageErr("unknown -map-id scheme %q", *flagMapID)
	}

	switch *flagFormat {
	case "text", "csv", "html":
	default:
		return usageErr("unknown format %q", *flagFormat)
	}
	chartFormats := strings.Split(*flagChartFmt, ",")
	for _, f := range chartFormats {
		if f != report.PNG && f != report.SVG {
			return usageErr("unknown chart format %q", f)
		}
	}
	var dbDriver, dbDSN string
	if *flagDB != "" {
		var ok bool
		dbDriver, dbDSN, ok = strings.Cut(*flagDB, ":")
		if !ok || dbDSN == "" {
			return usageErr("-db must have the form driver:dsn")
		}
	}
	ctx := context.Background()

	if *flagShow != "" {
		if dbDriver == "" {
			return usageErr("-show requires -db")
		}
		return show(ctx, w, dbDriver, dbDSN, *flagShow, *flagFormat, *flagSummary)
	}

	// Assemble the configuration.
	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg := new(expconfig.Config)
	if *flagConfig != "" {
		if flags.NArg() > 0 {
			return usageErr("-config and input files are mutually exclusive")
		}
		if cfg, err = expconfig.Load(*flagConfig); err != nil {
			return err
		}
		log.Debug().Str("config", *flagConfig).Int("experiments", len(cfg.Experiments)).Msg("loaded configuration")
		if len(cfg.Experiments) == 0 {
			return usageErr("no experiments in %s", *flagConfig)
		}
	} else if flags.NArg() == 0 {
		return usageErr("no inputs")
	}
	if set["map-id"] {
		cfg.MapID = *flagMapID
	}
	if set["alpha"] {
		cfg.Alpha = *flagAlpha
	}
	for _, c := range compares {
		treatment, baselines, ok := strings.Cut(c, ":")
		if !ok || baselines == "" {
			return usageErr("bad -compare %q: want treatment:baseline[,baseline]", c)
		}
		cfg.Comparisons = append(cfg.Comparisons, expconfig.Comparison{
			Treatment: treatment,
			Baselines: strings.Split(baselines, ","),
			Metric:    *flagMetric,
			Direction: *flagDirection,
		})
	}

	// Load. Positional inputs follow the label=path convention of
	// expfmt.Files; their labels are only known once read, since a
	// merged log holds several algorithms.
	opener := gcs.NewOpener(ctx)
	defer opener.Close()
	var sets []*expproc.ResultSet
	if *flagConfig == "" {
		files := &expfmt.Files{
			Paths:       flags.Args(),
			AllowStdin:  true,
			AllowLabels: true,
			MapID:       cfg.MapIDFunc(),
			Open:        opener.Open,
		}
		if sets, err = expproc.LoadFiles(files); err != nil {
			return err
		}
		if len(sets) == 0 {
			return fmt.Errorf("no records in %s", strings.Join(flags.Args(), ", "))
		}
		for _, s := range sets {
			cfg.Experiments = append(cfg.Experiments, expconfig.Experiment{Label: s.Label, Source: s.Records[0].Source})
		}
	}

	if len(cfg.Comparisons) == 0 && len(cfg.Experiments) > 1 {
		var baselines []string
		for _, e := range cfg.Experiments[1:] {
			baselines = append(baselines, e.Label)
		}
		cfg.Comparisons = append(cfg.Comparisons, expconfig.Comparison{
			Treatment: cfg.Experiments[0].Label,
			Baselines: baselines,
			Metric:    *flagMetric,
			Direction: *flagDirection,
		})
	}
	if *flagCharts != "" {
		cfg.OutputDir = *flagCharts
		if len(cfg.Charts) == 0 {
			cfg.Charts = []expconfig.Chart{
				{Metric: *flagMetric, Kind: expconfig.ErrorBars},
				{Metric: *flagMetric, Kind: expconfig.Means},
			}
		}
	}
	if dbDriver != "" {
		cfg.Store = &expconfig.Store{Driver: dbDriver, DSN: dbDSN}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *flagConfig != "" {
		if sets, err = cfg.LoadExperiments(expproc.Loader{Open: opener.Open}); err != nil {
			return err
		}
	}
	if *flagFilter != "" {
		re, err := regexp.Compile(*flagFilter)
		if err != nil {
			return usageErr("bad -filter: %v", err)
		}
		for i, s := range sets {
			sets[i] = s.Filter(re)
		}
	}
	byLabel := make(map[string]*expproc.ResultSet)
	for _, s := range sets {
		byLabel[s.Label] = s
		log.Debug().Str("algorithm", s.Label).Int("records", len(s.Records)).Int("maps", len(s.MapIDs())).Msg("loaded")
	}

	// Compare.
	var cmps []*report.Comparison
	for _, c := range cfg.Comparisons {
		m, _ := expproc.ParseMetric(c.Metric)
		dir, _ := expmath.ParseDirection(c.Direction)
		for _, baseline := range c.Baselines {
			results, err := expproc.CompareGroupsWith(byLabel[c.Treatment], byLabel[baseline], m, dir, cfg.Thresholds())
			cmp := report.NewComparison(c.Treatment, baseline, m.Name, dir, results, err)
			for _, e := range cmp.Errors {
				log.Warn().Str("map", e.MapID).Str("treatment", c.Treatment).Str("baseline", baseline).Str("metric", m.Name).Msg(e.Reason())
			}
			for _, r := range cmp.Results {
				for _, warn := range r.Warnings {
					log.Debug().Str("map", r.MapID).Str("treatment", c.Treatment).Str("baseline", baseline).Str("metric", m.Name).Msg(warn.Error())
				}
			}
			cmps = append(cmps, cmp)
		}
	}

	// Summarize every metric that is compared or charted.
	var metrics []expproc.Metric
	seen := make(map[string]bool)
	addMetric := func(m expproc.Metric) {
		if !seen[m.Name] {
			seen[m.Name] = true
			metrics = append(metrics, m)
		}
	}
	addMetric(metric)
	for _, c := range cfg.Comparisons {
		m, _ := expproc.ParseMetric(c.Metric)
		addMetric(m)
	}
	for _, c := range cfg.Charts {
		m, _ := expproc.ParseMetric(c.Metric)
		addMetric(m)
	}
	var sums []expproc.GroupedSummary
	sumsByMetric := make(map[string][]expproc.GroupedSummary)
	for _, m := range metrics {
		ms := expproc.SummaryList(sets, m)
		for _, s := range ms {
			for _, warn := range s.Warnings {
				log.Debug().Str("map", s.MapID).Str("algorithm", s.Algorithm).Str("metric", m.Name).Msg(warn.Error())
			}
		}
		sumsByMetric[m.Name] = ms
		sums = append(sums, ms...)
	}

	// Print.
	switch *flagFormat {
	case "text":
		if *flagSummary {
			if err := writeSummaryTables(w, sums); err != nil {
				return err
			}
		}
		for _, c := range cmps {
			if err := report.WriteText(w, c); err != nil {
				return err
			}
		}
	case "csv":
		if err := report.WriteCSV(w, sums, cmps); err != nil {
			return err
		}
	case "html":
		var labels []string
		for _, s := range sets {
			labels = append(labels, s.Label)
		}
		if err := report.WriteHTML(w, strings.Join(labels, " vs "), sums, cmps); err != nil {
			return err
		}
	}

	// Charts.
	colors := make(map[string]string)
	for _, e := range cfg.Experiments {
		colors[e.Label] = e.Color
	}
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	for _, ch := range cfg.Charts {
		m, _ := expproc.ParseMetric(ch.Metric)
		rc := &report.Chart{Metric: m, XLabel: ch.XLabel, XMin: ch.XMin, XMax: ch.XMax, Colors: colors}
		var paths []string
		switch ch.Kind {
		case expconfig.ErrorBars:
			p, err := rc.ErrorBars(sumsByMetric[m.Name])
			if err != nil {
				return err
			}
			paths, err = report.Save(p, countMaps(sumsByMetric[m.Name]), outDir, report.FileName(m.Name, ch.Kind), chartFormats...)
			if err != nil {
				return err
			}
		case expconfig.Means:
			pv := expproc.PivotMeans(expproc.MeanTable(sets, m), m)
			p, err := rc.Means(pv)
			if err != nil {
				return err
			}
			paths, err = report.Save(p, len(pv.MapIDs), outDir, report.FileName(m.Name, ch.Kind), chartFormats...)
			if err != nil {
				return err
			}
		}
		for _, path := range paths {
			log.Info().Str("path", path).Msg("wrote chart")
		}
	}

	// Archive.
	if cfg.Store != nil {
		id, err := archive(ctx, cfg.Store, sums, cmps)
		if err != nil {
			return fmt.Errorf("archiving results: %w", err)
		}
		log.Info().Str("run", id).Msg("archived results")
	}
	return nil
}

// writeSummaryTables writes one summary table per metric of sums, in
// order of first appearance.
func writeSummaryTables(w io.Writer, sums []expproc.GroupedSummary) error {
	var metrics []string
	byMetric := make(map[string][]expproc.GroupedSummary)
	for _, s := range sums {
		if _, ok := byMetric[s.Metric]; !ok {
			metrics = append(metrics, s.Metric)
		}
		byMetric[s.Metric] = append(byMetric[s.Metric], s)
	}
	for _, m := range metrics {
		if err := report.WriteSummaryTable(w, byMetric[m]); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func countMaps(sums []expproc.GroupedSummary) int {
	maps := make(map[string]bool)
	for _, s := range sums {
		maps[s.MapID] = true
	}
	return len(maps)
}

func archive(ctx context.Context, cfg *expconfig.Store, sums []expproc.GroupedSummary, cmps []*report.Comparison) (string, error) {
	db, err := store.OpenSQL(cfg.Driver, cfg.DSN)
	if err != nil {
		return "", err
	}
	defer db.Close()
	run, err := db.NewRun(ctx)
	if err != nil {
		return "", err
	}
	if err := run.AddSummaries(ctx, sums); err != nil {
		run.Abort()
		return "", err
	}
	for _, c := range cmps {
		if err := run.AddComparison(ctx, c); err != nil {
			run.Abort()
			return "", err
		}
	}
	return run.ID, run.Commit()
}

func show(ctx context.Context, w io.Writer, driver, dsn, runID, format string, summary bool) error {
	db, err := store.OpenSQL(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	sums, err := db.Summaries(ctx, runID)
	if err != nil {
		return err
	}
	cmps, err := db.Comparisons(ctx, runID)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		return report.WriteCSV(w, sums, cmps)
	case "html":
		return report.WriteHTML(w, "run "+runID, sums, cmps)
	}
	if summary {
		if err := writeSummaryTables(w, sums); err != nil {
			return err
		}
	}
	for _, c := range cmps {
		if err := report.WriteText(w, c); err != nil {
			return err
		}
	}
	return nil
}
