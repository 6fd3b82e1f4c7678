// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store archives summaries and comparisons in a SQL database.
//
// Each invocation of expstat that archives its results creates a Run
// with a date-based ID such as "20260301.2", the second run of that
// day.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"

	// Drivers accepted by OpenSQL.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ptsp-tools/expstat/expmath"
	"github.com/ptsp-tools/expstat/expproc"
	"github.com/ptsp-tools/expstat/report"
)

// DB is an archive of runs. It's safe for concurrent use by multiple
// goroutines.
type DB struct {
	sql *sql.DB

	insertSummary    *sql.Stmt
	insertComparison *sql.Stmt
}

// OpenSQL opens an archive. The parameters are the same as the
// parameters for sql.Open. Only mysql and sqlite3 are supported.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	if driverName != "mysql" && driverName != "sqlite3" {
		return nil, fmt.Errorf("unsupported driver %q", driverName)
	}
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite3" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// createTmpl is evaluated with . as a map containing one entry whose
// key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Day CHAR(8) NOT NULL,
	Seq INTEGER NOT NULL,
	Created BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS Summaries (
	RunID BIGINT UNSIGNED,
	Pos INTEGER,
	Algorithm VARCHAR(128),
	MapID VARCHAR(128),
	Metric VARCHAR(64),
	N INTEGER,
	MinValue DOUBLE,
	MaxValue DOUBLE,
	Mean DOUBLE,
	StdDev DOUBLE,
	PRIMARY KEY (RunID, Algorithm, MapID, Metric),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Comparisons (
	RunID BIGINT UNSIGNED,
	Pos INTEGER,
	AlgorithmA VARCHAR(128),
	AlgorithmB VARCHAR(128),
	MapID VARCHAR(128),
	Metric VARCHAR(64),
	Direction VARCHAR(8),
	T DOUBLE,
	DoF DOUBLE,
	P DOUBLE,
	N1 INTEGER,
	N2 INTEGER,
	Error VARCHAR(1024),
	PRIMARY KEY (RunID, AlgorithmA, AlgorithmB, MapID, Metric, Direction),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RunsDay ON Runs(Day);
{{end}}
`))

func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

func (db *DB) prepareStatements() error {
	var err error
	db.insertSummary, err = db.sql.Prepare("INSERT INTO Summaries(RunID, Pos, Algorithm, MapID, Metric, N, MinValue, MaxValue, Mean, StdDev) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertComparison, err = db.sql.Prepare("INSERT INTO Comparisons(RunID, Pos, AlgorithmA, AlgorithmB, MapID, Metric, Direction, T, DoF, P, N1, N2, Error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	return err
}

// now is overridden by tests.
var now = time.Now

// A Run is a set of results archived together. Its rows become
// visible when Commit is called.
type Run struct {
	// ID is the public run ID, "YYYYMMDD.N".
	ID string

	id int64
	tx *sql.Tx
	db *DB

	// pos numbers rows so they read back in insertion order.
	pos int64
}

// NewRun starts a new run.
func (db *DB) NewRun(ctx context.Context) (*Run, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	t := now().UTC()
	day := t.Format("20060102")

	var seq sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(Seq) FROM Runs WHERE Day = ?", day).Scan(&seq); err != nil {
		tx.Rollback()
		return nil, err
	}
	next := seq.Int64 + 1
	res, err := tx.ExecContext(ctx, "INSERT INTO Runs(Day, Seq, Created) VALUES (?, ?, ?)", day, next, t.Unix())
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &Run{ID: fmt.Sprintf("%s.%d", day, next), id: id, tx: tx, db: db}, nil
}

// AddSummaries archives sums in r.
func (r *Run) AddSummaries(ctx context.Context, sums []expproc.GroupedSummary) error {
	stmt := r.tx.StmtContext(ctx, r.db.insertSummary)
	for _, s := range sums {
		r.pos++
		if _, err := stmt.ExecContext(ctx, r.id, r.pos, s.Algorithm, s.MapID, s.Metric, s.N,
			number(s.Min), number(s.Max), number(s.Mean), number(s.StdDev)); err != nil {
			return fmt.Errorf("insert summary %s/%s: %w", s.Algorithm, s.MapID, err)
		}
	}
	return nil
}

// AddComparison archives the results and errors of c in r.
func (r *Run) AddComparison(ctx context.Context, c *report.Comparison) error {
	stmt := r.tx.StmtContext(ctx, r.db.insertComparison)
	dir := c.Direction.String()
	for _, res := range c.Results {
		r.pos++
		if _, err := stmt.ExecContext(ctx, r.id, r.pos, c.AlgorithmA, c.AlgorithmB, res.MapID, c.Metric, dir,
			number(res.T), number(res.DoF), number(res.P), res.N1, res.N2, nil); err != nil {
			return fmt.Errorf("insert comparison %s: %w", res.MapID, err)
		}
	}
	for _, e := range c.Errors {
		r.pos++
		if _, err := stmt.ExecContext(ctx, r.id, r.pos, c.AlgorithmA, c.AlgorithmB, e.MapID, c.Metric, dir,
			nil, nil, nil, nil, nil, e.Reason()); err != nil {
			return fmt.Errorf("insert comparison %s: %w", e.MapID, err)
		}
	}
	return nil
}

// Commit makes the run visible.
func (r *Run) Commit() error {
	return r.tx.Commit()
}

// Abort discards the run.
func (r *Run) Abort() error {
	return r.tx.Rollback()
}

// number maps NaN and ±Inf to NULL, which neither driver stores as a
// DOUBLE.
func number(x float64) sql.NullFloat64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: x, Valid: true}
}

// ErrNoRun is returned for an unknown run ID.
var ErrNoRun = errors.New("no such run")

// lookup resolves a public run ID to the table key.
func (db *DB) lookup(ctx context.Context, runID string) (int64, error) {
	i := strings.Index(runID, ".")
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoRun, runID)
	}
	seq, err := strconv.ParseInt(runID[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoRun, runID)
	}
	var id int64
	err = db.sql.QueryRowContext(ctx, "SELECT RunID FROM Runs WHERE Day = ? AND Seq = ?", runID[:i], seq).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %q", ErrNoRun, runID)
	}
	return id, err
}

// Runs returns the IDs of all committed runs, oldest first.
func (db *DB) Runs(ctx context.Context) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Day, Seq FROM Runs ORDER BY RunID")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var day string
		var seq int64
		if err := rows.Scan(&day, &seq); err != nil {
			return nil, err
		}
		ids = append(ids, fmt.Sprintf("%s.%d", day, seq))
	}
	return ids, rows.Err()
}

// Summaries returns the summaries archived in run runID.
func (db *DB) Summaries(ctx context.Context, runID string) ([]expproc.GroupedSummary, error) {
	id, err := db.lookup(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := db.sql.QueryContext(ctx, "SELECT Algorithm, MapID, Metric, N, MinValue, MaxValue, Mean, StdDev FROM Summaries WHERE RunID = ? ORDER BY Pos", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []expproc.GroupedSummary
	for rows.Next() {
		var s expproc.GroupedSummary
		var min, max, mean, sd sql.NullFloat64
		if err := rows.Scan(&s.Algorithm, &s.MapID, &s.Metric, &s.N, &min, &max, &mean, &sd); err != nil {
			return nil, err
		}
		s.Min, s.Max, s.Mean, s.StdDev = value(min), value(max), value(mean), value(sd)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Comparisons returns the comparisons archived in run runID, one per
// (AlgorithmA, AlgorithmB, Metric, Direction), in insertion order.
func (db *DB) Comparisons(ctx context.Context, runID string) ([]*report.Comparison, error) {
	id, err := db.lookup(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := db.sql.QueryContext(ctx, "SELECT AlgorithmA, AlgorithmB, MapID, Metric, Direction, T, DoF, P, N1, N2, Error FROM Comparisons WHERE RunID = ? ORDER BY Pos", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type key struct {
		a, b, metric string
		dir          expmath.Direction
	}
	var out []*report.Comparison
	byKey := make(map[key]*report.Comparison)
	results := make(map[*report.Comparison]map[string]expproc.ComparisonResult)
	for rows.Next() {
		var a, b, mapID, metric, dirName string
		var t, dof, p sql.NullFloat64
		var n1, n2 sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&a, &b, &mapID, &metric, &dirName, &t, &dof, &p, &n1, &n2, &reason); err != nil {
			return nil, err
		}
		dir, err := expmath.ParseDirection(dirName)
		if err != nil {
			return nil, err
		}
		k := key{a, b, metric, dir}
		c := byKey[k]
		if c == nil {
			c = &report.Comparison{AlgorithmA: a, AlgorithmB: b, Metric: metric, Direction: dir}
			byKey[k] = c
			results[c] = make(map[string]expproc.ComparisonResult)
			out = append(out, c)
		}
		if reason.Valid {
			c.Errors = append(c.Errors, &expproc.ComparisonError{MapID: mapID, AlgorithmA: a, AlgorithmB: b, Err: errors.New(reason.String)})
			continue
		}
		results[c][mapID] = expproc.ComparisonResult{
			AlgorithmA: a,
			AlgorithmB: b,
			MapID:      mapID,
			Metric:     metric,
			Comparison: expmath.Comparison{
				T: value(t), DoF: value(dof), P: value(p),
				N1: int(n1.Int64), N2: int(n2.Int64),
				Direction: dir,
				Alpha:     expmath.DefaultThresholds.Alpha,
			},
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range out {
		c.Results = expproc.SortedResults(results[c])
	}
	return out, nil
}

func value(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertSummary.Close(); err != nil {
		return err
	}
	if err := db.insertComparison.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
