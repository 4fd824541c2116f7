package pktsim

// record.go stores run reports in a SQLite database, one row per flow and
// one row per queue adjacency, tagged with a run id.

import (
	"database/sql"
	"fmt"
	"math"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS runs (
	RunID    TEXT PRIMARY KEY,
	Name     TEXT,
	Horizon  REAL,
	Emitted  INTEGER
);
CREATE TABLE IF NOT EXISTS flow_stats (
	RunID     TEXT,
	Src       TEXT,
	Dst       TEXT,
	Count     INTEGER,
	Mean      REAL,
	Variance  REAL,
	Drops     INTEGER,
	Delivered REAL
);
CREATE TABLE IF NOT EXISTS queue_stats (
	RunID    TEXT,
	Node     TEXT,
	Neighbor TEXT,
	Samples  INTEGER,
	Mean     REAL
);`

// ResultRecorder writes reports into a SQLite database
type ResultRecorder struct {
	*sql.DB
	dbName string
}

// NewResultRecorder creates the database file path + ".sqlite3".  An empty path
// gets a generated unique name.  An existing file is an error, never overwritten
func NewResultRecorder(path string) (*ResultRecorder, error) {
	if path == "" {
		path = "pktsim_results_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables in %s: %w", filename, err)
	}

	return &ResultRecorder{DB: db, dbName: filename}, nil
}

// Filename returns the name of the database file
func (r *ResultRecorder) Filename() string {
	return r.dbName
}

// Record writes a report in one transaction and returns the run id it was stored under
func (r *ResultRecorder) Record(rep *Report) (string, error) {
	runID := xid.New().String()

	tx, err := r.Begin()
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?)`,
		runID, rep.Name, rep.Horizon, rep.Emitted)
	if err != nil {
		return "", err
	}

	for _, fs := range rep.Flows {
		_, err = tx.Exec(`INSERT INTO flow_stats VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, fs.Src, fs.Dst, fs.Count, fs.Mean, fs.Variance, fs.Drops, nullable(fs.Delivered))
		if err != nil {
			return "", err
		}
	}

	for _, qs := range rep.Queues {
		_, err = tx.Exec(`INSERT INTO queue_stats VALUES (?, ?, ?, ?, ?)`,
			runID, qs.Node, qs.Neighbor, qs.Samples, qs.Mean)
		if err != nil {
			return "", err
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", err
	}
	return runID, nil
}

// FlowStatsOf reads back the flow rows of one run, sorted by source and destination
func (r *ResultRecorder) FlowStatsOf(runID string) ([]FlowStats, error) {
	rows, err := r.Query(`SELECT Src, Dst, Count, Mean, Variance, Drops, Delivered
		FROM flow_stats WHERE RunID = ? ORDER BY Src, Dst`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rtn := []FlowStats{}
	for rows.Next() {
		var fs FlowStats
		var delivered sql.NullFloat64
		err := rows.Scan(&fs.Src, &fs.Dst, &fs.Count, &fs.Mean, &fs.Variance, &fs.Drops, &delivered)
		if err != nil {
			return nil, err
		}
		fs.Delivered = math.NaN()
		if delivered.Valid {
			fs.Delivered = delivered.Float64
		}
		rtn = append(rtn, fs)
	}
	return rtn, rows.Err()
}

// nullable stores NaN as NULL
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}
