package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agenthands/upsampler/internal/core/model"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	started_at       TEXT NOT NULL,
	finished_at      TEXT,
	upsample_enabled INTEGER NOT NULL,
	params_json      TEXT NOT NULL,
	attributes_json  TEXT NOT NULL,
	total            INTEGER,
	succeeded        INTEGER,
	failed           INTEGER,
	cancelled        INTEGER,
	mean_score       REAL,
	median_score     REAL
);

CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY,
	run_id           TEXT NOT NULL,
	row_index        INTEGER NOT NULL,
	base_prompt      TEXT NOT NULL,
	category         TEXT,
	upsample_enabled INTEGER NOT NULL,
	final_caption    TEXT,
	score            REAL,
	verdict          TEXT,
	rationale        TEXT,
	attempt_count    INTEGER,
	error            TEXT,
	stage            TEXT,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS records_run_id ON records(run_id);
`

// SQLiteTracker stores runs in a local SQLite file.
type SQLiteTracker struct {
	db *sql.DB
}

func NewSQLiteTracker(dbPath string) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: a :memory: database exists per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteTracker{db: db}, nil
}

// DB exposes the connection for inspection.
func (t *SQLiteTracker) DB() *sql.DB {
	return t.db
}

func (t *SQLiteTracker) StartRun(ctx context.Context, run RunInfo) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, name, started_at, upsample_enabled, params_json, attributes_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.StartedAt.Format(time.RFC3339Nano), run.UpsampleEnabled,
		toJSON(run.Params), toJSON(run.Attributes),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (t *SQLiteTracker) LogRecord(ctx context.Context, runID string, rec model.EvaluationRecord) error {
	f := flatten(rec)
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO records (id, run_id, row_index, base_prompt, category, upsample_enabled,
		   final_caption, score, verdict, rationale, attempt_count, error, stage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, runID, rec.Index, rec.BasePrompt, rec.Category, rec.UpsampleEnabled,
		rec.FinalCaption, f.Score, f.Verdict, f.Rationale, f.AttemptCount, f.Error, f.Stage,
	)
	if err != nil {
		return fmt.Errorf("insert record %d: %w", rec.Index, err)
	}
	return nil
}

func (t *SQLiteTracker) FinishRun(ctx context.Context, runID string, s model.Summary) error {
	res, err := t.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, succeeded = ?, failed = ?, cancelled = ?,
		   mean_score = ?, median_score = ?
		 WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), s.Total, s.Succeeded, s.Failed, s.Cancelled,
		s.MeanScore, s.MedianScore, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

func (t *SQLiteTracker) Close(ctx context.Context) error {
	return t.db.Close()
}
