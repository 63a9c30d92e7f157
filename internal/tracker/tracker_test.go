package tracker

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testRun = RunInfo{
		ID:              "run-1",
		Name:            "lab/diffusion-prompt-upsample",
		StartedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpsampleEnabled: true,
		Params:          model.DefaultGenerationParams(),
		Attributes:      map[string]any{"upsample_prompt": true, "exclusive_gate": true},
	}
	okRecord = model.EvaluationRecord{
		ID:              "rec-0",
		Index:           0,
		BasePrompt:      "a frog",
		Category:        "Animals",
		UpsampleEnabled: true,
		FinalCaption:    "A green frog on a lily pad",
		Judgement:       &model.Judgement{Score: 0.9, Verdict: "pass", Rationale: "frog", AttemptCount: 2},
	}
	failedRecord = model.EvaluationRecord{
		ID:         "rec-1",
		Index:      1,
		BasePrompt: "a cat",
		Error: &model.DatasetRowError{Index: 1, BasePrompt: "a cat", Stage: model.StageJudge,
			Err: &model.JudgeUnavailableError{Attempts: 6, Err: errors.New("timeout")}},
	}
	testSummary = model.Summary{Total: 2, Succeeded: 1, Failed: 1, MeanScore: 0.9, MedianScore: 0.9}
)

func emitAll(t *testing.T, tr Tracker) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, tr.StartRun(ctx, testRun))
	require.NoError(t, tr.LogRecord(ctx, testRun.ID, okRecord))
	require.NoError(t, tr.LogRecord(ctx, testRun.ID, failedRecord))
	require.NoError(t, tr.FinishRun(ctx, testRun.ID, testSummary))
}

func TestSQLiteTracker(t *testing.T) {
	tr, err := NewSQLiteTracker(":memory:")
	require.NoError(t, err)
	defer tr.Close(context.Background())

	emitAll(t, tr)

	var name, attrs string
	var succeeded int
	var mean float64
	var finished sql.NullString
	require.NoError(t, tr.DB().QueryRow(
		`SELECT name, attributes_json, succeeded, mean_score, finished_at FROM runs WHERE run_id = ?`, testRun.ID,
	).Scan(&name, &attrs, &succeeded, &mean, &finished))
	assert.Equal(t, testRun.Name, name)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0.9, mean)
	assert.True(t, finished.Valid)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(attrs), &decoded))
	assert.Equal(t, true, decoded["exclusive_gate"])

	rows, err := tr.DB().Query(`SELECT row_index, score, attempt_count, stage, error FROM records WHERE run_id = ? ORDER BY row_index`, testRun.ID)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		index    int
		score    sql.NullFloat64
		attempts int
		stage    string
		errText  string
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.index, &r.score, &r.attempts, &r.stage, &r.errText))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)

	assert.True(t, got[0].score.Valid)
	assert.Equal(t, 0.9, got[0].score.Float64)
	assert.Equal(t, 2, got[0].attempts)
	assert.Empty(t, got[0].stage)

	assert.False(t, got[1].score.Valid)
	assert.Equal(t, "judge", got[1].stage)
	assert.Contains(t, got[1].errText, "judge unavailable after 6 attempts")
}

func TestSQLiteTrackerFileAndUnknownRun(t *testing.T) {
	tr, err := NewSQLiteTracker(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer tr.Close(context.Background())

	err = tr.FinishRun(context.Background(), "missing", testSummary)
	assert.ErrorContains(t, err, "not found")

	err = tr.LogRecord(context.Background(), "missing", okRecord)
	assert.Error(t, err, "records reference their run")
}

func TestMemgraphTracker(t *testing.T) {
	d := &MockDriver{}
	tr := NewMemgraphTracker(d)
	emitAll(t, tr)

	require.Len(t, d.Executed, 4)
	assert.Equal(t, driver.SaveRunQuery, d.Executed[0].Query)
	assert.Equal(t, "run-1", d.Executed[0].Params["run_id"])
	assert.Equal(t, "2026-01-02T03:04:05Z", d.Executed[0].Params["started_at"])

	assert.Equal(t, driver.SaveRecordQuery, d.Executed[1].Query)
	assert.Equal(t, 0.9, d.Executed[1].Params["score"])
	assert.Equal(t, "Animals", d.Executed[1].Params["category"])

	assert.Nil(t, d.Executed[2].Params["score"])
	assert.Equal(t, "judge", d.Executed[2].Params["stage"])

	assert.Equal(t, driver.FinishRunQuery, d.Executed[3].Query)
	assert.Equal(t, 2, d.Executed[3].Params["total"])

	require.NoError(t, tr.Close(context.Background()))
	assert.True(t, d.Closed)
}

func TestMemgraphTrackerPropagatesErrors(t *testing.T) {
	tr := NewMemgraphTracker(&MockDriver{Err: errors.New("connection refused")})
	assert.Error(t, tr.StartRun(context.Background(), testRun))
}

func TestLogTracker(t *testing.T) {
	var buf bytes.Buffer
	tr := NewLogTracker(slog.New(slog.NewJSONHandler(&buf, nil)))
	emitAll(t, tr)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, 0.9, rec["score"])

	require.NoError(t, json.Unmarshal([]byte(lines[2]), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "judge", rec["stage"])
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	cfg.Tracker.Backend = "none"
	tr, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, tr)

	cfg.Tracker.Backend = "LOG"
	tr, err = New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &LogTracker{}, tr)

	cfg.Tracker.Backend = "sqlite"
	cfg.Tracker.SQLitePath = filepath.Join(t.TempDir(), "runs.db")
	tr, err = New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteTracker{}, tr)
	require.NoError(t, tr.Close(ctx))

	cfg.Tracker.Backend = "weave"
	_, err = New(ctx, cfg)
	assert.Error(t, err)
}
