package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/tidwall/gjson"
)

// Prompt columns in order of preference: our own format, then the DrawBench
// and PartiPrompts spellings.
var (
	promptKeys   = []string{"base_prompt", "prompt", "Prompt", "Prompts"}
	categoryKeys = []string{"category", "Category"}
)

// Load reads a dataset file, picking the format from its extension:
// .jsonl/.ndjson, .json, .csv or .tsv, and plain text otherwise.
func Load(path string) ([]model.DatasetRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset '%s': %w", path, err)
	}
	defer f.Close()

	var rows []model.DatasetRow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		rows, err = ReadJSONL(f)
	case ".json":
		rows, err = ReadJSON(f)
	case ".csv":
		rows, err = ReadCSV(f, ',')
	case ".tsv":
		rows, err = ReadCSV(f, '\t')
	default:
		rows, err = ReadText(f)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset '%s': %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset '%s': %w", path, model.ErrEmptyDataset)
	}
	return rows, nil
}

// ReadJSONL reads one JSON object (or string) per line.
func ReadJSONL(r io.Reader) ([]model.DatasetRow, error) {
	var rows []model.DatasetRow
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			return nil, fmt.Errorf("line %d: invalid JSON", line)
		}
		row, err := rowFromJSON(gjson.Parse(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}

// ReadJSON reads a JSON array of objects or strings, bare or under a "rows" key.
func ReadJSON(r io.Reader) ([]model.DatasetRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if rows := doc.Get("rows"); doc.IsObject() && rows.IsArray() {
		doc = rows
	}
	if !doc.IsArray() {
		return nil, fmt.Errorf("expected a JSON array of rows")
	}

	var rows []model.DatasetRow
	var rowErr error
	doc.ForEach(func(key, value gjson.Result) bool {
		row, err := rowFromJSON(value)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", key.Int(), err)
			return false
		}
		rows = append(rows, row)
		return true
	})
	return rows, rowErr
}

func rowFromJSON(v gjson.Result) (model.DatasetRow, error) {
	if v.Type == gjson.String {
		return model.DatasetRow{BasePrompt: v.String()}, nil
	}
	if !v.IsObject() {
		return model.DatasetRow{}, fmt.Errorf("expected an object or a string")
	}
	row := model.DatasetRow{}
	for _, k := range promptKeys {
		if f := v.Get(gjson.Escape(k)); f.Exists() {
			row.BasePrompt = f.String()
			break
		}
	}
	for _, k := range categoryKeys {
		if f := v.Get(gjson.Escape(k)); f.Exists() {
			row.Category = f.String()
			break
		}
	}
	if row.BasePrompt == "" {
		return model.DatasetRow{}, fmt.Errorf("missing prompt field (one of %s)", strings.Join(promptKeys, ", "))
	}
	return row, nil
}

// ReadCSV reads a delimited file with a header row. A row without a prompt is an error.
func ReadCSV(r io.Reader, comma rune) ([]model.DatasetRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	promptCol := column(header, promptKeys)
	if promptCol < 0 {
		return nil, fmt.Errorf("header has no prompt column (one of %s)", strings.Join(promptKeys, ", "))
	}
	categoryCol := column(header, categoryKeys)

	var rows []model.DatasetRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if promptCol >= len(rec) || strings.TrimSpace(rec[promptCol]) == "" {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: empty %s field", line, strings.TrimPrefix(header[promptCol], "\ufeff"))
		}
		row := model.DatasetRow{BasePrompt: rec[promptCol]}
		if categoryCol >= 0 && categoryCol < len(rec) {
			row.Category = rec[categoryCol]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func column(header []string, keys []string) int {
	for _, k := range keys {
		for i, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == k {
				return i
			}
		}
	}
	return -1
}

// ReadText reads one prompt per line, skipping blanks and # comments.
func ReadText(r io.Reader) ([]model.DatasetRow, error) {
	var rows []model.DatasetRow
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, model.DatasetRow{BasePrompt: line})
	}
	return rows, scanner.Err()
}
