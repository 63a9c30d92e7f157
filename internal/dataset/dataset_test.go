package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadJSONL(t *testing.T) {
	path := writeFile(t, "rows.jsonl", `{"base_prompt": "a frog"}

{"prompt": "A red colored car.", "category": "Colors"}
{"Prompt": "a bird", "Category": "Animals"}
"a bare string"
`)
	rows, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []model.DatasetRow{
		{BasePrompt: "a frog"},
		{BasePrompt: "A red colored car.", Category: "Colors"},
		{BasePrompt: "a bird", Category: "Animals"},
		{BasePrompt: "a bare string"},
	}, rows)
}

func TestLoadJSONLErrors(t *testing.T) {
	_, err := Load(writeFile(t, "bad.jsonl", "{\"base_prompt\": \"a\"}\n{oops\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = Load(writeFile(t, "missing.jsonl", `{"text": "a frog"}`))
	assert.ErrorContains(t, err, "missing prompt field")
}

func TestLoadJSONArray(t *testing.T) {
	rows, err := Load(writeFile(t, "rows.json", `[{"prompt": "a frog", "category": "Animals"}, "a cat"]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Animals", rows[0].Category)
	assert.Equal(t, "a cat", rows[1].BasePrompt)

	_, err = Load(writeFile(t, "obj.json", `{"prompt": "a frog"}`))
	assert.Error(t, err)

	rows, err = Load(writeFile(t, "wrapped.json", `{"name": "parti", "rows": [{"Prompt": "a bird"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []model.DatasetRow{{BasePrompt: "a bird"}}, rows)

	_, err = Load(writeFile(t, "num.json", `[1]`))
	assert.ErrorContains(t, err, "row 0")
}

func TestReadCSVDrawBench(t *testing.T) {
	body := "Prompts,Category\n\"A red colored car.\",Colors\n\"A black colored car, parked.\",Colors\n"
	rows, err := ReadCSV(strings.NewReader(body), ',')
	require.NoError(t, err)
	assert.Equal(t, []model.DatasetRow{
		{BasePrompt: "A red colored car.", Category: "Colors"},
		{BasePrompt: "A black colored car, parked.", Category: "Colors"},
	}, rows)

	_, err = ReadCSV(strings.NewReader("Prompts,Category\n\"A red colored car.\",Colors\n,Empty\n"), ',')
	assert.ErrorContains(t, err, "line 3: empty Prompts field")

	_, err = Load(writeFile(t, "blank.tsv", "Prompt\tCategory\n \tAnimals\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadCSV(strings.NewReader("text,label\na,b\n"), ',')
	assert.ErrorContains(t, err, "no prompt column")
}

func TestReadCSVStripsByteOrderMark(t *testing.T) {
	body := "\ufeffprompt,category\n\"A red colored car.\",Colors\n\"A black colored car, parked.\",Colors\n"
	rows, err := ReadCSV(strings.NewReader(body), ',')
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A red colored car.", rows[0].BasePrompt)
}

func TestLoadTSV(t *testing.T) {
	rows, err := Load(writeFile(t, "parti.tsv", "Prompt\tCategory\tChallenge\na frog\tAnimals\tBasic\n"))
	require.NoError(t, err)
	assert.Equal(t, []model.DatasetRow{{BasePrompt: "a frog", Category: "Animals"}}, rows)
}

func TestLoadText(t *testing.T) {
	rows, err := Load(writeFile(t, "prompts.txt", "# smoke set\na frog\n\n  a cat  \n"))
	require.NoError(t, err)
	assert.Equal(t, []model.DatasetRow{{BasePrompt: "a frog"}, {BasePrompt: "a cat"}}, rows)
}

func TestLoadEmptyDataset(t *testing.T) {
	_, err := Load(writeFile(t, "empty.txt", "# nothing\n\n"))
	assert.ErrorIs(t, err, model.ErrEmptyDataset)

	_, err = Load(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}
