package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVQuotesAndRoundTrips(t *testing.T) {
	data := Dataset{
		Headers: []string{"a", "b"},
		Rows:    []map[string]string{{"a": "x,y", "b": "z"}},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a,b", lines[0])
	assert.Equal(t, `"x,y",z`, lines[1])

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"x,y", "z"}, records[1])
}

func TestCSVDoublesQuotes(t *testing.T) {
	data := Dataset{Headers: []string{"msg"}, Rows: []map[string]string{{"msg": `say "hi"`}}}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"say ""hi"""`)
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVWithBOM(t *testing.T) {
	out, err := (&CSVExporter{BOM: true}).Render(Dataset{Headers: []string{"a"}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\ufeff")))
}

func TestJSONIsIndented(t *testing.T) {
	out, err := NewJSONExporter().Render(Dataset{Headers: []string{"a"}, Rows: []map[string]string{{"a": "1"}}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  {")

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(out, &rows))
	assert.Equal(t, "1", rows[0]["a"])

	empty, err := NewJSONExporter().Render(Dataset{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestPDFRenders(t *testing.T) {
	data := Dataset{
		Title:   "contacts",
		Headers: []string{"name", "email"},
		Rows:    []map[string]string{{"name": "Sara", "email": "sara@example.ma"}},
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)

	r, err := RendererFor(FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "contacts_2026-01-02.json", Filename("contacts", "2026-01-02", r))
}
