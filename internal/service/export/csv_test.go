package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/neuroguard/backend/internal/model/checkin"
)

func TestWriteCSV(t *testing.T) {
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	entries := []checkin.Entry{
		{ID: "1", Text: "tired, so tired", Label: "sadness", Confidence: 0.8, Risk: "moderate", CreatedAt: at},
		{ID: "2", Text: "fine", Label: "joy", Confidence: 0.91234, Risk: "low", Crisis: true, CreatedAt: at.Add(time.Minute)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"2026-10-16T09:30:00Z", "tired, so tired", "sadness", "0.8000", "moderate", "false"}, rows[1])
	assert.Equal(t, []string{"2026-10-16T09:31:00Z", "fine", "joy", "0.9123", "low", "true"}, rows[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "time,text,label,confidence,risk,crisis\n", buf.String())
}

func TestWriteCSVEscapesFormulas(t *testing.T) {
	entries := []checkin.Entry{
		{ID: "1", Text: "=HYPERLINK(\"http://x\")"},
		{ID: "2", Text: "+1 day"},
		{ID: "3", Text: "-sigh-"},
		{ID: "4", Text: "@work again"},
		{ID: "5", Text: "ok = fine"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)

	var texts []string
	for _, row := range rows[1:] {
		texts = append(texts, row[1])
	}
	assert.Equal(t, []string{
		"'=HYPERLINK(\"http://x\")",
		"'+1 day",
		"'-sigh-",
		"'@work again",
		"ok = fine",
	}, texts)
}
