package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/report"
)

func sampleEntries() []domain.Entry {
	return []domain.Entry{
		{
			Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), StartTime: "08:00", EndTime: "10:00",
			Duration: decimal.NewNullDecimal(decimal.NewFromInt(2)), ClientName: "Acme", ActivityName: "Dev",
			Notes: "fix, deploy", Username: "ann",
		},
		{Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), Username: "bob"},
	}
}

func readAll(t *testing.T, b *bytes.Buffer) [][]string {
	t.Helper()
	r := csv.NewReader(b)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteLedger(t *testing.T) {
	var buf bytes.Buffer
	entries := sampleEntries()
	require.NoError(t, WriteLedger(&buf, entries, report.SummarizeEntries(entries)))

	records := readAll(t, &buf)
	require.Len(t, records, 5)
	assert.Equal(t, ledgerHeader, records[0])
	assert.Equal(t, []string{"2024-04-01", "Monday", "08:00", "10:00", "2", "Acme", "Dev", "fix, deploy"}, records[1])
	assert.Equal(t, "", records[2][4])
	assert.Equal(t, []string{"Work hours", "2"}, records[3][3:5])
	assert.Equal(t, []string{"Workdays", "2"}, records[4][3:5])
}

func TestWriteClients(t *testing.T) {
	var buf bytes.Buffer
	sections := report.GroupByClient(map[string]report.ClientGroup{
		"c1": report.NewClientGroup(sampleEntries()[:1]),
		"":   report.NewClientGroup(sampleEntries()[1:]),
	})
	require.NoError(t, WriteClients(&buf, sections))

	records := readAll(t, &buf)
	assert.Equal(t, []string{"(no client)"}, records[0])
	assert.Equal(t, ledgerHeader, records[1])
	var titles []string
	for _, r := range records {
		if len(r) == 1 && r[0] != "" {
			titles = append(titles, r[0])
		}
	}
	assert.Equal(t, []string{"(no client)", "Acme"}, titles)
}

func TestWriteAdvanced(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAdvanced(&buf, sampleEntries()))

	records := readAll(t, &buf)
	require.Len(t, records, 5)
	assert.Equal(t, "ann", records[1][2])
	assert.Equal(t, []string{"Work hours", "2"}, records[3][4:6])
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := SaveFile(dir, "report-2024-4.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-2024-4.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestSaveFile_WriteFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	_, err := SaveFile(dir, "x.csv", func(io.Writer) error { return boom })
	require.ErrorIs(t, err, boom)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}
