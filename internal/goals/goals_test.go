package goals

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

func buildColumnWorkbook(t *testing.T, header string, values []string) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", header))
	for i, v := range values {
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i+2), v))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadTaxIDs(t *testing.T) {
	input := buildColumnWorkbook(t, "CLI_CGCCPF", []string{"111", "222", "111", ""})

	ids, err := ReadTaxIDs(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "111"}, ids)
}

func TestReadTaxIDsMissingColumn(t *testing.T) {
	input := buildColumnWorkbook(t, "CNPJ", []string{"111"})

	_, err := ReadTaxIDs(input)
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "CLI_CGCCPF")
}

func TestProgressGoalReached(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, 30)

	ids := make([]string, 0, 650)
	for i := 0; i < 650; i++ {
		ids = append(ids, fmt.Sprintf("cnpj-%d", i))
	}

	p := Progress(ids, 600, deadline, now)
	assert.True(t, p.Reached)
	assert.Equal(t, 650, p.UniqueCount)
	assert.Equal(t, -50, p.Remaining)
}

func TestProgressPacing(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, 10)

	ids := make([]string, 0, 400)
	for i := 0; i < 400; i++ {
		ids = append(ids, fmt.Sprintf("cnpj-%d", i))
	}

	p := Progress(ids, 600, deadline, now)
	assert.False(t, p.Reached)
	assert.Equal(t, 200, p.Remaining)
	assert.Equal(t, 10, p.DaysRemaining)
	assert.InDelta(t, 20.0, p.PerDay, 0.0001)
}

func TestProgressDeduplicates(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	p := Progress([]string{"a", "a", "b"}, 600, now.AddDate(0, 0, 5), now)
	assert.Equal(t, 2, p.UniqueCount)
}

func TestProgressCountsCalendarDays(t *testing.T) {
	// A mid-day run must not lose a day against a midnight deadline.
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	p := Progress([]string{"a"}, 600, deadline, now)
	assert.Equal(t, 10, p.DaysRemaining)
	assert.InDelta(t, 59.9, p.PerDay, 0.0001)
}

func TestProgressClampsDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	p := Progress([]string{"a"}, 600, now.AddDate(0, 0, -3), now)
	assert.Equal(t, 1, p.DaysRemaining)
}
