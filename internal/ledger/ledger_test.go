package ledger

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestProcess(t *testing.T) {
	input := buildWorkbook(t, [][]interface{}{
		{"Data", "Doc", "Histórico", "Valor"},
		{"01/02/2025", "123", "TED RECEBIDA", "1.000,50C"},
		{"02/02/2025", "124", "PAGAMENTO FORNECEDOR", "200,00D"},
		{"02/02/2025", "", "SALDO ANTERIOR", "800,50C"},
		{"", "", "====> CONTINUA", ""},
		{"03/02/2025", "125", "TARIFA", "12,00D"},
	})

	result, err := Process(input)
	require.NoError(t, err)

	// 3 data rows + TOTAL + DIFERENÇA
	require.Len(t, result.Rows, 5)

	first := result.Rows[0]
	assert.Equal(t, "TED RECEBIDA", first.History)
	assert.True(t, first.Credit.Equal(decimal.RequireFromString("1000.50")))
	assert.True(t, first.Debit.Equal(decimal.Zero))

	second := result.Rows[1]
	assert.True(t, second.Credit.Equal(decimal.Zero))
	assert.True(t, second.Debit.Equal(decimal.RequireFromString("200")))

	assert.True(t, result.TotalCredit.Equal(decimal.RequireFromString("1000.50")))
	assert.True(t, result.TotalDebit.Equal(decimal.RequireFromString("212")))
	assert.True(t, result.Difference.Equal(decimal.RequireFromString("788.50")))

	total := result.Rows[3]
	assert.Equal(t, "TOTAL", total.History)
	assert.True(t, total.IsTrailer)

	diff := result.Rows[4]
	assert.Equal(t, "DIFERENÇA (Crédito - Débito): R$ 788,50", diff.History)
}

func TestProcessDropsMarkerRows(t *testing.T) {
	input := buildWorkbook(t, [][]interface{}{
		{"Data", "Doc", "Histórico", "Valor"},
		{"01/02/2025", "1", "saldo do dia", "5,00C"},
		{"01/02/2025", "2", "TED", "5,00C"},
	})

	result, err := Process(input)
	require.NoError(t, err)

	// marker match is case-insensitive
	require.Len(t, result.Rows, 3)
	assert.Equal(t, "TED", result.Rows[0].History)
}

func TestProcessRejectsNonSpreadsheet(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not a spreadsheet")))
	assert.Error(t, err)
}

func TestExportXLSX(t *testing.T) {
	input := buildWorkbook(t, [][]interface{}{
		{"Data", "Doc", "Histórico", "Valor"},
		{"01/02/2025", "123", "TED RECEBIDA", "1.000,50C"},
	})

	result, err := Process(input)
	require.NoError(t, err)

	data, err := ExportXLSX(result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Data", "Documento", "Historico", "Valor Crédito", "Valor Débito"}, rows[0])
	assert.Equal(t, "R$ 1.000,50", rows[1][3])
	assert.Equal(t, "R$ 0,00", rows[1][4])

	total := rows[2]
	assert.Equal(t, "TOTAL", total[2])
	assert.Equal(t, "R$ 1.000,50", total[3])

	assert.Contains(t, rows[3][2], "DIFERENÇA")
}
