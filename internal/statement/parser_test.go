package statement

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

const sampleStatement = `Extrato de conta
Período: março
10-03-2025 Pagamento recebido
1234567890 R$ 150,00 R$ 1.150,00
11-03-2025 Tarifa de venda R$ -12,50
R$ 1.137,50
12-03-2025 Estorno`

func TestSegment(t *testing.T) {
	blocks := Segment(sampleStatement)
	require.Len(t, blocks, 4)

	assert.Equal(t, "Extrato de conta Período: março", blocks[0])
	assert.Equal(t, "10-03-2025 Pagamento recebido 1234567890 R$ 150,00 R$ 1.150,00", blocks[1])
	assert.Equal(t, "11-03-2025 Tarifa de venda R$ -12,50 R$ 1.137,50", blocks[2])
	assert.Equal(t, "12-03-2025 Estorno", blocks[3])
}

func TestSegmentDateMustStartLine(t *testing.T) {
	blocks := Segment("saldo em 10-03-2025 não inicia bloco\n11-03-2025 inicia")
	require.Len(t, blocks, 2)
	assert.Equal(t, "saldo em 10-03-2025 não inicia bloco", blocks[0])
	assert.Equal(t, "11-03-2025 inicia", blocks[1])
}

func TestParseBlockFull(t *testing.T) {
	tx, err := ParseBlock("10-03-2025 Pagamento recebido 1234567890 R$ 150,00 R$ 1.150,00")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "Pagamento recebido", tx.Description)
	assert.Equal(t, "1234567890", tx.OperationID)

	require.NotNil(t, tx.Amount)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("150")))
	require.NotNil(t, tx.Balance)
	assert.True(t, tx.Balance.Equal(decimal.RequireFromString("1150")))
}

func TestParseBlockSingleCurrencyTokenHasNoBalance(t *testing.T) {
	tx, err := ParseBlock("11-03-2025 Tarifa de venda R$ -12,50")
	require.NoError(t, err)

	require.NotNil(t, tx.Amount)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-12.5")))
	assert.Nil(t, tx.Balance, "one token is the amount, never the balance")
}

func TestParseBlockNoCurrency(t *testing.T) {
	tx, err := ParseBlock("12-03-2025 Estorno")
	require.NoError(t, err)

	assert.Nil(t, tx.Amount)
	assert.Nil(t, tx.Balance)
	assert.Empty(t, tx.OperationID)
	assert.Equal(t, "Estorno", tx.Description)
}

func TestParseBlockShortDigitsStayInDescription(t *testing.T) {
	tx, err := ParseBlock("10-03-2025 Venda pedido 12345 ref 98765432100")
	require.NoError(t, err)

	assert.Equal(t, "98765432100", tx.OperationID)
	assert.Equal(t, "Venda pedido 12345 ref", tx.Description)
}

func TestParseBlockRejectsMissingDate(t *testing.T) {
	_, err := ParseBlock("Extrato de conta Período: março")
	assert.Error(t, err)
}

func TestParseCollectsWarnings(t *testing.T) {
	logger := utils.NewLogger("error", "text")

	txs, failures := Parse(sampleStatement, logger)

	require.Len(t, txs, 3)
	require.Len(t, failures, 1, "header block has no date and is skipped")

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), txs[0].Date)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), txs[2].Date)
}

func TestExportXLSX(t *testing.T) {
	logger := utils.NewLogger("error", "text")
	txs, _ := Parse(sampleStatement, logger)

	data, err := ExportXLSX(txs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Data", "Descrição", "ID da Operação", "Valor", "Saldo"}, rows[0])
	assert.Equal(t, "10-03-2025", rows[1][0])
	assert.Equal(t, "Pagamento recebido", rows[1][1])
	assert.Equal(t, "150", rows[1][3])
}
