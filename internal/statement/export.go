package statement

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jgu1lherme/crm-alternativa/internal/models"
)

const exportSheet = "Extrato"

// ExportXLSX renders the parsed transactions as an XLSX workbook, one row per
// transaction, matching the columns the accounting team works with. Absent
// amounts and balances stay as empty cells.
func ExportXLSX(txs []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headers := []string{"Data", "Descrição", "ID da Operação", "Valor", "Saldo"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, tx := range txs {
		values := []interface{}{
			tx.Date.Format("02-01-2006"),
			tx.Description,
			tx.OperationID,
		}

		if tx.Amount != nil {
			amount, _ := tx.Amount.Float64()
			values = append(values, amount)
		} else {
			values = append(values, "")
		}
		if tx.Balance != nil {
			balance, _ := tx.Balance.Float64()
			values = append(values, balance)
		} else {
			values = append(values, "")
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}
