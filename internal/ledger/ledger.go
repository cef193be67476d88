// Package ledger normalizes raw bank spreadsheets into credit/debit columns
// with accounting totals, and exports the result back as XLSX.
package ledger

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jgu1lherme/crm-alternativa/internal/brl"
	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

var (
	creditPattern = regexp.MustCompile(`([\d,.]+)C$`)
	debitPattern  = regexp.MustCompile(`([\d,.]+)D$`)
	// Balance carry-over and separator rows never enter the aggregation.
	markerPattern = regexp.MustCompile(`(?i)SALDO|====>`)
)

const exportSheet = "Dados Processados"

// Process reads the first sheet of a bank spreadsheet. The four columns are
// taken positionally as Data, Documento, Historico and Valor; the value
// column is split into credit ("...C") and debit ("...D") amounts and TOTAL /
// DIFERENÇA trailer rows are appended after aggregation.
func Process(r io.Reader) (*models.LedgerResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, utils.NewBadRequestError("the file could not be read as a spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, utils.NewBadRequestError("the spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	result := &models.LedgerResult{
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}

	// First row is the original header, replaced by our column names.
	for i, raw := range rows {
		if i == 0 {
			continue
		}

		row, ok, err := normalizeRow(raw)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		result.TotalCredit = result.TotalCredit.Add(row.Credit)
		result.TotalDebit = result.TotalDebit.Add(row.Debit)
		result.Rows = append(result.Rows, row)
	}

	result.Difference = result.TotalCredit.Sub(result.TotalDebit)

	result.Rows = append(result.Rows,
		models.LedgerRow{
			History:   "TOTAL",
			Credit:    result.TotalCredit,
			Debit:     result.TotalDebit,
			IsTrailer: true,
		},
		models.LedgerRow{
			History:   fmt.Sprintf("DIFERENÇA (Crédito - Débito): %s", brl.Format(result.Difference)),
			IsTrailer: true,
		},
	)

	return result, nil
}

// normalizeRow trims the four positional cells, drops empty and marker rows
// and splits the value into credit and debit.
func normalizeRow(raw []string) (models.LedgerRow, bool, error) {
	cell := func(i int) string {
		if i < len(raw) {
			return strings.TrimSpace(raw[i])
		}
		return ""
	}

	row := models.LedgerRow{
		Date:     cell(0),
		Document: cell(1),
		History:  cell(2),
	}
	value := cell(3)

	if row.History == "" && value == "" {
		return models.LedgerRow{}, false, nil
	}
	if markerPattern.MatchString(row.History) {
		return models.LedgerRow{}, false, nil
	}

	credit, err := extractAmount(creditPattern, value)
	if err != nil {
		return models.LedgerRow{}, false, err
	}
	debit, err := extractAmount(debitPattern, value)
	if err != nil {
		return models.LedgerRow{}, false, err
	}

	row.Credit = credit
	row.Debit = debit
	return row, true, nil
}

func extractAmount(pattern *regexp.Regexp, value string) (decimal.Decimal, error) {
	m := pattern.FindStringSubmatch(value)
	if m == nil {
		return decimal.Zero, nil
	}
	return brl.ParseAmount(m[1])
}

// ExportXLSX writes the processed rows with BRL-formatted credit and debit
// columns, mirroring the accounting export of the dashboard.
func ExportXLSX(result *models.LedgerResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headers := []string{"Data", "Documento", "Historico", "Valor Crédito", "Valor Débito"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range result.Rows {
		credit := brl.Format(row.Credit)
		debit := brl.Format(row.Debit)
		// The DIFERENÇA trailer carries its value in the history text.
		if row.IsTrailer && row.History != "TOTAL" {
			credit, debit = "", ""
		}

		values := []interface{}{row.Date, row.Document, row.History, credit, debit}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
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
