// Package goals tracks CNPJ positivação: how many unique tax ids were
// registered against the period goal.
package goals

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

// TaxIDColumn is the required tax-id column of the uploaded spreadsheet.
const TaxIDColumn = "CLI_CGCCPF"

// ReadTaxIDs returns the tax-id column values in row order, empty cells
// skipped. A spreadsheet without the column is a schema error.
func ReadTaxIDs(r io.Reader) ([]string, error) {
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
	if len(rows) == 0 {
		return nil, utils.NewBadRequestError("the spreadsheet is empty")
	}

	col := -1
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == TaxIDColumn {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, utils.NewSchemaError(fmt.Sprintf("the spreadsheet must contain the column '%s'", TaxIDColumn))
	}

	var ids []string
	for _, raw := range rows[1:] {
		if col < len(raw) {
			if id := strings.TrimSpace(raw[col]); id != "" {
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}

// Progress computes goal progress at the given instant. Days remaining are a
// calendar-date difference, so a mid-day run still counts today against the
// deadline in full; the count is clamped to at least one so the per-day pace
// never divides by zero.
func Progress(taxIDs []string, goal int, deadline, now time.Time) models.GoalProgress {
	unique := map[string]struct{}{}
	for _, id := range taxIDs {
		unique[id] = struct{}{}
	}

	days := int(midnight(deadline).Sub(midnight(now)).Hours() / 24)
	if days < 1 {
		days = 1
	}

	count := len(unique)
	remaining := goal - count

	return models.GoalProgress{
		Goal:          goal,
		UniqueCount:   count,
		Remaining:     remaining,
		DaysRemaining: days,
		PerDay:        float64(remaining) / float64(days),
		Reached:       count >= goal,
		Deadline:      deadline,
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
