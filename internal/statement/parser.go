// Package statement parses Mercado Livre account statements out of extracted
// PDF text and exports the transactions as a spreadsheet.
package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jgu1lherme/crm-alternativa/internal/brl"
	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

var (
	datePattern     = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
	currencyPattern = regexp.MustCompile(`R\$ -?\d{1,3}(?:\.\d{3})*,\d{2}`)
	// Operation ids are 9+ digit runs; shorter numeric fragments belong to the
	// description.
	operationPattern = regexp.MustCompile(`\b\d{9,}\b`)
)

// Segment splits extracted statement text into transaction blocks. A block
// starts at every line that begins with a DD-MM-YYYY token; wrapped lines are
// space-joined onto the current block and the final block is always flushed.
func Segment(text string) []string {
	var blocks []string
	var block string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if startsWithDate(line) {
			if block != "" {
				blocks = append(blocks, strings.TrimSpace(block))
			}
			block = line
		} else {
			block += " " + line
		}
	}

	if block != "" {
		blocks = append(blocks, strings.TrimSpace(block))
	}

	return blocks
}

func startsWithDate(line string) bool {
	loc := datePattern.FindStringIndex(line)
	return loc != nil && loc[0] == 0
}

// ParseBlock extracts one transaction from a block. All searches run
// independently against the full block text. A block without a parseable
// date is rejected; amount and balance stay absent when no currency token
// exists, and the balance needs a second token to be distinguishable from
// the amount.
func ParseBlock(block string) (*models.Transaction, error) {
	rawDate := datePattern.FindString(block)
	if rawDate == "" {
		return nil, fmt.Errorf("no date found")
	}

	date, err := brl.ParseDate(rawDate)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{Date: date}

	currencies := currencyPattern.FindAllString(block, -1)
	if len(currencies) > 0 {
		amount, err := brl.ParseOptionalAmount(stripCurrency(currencies[0]))
		if err != nil {
			return nil, err
		}
		tx.Amount = amount
	}
	if len(currencies) > 1 {
		balance, err := brl.ParseOptionalAmount(stripCurrency(currencies[len(currencies)-1]))
		if err != nil {
			return nil, err
		}
		tx.Balance = balance
	}

	if ids := operationPattern.FindAllString(block, -1); len(ids) > 0 {
		tx.OperationID = ids[len(ids)-1]
	}

	description := datePattern.ReplaceAllString(block, "")
	description = currencyPattern.ReplaceAllString(description, "")
	description = operationPattern.ReplaceAllString(description, "")
	tx.Description = strings.TrimSpace(description)

	return tx, nil
}

// stripCurrency drops the "R$ " prefix; brl handles separators.
func stripCurrency(token string) string {
	return strings.TrimPrefix(token, "R$ ")
}

// Parse segments the text and parses every block. Blocks without a valid
// date are reported as warnings and skipped; the rest of the statement is
// still processed.
func Parse(text string, logger *utils.Logger) ([]models.Transaction, []models.ItemFailure) {
	var txs []models.Transaction
	var failures []models.ItemFailure

	for i, block := range Segment(text) {
		tx, err := ParseBlock(block)
		if err != nil {
			logger.Warn("skipping statement block", "block", i+1, "error", err)
			failures = append(failures, models.ItemFailure{
				Filename: fmt.Sprintf("transação %d", i+1),
				Reason:   err.Error(),
			})
			continue
		}
		txs = append(txs, *tx)
	}

	return txs, failures
}
