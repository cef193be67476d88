// Package crm derives client activity status from a sales spreadsheet: a
// client is active when its latest purchase falls inside the trailing window.
package crm

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jgu1lherme/crm-alternativa/internal/models"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

// Required columns, matched by header name.
const (
	colClient = "CLI_RAZ"
	colDate   = "NFS_EMISSAO"
	colCost   = "NFS_CUSTO"
	colVendor = "VEND_NOME"
)

// SaleRow is one parsed spreadsheet row.
type SaleRow struct {
	Client string
	Vendor string
	Date   time.Time
	Cost   decimal.Decimal
}

// Emission dates arrive in whatever format the ERP exported.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"01-02-06", // excelize default for date-typed cells
	"01-02-06 15:04",
}

// ReadSales parses the sales spreadsheet. A missing required column is a
// schema error; a row with an unparseable date or cost is a row error.
func ReadSales(r io.Reader) ([]SaleRow, error) {
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

	index := map[string]int{}
	for i, header := range rows[0] {
		index[strings.TrimSpace(header)] = i
	}
	for _, required := range []string{colClient, colDate, colCost, colVendor} {
		if _, ok := index[required]; !ok {
			return nil, utils.NewSchemaError(fmt.Sprintf("the spreadsheet must contain the column '%s'", required))
		}
	}

	var sales []SaleRow
	for n, raw := range rows[1:] {
		cell := func(name string) string {
			i := index[name]
			if i < len(raw) {
				return strings.TrimSpace(raw[i])
			}
			return ""
		}

		client := cell(colClient)
		if client == "" {
			continue
		}

		date, err := parseEmissionDate(cell(colDate))
		if err != nil {
			return nil, utils.NewBadRequestError(fmt.Sprintf("row %d: %v", n+2, err))
		}

		cost, err := parseCost(cell(colCost))
		if err != nil {
			return nil, utils.NewBadRequestError(fmt.Sprintf("row %d: %v", n+2, err))
		}

		sales = append(sales, SaleRow{
			Client: client,
			Vendor: cell(colVendor),
			Date:   date,
			Cost:   cost,
		})
	}

	return sales, nil
}

func parseEmissionDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid emission date %q", raw)
}

func parseCost(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid cost %q", raw)
	}
	return d, nil
}

// BuildSummaries groups sales by client. Vendor filtering happens before
// grouping; windowDays bounds both the quarterly cost total and the
// active/inactive cutoff. Pure function of (sales, now).
func BuildSummaries(sales []SaleRow, vendor string, windowDays int, now time.Time) *models.CRMResult {
	cutoff := now.AddDate(0, 0, -windowDays)

	vendorSet := map[string]struct{}{}
	byClient := map[string]*models.ClientSummary{}

	for _, sale := range sales {
		vendorSet[sale.Vendor] = struct{}{}

		if vendor != "" && sale.Vendor != vendor {
			continue
		}

		summary, ok := byClient[sale.Client]
		if !ok {
			summary = &models.ClientSummary{Client: sale.Client, QuarterTotal: decimal.Zero}
			byClient[sale.Client] = summary
		}

		if sale.Date.After(summary.LastPurchase) {
			summary.LastPurchase = sale.Date
		}
		if !sale.Date.Before(cutoff) {
			summary.QuarterTotal = summary.QuarterTotal.Add(sale.Cost)
		}
	}

	result := &models.CRMResult{}

	for _, summary := range byClient {
		summary.Active = !summary.LastPurchase.Before(cutoff)
		if summary.Active {
			result.Active++
		} else {
			result.Inactive++
		}
		result.Clients = append(result.Clients, *summary)
	}

	sort.Slice(result.Clients, func(i, j int) bool {
		return result.Clients[i].Client < result.Clients[j].Client
	})

	for v := range vendorSet {
		result.Vendors = append(result.Vendors, v)
	}
	sort.Strings(result.Vendors)

	return result
}
