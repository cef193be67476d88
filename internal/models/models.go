package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Feature identifies one tab of the dashboard. Session uploads are keyed by it.
type Feature string

const (
	FeatureCRM       Feature = "crm"
	FeatureGoals     Feature = "goals"
	FeatureLedger    Feature = "ledger"
	FeatureInvoices  Feature = "invoices"
	FeatureStatement Feature = "statement"
	FeatureConverter Feature = "converter"
)

// RawDocument is an uploaded file held fully in memory for one processing pass.
type RawDocument struct {
	Filename string
	Content  []byte
}

// RenamedFile is a successfully renamed invoice PDF.
type RenamedFile struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
}

// ItemFailure reports one document that could not be processed. The batch
// around it always continues.
type ItemFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BatchResult collects per-document outcomes of an invoice rename run.
type BatchResult struct {
	Renamed  []RenamedFile `json:"renamed"`
	Failures []ItemFailure `json:"failures"`
}

// Transaction is one parsed Mercado Livre statement entry. Amount and Balance
// stay nil when no currency token was found in the block.
type Transaction struct {
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	OperationID string           `json:"operation_id,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
}

// LedgerRow is one normalized bank-spreadsheet row with the value split into
// credit and debit columns.
type LedgerRow struct {
	Date      string          `json:"date"`
	Document  string          `json:"document"`
	History   string          `json:"history"`
	Credit    decimal.Decimal `json:"credit"`
	Debit     decimal.Decimal `json:"debit"`
	IsTrailer bool            `json:"is_trailer,omitempty"`
}

// LedgerResult carries the normalized rows plus the aggregated totals that the
// TOTAL and DIFERENÇA trailer rows are built from.
type LedgerResult struct {
	Rows        []LedgerRow     `json:"rows"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Difference  decimal.Decimal `json:"difference"`
}

// ClientSummary is one CRM client with derived activity status.
type ClientSummary struct {
	Client       string          `json:"client"`
	LastPurchase time.Time       `json:"last_purchase"`
	QuarterTotal decimal.Decimal `json:"quarter_total"`
	Active       bool            `json:"active"`
}

// CRMResult is the full client-activity report for one spreadsheet.
type CRMResult struct {
	Clients  []ClientSummary `json:"clients"`
	Active   int             `json:"active"`
	Inactive int             `json:"inactive"`
	Vendors  []string        `json:"vendors"`
}

// GoalProgress reports CNPJ positivação progress against the registration goal.
type GoalProgress struct {
	Goal          int       `json:"goal"`
	UniqueCount   int       `json:"unique_count"`
	Remaining     int       `json:"remaining"`
	DaysRemaining int       `json:"days_remaining"`
	PerDay        float64   `json:"per_day"`
	Reached       bool      `json:"reached"`
	Deadline      time.Time `json:"deadline"`
}

// StoredFile is a handle to bytes kept in object storage, either a session
// upload or a produced artifact awaiting download.
type StoredFile struct {
	ID          string    `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	Feature     string    `json:"feature" db:"feature"`
	Kind        string    `json:"kind" db:"kind"`
	Filename    string    `json:"filename" db:"filename"`
	ObjectKey   string    `json:"-" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// StoredFile kinds.
const (
	KindUpload   = "upload"
	KindArtifact = "artifact"
)
