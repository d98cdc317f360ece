package model

import (
	"time"
)

// UsageLogEntry is one append-only audit row per successful metered call.
type UsageLogEntry struct {
	ID          int64     `db:"id" json:"id"`
	APIKey      string    `db:"api_key" json:"-"`
	ProductType string    `db:"product_type" json:"product_type"`
	DataCount   int       `db:"data_count" json:"data_count"`
	CreditUsed  int64     `db:"credit_used" json:"credit_used"`
	RequestTime time.Time `db:"request_time" json:"request_time"`
}

type CreateUsageLogParams struct {
	APIKey      string
	ProductType string
	DataCount   int
	CreditUsed  int64
}

// UsageGroupBy values accepted by the usage report.
var ValidUsageGroupBy = []string{"hour", "day", "month", "year"}

// UsageFilter narrows the usage report. Dates are YYYY-MM-DD strings,
// validated before any query runs.
type UsageFilter struct {
	GroupBy     string
	StartDate   string
	EndDate     string
	ProductType string
}

// UsagePeriod is one aggregated bucket of the usage log.
type UsagePeriod struct {
	TimePeriod   time.Time `db:"time_period" json:"-"`
	ProductType  string    `db:"product_type" json:"product_type"`
	TotalCalls   int64     `db:"total_calls" json:"total_calls"`
	TotalRecords int64     `db:"total_records" json:"total_records"`
	TotalCredits int64     `db:"total_credits" json:"total_credits"`
	PeriodStart  time.Time `db:"period_start" json:"-"`
	PeriodEnd    time.Time `db:"period_end" json:"-"`
}

// UsageSummary is the running grand total over all returned periods.
type UsageSummary struct {
	TotalCalls   int64 `json:"total_calls"`
	TotalRecords int64 `json:"total_records"`
	TotalCredits int64 `json:"total_credits"`
}
