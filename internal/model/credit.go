package model

import (
	"time"
)

// ProductCredit is one quota row per (api_key, product_type).
// Invariant: 0 <= used_credit <= total_credit after every successful debit.
type ProductCredit struct {
	APIKey      string    `db:"api_key" json:"-"`
	ProductType string    `db:"product_type" json:"product_type"`
	TotalCredit int64     `db:"total_credit" json:"total_credit"`
	UsedCredit  int64     `db:"used_credit" json:"used_credit"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (c *ProductCredit) Remaining() int64 {
	return c.TotalCredit - c.UsedCredit
}

// CreditBalance is the per-product view returned by the balance endpoint.
type CreditBalance struct {
	ProductType     string    `db:"product_type" json:"product_type"`
	TotalCredit     int64     `db:"total_credit" json:"total_credit"`
	UsedCredit      int64     `db:"used_credit" json:"used_credit"`
	RemainingCredit int64     `db:"remaining_credit" json:"remaining_credit"`
	LastUpdated     time.Time `db:"updated_at" json:"last_updated"`
}

// CreditInfo is the billing block the usage meter merges into product responses.
type CreditInfo struct {
	ProductType     string `json:"product_type"`
	DataCount       int    `json:"data_count"`
	CreditUsed      int64  `json:"credit_used"`
	TotalCredit     int64  `json:"total_credit"`
	RemainingCredit int64  `json:"remaining_credit"`
	Message         string `json:"message"`
}
