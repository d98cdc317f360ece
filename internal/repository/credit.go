package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vendorlens/diligence-api/internal/model"
)

type CreditRepository interface {
	FindByKeyAndProduct(ctx context.Context, apiKey, productType string) (*model.ProductCredit, error)
	// Debit atomically adds cost to used_credit, admitting the debit only if
	// the balance stays within total_credit. A nil result with nil error means
	// the quota would be exceeded; the row is left unchanged.
	Debit(ctx context.Context, apiKey, productType string, cost int64) (*model.ProductCredit, error)
	ListBalances(ctx context.Context, apiKey string) ([]model.CreditBalance, error)
	WithTx(tx *sqlx.Tx) CreditRepository
}

type creditRepo struct {
	db sqlxDB
}

func NewCreditRepository(db *sqlx.DB) CreditRepository {
	return &creditRepo{db: db}
}

func (r *creditRepo) WithTx(tx *sqlx.Tx) CreditRepository {
	return &creditRepo{db: tx}
}

func (r *creditRepo) FindByKeyAndProduct(ctx context.Context, apiKey, productType string) (*model.ProductCredit, error) {
	var credit model.ProductCredit
	err := r.db.GetContext(ctx, &credit, `
		SELECT * FROM api_product_credits
		WHERE api_key = $1 AND product_type = $2
	`, apiKey, productType)
	return HandleNotFound(&credit, err)
}

func (r *creditRepo) Debit(ctx context.Context, apiKey, productType string, cost int64) (*model.ProductCredit, error) {
	var credit model.ProductCredit
	// Conditional update: zero rows affected means insufficient credit, so
	// concurrent debits against the same row can never overspend.
	err := r.db.GetContext(ctx, &credit, `
		UPDATE api_product_credits
		SET used_credit = used_credit + $3,
		    updated_at = $4
		WHERE api_key = $1 AND product_type = $2
		  AND used_credit + $3 <= total_credit
		RETURNING *
	`, apiKey, productType, cost, time.Now())
	return HandleNotFound(&credit, err)
}

func (r *creditRepo) ListBalances(ctx context.Context, apiKey string) ([]model.CreditBalance, error) {
	var balances []model.CreditBalance
	err := r.db.SelectContext(ctx, &balances, `
		SELECT
			product_type,
			total_credit,
			used_credit,
			(total_credit - used_credit) AS remaining_credit,
			updated_at
		FROM api_product_credits
		WHERE api_key = $1
		ORDER BY product_type
	`, apiKey)
	if err != nil {
		return nil, err
	}
	return balances, nil
}
