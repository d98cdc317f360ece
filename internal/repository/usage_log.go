package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vendorlens/diligence-api/internal/model"
)

type UsageLogRepository interface {
	Create(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error)
	AggregateByPeriod(ctx context.Context, apiKey string, filter model.UsageFilter) ([]model.UsagePeriod, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *sqlx.Tx) UsageLogRepository
}

type usageLogRepo struct {
	db sqlxDB
}

func NewUsageLogRepository(db *sqlx.DB) UsageLogRepository {
	return &usageLogRepo{db: db}
}

func (r *usageLogRepo) WithTx(tx *sqlx.Tx) UsageLogRepository {
	return &usageLogRepo{db: tx}
}

func (r *usageLogRepo) Create(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error) {
	var entry model.UsageLogEntry
	err := r.db.GetContext(ctx, &entry, `
		INSERT INTO api_usage_logs (api_key, product_type, data_count, credit_used)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.APIKey, params.ProductType, params.DataCount, params.CreditUsed)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// truncUnits whitelists the DATE_TRUNC granularity; group_by is validated at
// the boundary but never interpolated from user input directly.
var truncUnits = map[string]string{
	"hour":  "hour",
	"day":   "day",
	"month": "month",
	"year":  "year",
}

func (r *usageLogRepo) AggregateByPeriod(ctx context.Context, apiKey string, filter model.UsageFilter) ([]model.UsagePeriod, error) {
	unit, ok := truncUnits[filter.GroupBy]
	if !ok {
		return nil, fmt.Errorf("unsupported group_by: %q", filter.GroupBy)
	}

	query := fmt.Sprintf(`
		SELECT
			DATE_TRUNC('%s', request_time) AS time_period,
			product_type,
			COUNT(*) AS total_calls,
			SUM(data_count) AS total_records,
			SUM(credit_used) AS total_credits,
			MIN(request_time) AS period_start,
			MAX(request_time) AS period_end
		FROM api_usage_logs
		WHERE api_key = $1
	`, unit)

	args := []interface{}{apiKey}

	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		query += fmt.Sprintf(" AND request_time >= $%d", len(args))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		query += fmt.Sprintf(" AND request_time <= $%d", len(args))
	}
	if filter.ProductType != "" {
		args = append(args, filter.ProductType)
		query += fmt.Sprintf(" AND product_type = $%d", len(args))
	}

	query += fmt.Sprintf(`
		GROUP BY DATE_TRUNC('%s', request_time), product_type
		ORDER BY time_period DESC, product_type
	`, unit)

	var periods []model.UsagePeriod
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *usageLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM api_usage_logs WHERE request_time < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
