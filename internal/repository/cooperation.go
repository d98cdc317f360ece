package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/vendorlens/diligence-api/internal/model"
)

type CooperationRepository interface {
	// FindByCompanyAndCreditCode is the exact lookup behind product01.
	FindByCompanyAndCreditCode(ctx context.Context, companyName, creditCode string) ([]model.CooperationDetail, error)
	// FindFiltered is the conjunctive-filter listing behind product02.
	FindFiltered(ctx context.Context, filter model.CooperationFilter) ([]model.Cooperation, error)
	WithTx(tx *sqlx.Tx) CooperationRepository
}

type cooperationRepo struct {
	db sqlxDB
}

func NewCooperationRepository(db *sqlx.DB) CooperationRepository {
	return &cooperationRepo{db: db}
}

func (r *cooperationRepo) WithTx(tx *sqlx.Tx) CooperationRepository {
	return &cooperationRepo{db: tx}
}

func (r *cooperationRepo) FindByCompanyAndCreditCode(ctx context.Context, companyName, creditCode string) ([]model.CooperationDetail, error) {
	var rows []model.CooperationDetail
	err := r.db.SelectContext(ctx, &rows, `
		SELECT company_name, credit_code, mail_address, legal_representative,
		       fax, website, products_type, statistical_year, province,
		       total_bid_amount, is_blacklist
		FROM dm_cooperation
		WHERE company_name = $1 AND credit_code = $2
	`, companyName, creditCode)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *cooperationRepo) FindFiltered(ctx context.Context, filter model.CooperationFilter) ([]model.Cooperation, error) {
	var conditions []string
	var args []interface{}

	// Absent filters are omitted from the WHERE clause, not wildcarded.
	if filter.StatisticalYear != nil {
		args = append(args, *filter.StatisticalYear)
		conditions = append(conditions, fmt.Sprintf("statistical_year = $%d", len(args)))
	}
	if filter.Province != nil {
		args = append(args, *filter.Province)
		conditions = append(conditions, fmt.Sprintf("province = $%d", len(args)))
	}
	if filter.TotalBidAmount != nil {
		args = append(args, *filter.TotalBidAmount)
		conditions = append(conditions, fmt.Sprintf("total_bid_amount = $%d", len(args)))
	}
	if filter.IsBlacklist != nil {
		args = append(args, *filter.IsBlacklist)
		conditions = append(conditions, fmt.Sprintf("is_blacklist = $%d", len(args)))
	}

	query := `
		SELECT company_name, credit_code, mail_address, legal_representative,
		       fax, website, products_type
		FROM dm_cooperation`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY statistical_year DESC"

	var rows []model.Cooperation
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
