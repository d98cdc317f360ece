package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vendorlens/diligence-api/internal/model"
)

type EvaluationRepository interface {
	// FindByCompanyName returns the single full evaluation row (product03).
	FindByCompanyName(ctx context.Context, companyName string) (*model.Evaluation, error)
	// FindScoresByCompanyName returns the reduced score rows (product04).
	FindScoresByCompanyName(ctx context.Context, companyName string) ([]model.EvaluationScore, error)
	WithTx(tx *sqlx.Tx) EvaluationRepository
}

type evaluationRepo struct {
	db sqlxDB
}

func NewEvaluationRepository(db *sqlx.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) WithTx(tx *sqlx.Tx) EvaluationRepository {
	return &evaluationRepo{db: tx}
}

func (r *evaluationRepo) FindByCompanyName(ctx context.Context, companyName string) (*model.Evaluation, error) {
	var eval model.Evaluation
	err := r.db.GetContext(ctx, &eval, `
		SELECT ename, credit_code, rating, score, business_score,
		       undertake_score, stability_score, performance_score, risk_score,
		       cooperate_count, business_scope, cooperate_amount_avg_3y,
		       cooperate_amount_1y, cooperate_period, cooperate_continuity_3y,
		       performance_appraisal, bad_behavior_3y, malicious_events_1y,
		       is_blacklist
		FROM dm_internal_evaluation
		WHERE ename = $1
	`, companyName)
	return HandleNotFound(&eval, err)
}

func (r *evaluationRepo) FindScoresByCompanyName(ctx context.Context, companyName string) ([]model.EvaluationScore, error) {
	var rows []model.EvaluationScore
	err := r.db.SelectContext(ctx, &rows, `
		SELECT ename, credit_code, score, rating, business_score,
		       undertake_score, stability_score, performance_score, risk_score,
		       performance_appraisal, bad_behavior_3y, malicious_events_1y,
		       is_blacklist
		FROM dm_internal_evaluation
		WHERE ename = $1
	`, companyName)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
