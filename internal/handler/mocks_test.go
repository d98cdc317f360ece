package handler

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vendorlens/diligence-api/internal/model"
	"github.com/vendorlens/diligence-api/internal/repository"
)

type mockAccountRepo struct {
	findFunc       func(ctx context.Context, username string) (*model.Account, error)
	findActiveFunc func(ctx context.Context, username string) (*model.Account, error)
	createFunc     func(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
}

func (m *mockAccountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockAccountRepo) FindActiveByUsername(ctx context.Context, username string) (*model.Account, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockAccountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return &model.Account{
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		APIKey:       params.APIKey,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}, nil
}

func (m *mockAccountRepo) WithTx(tx *sqlx.Tx) repository.AccountRepository {
	return m
}

type mockCooperationRepo struct {
	findDetailFunc   func(ctx context.Context, companyName, creditCode string) ([]model.CooperationDetail, error)
	findFilteredFunc func(ctx context.Context, filter model.CooperationFilter) ([]model.Cooperation, error)
}

func (m *mockCooperationRepo) FindByCompanyAndCreditCode(ctx context.Context, companyName, creditCode string) ([]model.CooperationDetail, error) {
	if m.findDetailFunc != nil {
		return m.findDetailFunc(ctx, companyName, creditCode)
	}
	return nil, nil
}

func (m *mockCooperationRepo) FindFiltered(ctx context.Context, filter model.CooperationFilter) ([]model.Cooperation, error) {
	if m.findFilteredFunc != nil {
		return m.findFilteredFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockCooperationRepo) WithTx(tx *sqlx.Tx) repository.CooperationRepository {
	return m
}

type mockEvaluationRepo struct {
	findFunc       func(ctx context.Context, companyName string) (*model.Evaluation, error)
	findScoresFunc func(ctx context.Context, companyName string) ([]model.EvaluationScore, error)
}

func (m *mockEvaluationRepo) FindByCompanyName(ctx context.Context, companyName string) (*model.Evaluation, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, companyName)
	}
	return nil, nil
}

func (m *mockEvaluationRepo) FindScoresByCompanyName(ctx context.Context, companyName string) ([]model.EvaluationScore, error) {
	if m.findScoresFunc != nil {
		return m.findScoresFunc(ctx, companyName)
	}
	return nil, nil
}

func (m *mockEvaluationRepo) WithTx(tx *sqlx.Tx) repository.EvaluationRepository {
	return m
}

type mockCreditRepo struct {
	listFunc func(ctx context.Context, apiKey string) ([]model.CreditBalance, error)
}

func (m *mockCreditRepo) FindByKeyAndProduct(ctx context.Context, apiKey, productType string) (*model.ProductCredit, error) {
	return nil, nil
}

func (m *mockCreditRepo) Debit(ctx context.Context, apiKey, productType string, cost int64) (*model.ProductCredit, error) {
	return nil, nil
}

func (m *mockCreditRepo) ListBalances(ctx context.Context, apiKey string) ([]model.CreditBalance, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, apiKey)
	}
	return nil, nil
}

func (m *mockCreditRepo) WithTx(tx *sqlx.Tx) repository.CreditRepository {
	return m
}

type mockUsageLogRepo struct {
	aggregateFunc func(ctx context.Context, apiKey string, filter model.UsageFilter) ([]model.UsagePeriod, error)
}

func (m *mockUsageLogRepo) Create(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error) {
	return &model.UsageLogEntry{}, nil
}

func (m *mockUsageLogRepo) AggregateByPeriod(ctx context.Context, apiKey string, filter model.UsageFilter) ([]model.UsagePeriod, error) {
	if m.aggregateFunc != nil {
		return m.aggregateFunc(ctx, apiKey, filter)
	}
	return nil, nil
}

func (m *mockUsageLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockUsageLogRepo) WithTx(tx *sqlx.Tx) repository.UsageLogRepository {
	return m
}
