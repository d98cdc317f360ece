package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorlens/diligence-api/internal/database"
	apperrors "github.com/vendorlens/diligence-api/internal/errors"
	"github.com/vendorlens/diligence-api/internal/model"
	"github.com/vendorlens/diligence-api/internal/repository"
)

// stubTx runs the transaction function directly; the mock repositories
// ignore the nil transaction handle.
type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type mockCreditRepo struct {
	findFunc  func(ctx context.Context, apiKey, productType string) (*model.ProductCredit, error)
	debitFunc func(ctx context.Context, apiKey, productType string, cost int64) (*model.ProductCredit, error)
	listFunc  func(ctx context.Context, apiKey string) ([]model.CreditBalance, error)
}

func (m *mockCreditRepo) FindByKeyAndProduct(ctx context.Context, apiKey, productType string) (*model.ProductCredit, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, apiKey, productType)
	}
	return nil, nil
}

func (m *mockCreditRepo) Debit(ctx context.Context, apiKey, productType string, cost int64) (*model.ProductCredit, error) {
	if m.debitFunc != nil {
		return m.debitFunc(ctx, apiKey, productType, cost)
	}
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

type mockUsageRepo struct {
	createFunc func(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error)
}

func (m *mockUsageRepo) Create(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return &model.UsageLogEntry{}, nil
}

func (m *mockUsageRepo) AggregateByPeriod(ctx context.Context, apiKey string, filter model.UsageFilter) ([]model.UsagePeriod, error) {
	return nil, nil
}

func (m *mockUsageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockUsageRepo) WithTx(tx *sqlx.Tx) repository.UsageLogRepository {
	return m
}

// trackedBalance emulates the conditional-update semantics of the credit row.
type trackedBalance struct {
	mu    sync.Mutex
	total int64
	used  int64
}

func (b *trackedBalance) debit(cost int64) *model.ProductCredit {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used+cost > b.total {
		return nil
	}
	b.used += cost
	return &model.ProductCredit{
		APIKey:      "key-1",
		ProductType: "product02",
		TotalCredit: b.total,
		UsedCredit:  b.used,
		UpdatedAt:   time.Now(),
	}
}

func (b *trackedBalance) snapshot() *model.ProductCredit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &model.ProductCredit{
		APIKey:      "key-1",
		ProductType: "product02",
		TotalCredit: b.total,
		UsedCredit:  b.used,
		UpdatedAt:   time.Now(),
	}
}

func newMeterForBalance(balance *trackedBalance, usageRepo *mockUsageRepo) *UsageMeter {
	creditRepo := &mockCreditRepo{
		findFunc: func(ctx context.Context, apiKey, productType string) (*model.ProductCredit, error) {
			return balance.snapshot(), nil
		},
		debitFunc: func(ctx context.Context, apiKey, productType string, cost int64) (*model.ProductCredit, error) {
			return balance.debit(cost), nil
		},
	}
	return NewUsageMeter(stubTx{}, creditRepo, usageRepo, 100)
}

func productReturning(records int) ProductFunc {
	return func(r *http.Request) (*ProductResult, error) {
		data := make([]map[string]any, records)
		for i := range data {
			data[i] = map[string]any{"company_name": "ACME"}
		}
		return &ProductResult{
			Payload:     map[string]any{"data": data},
			RecordCount: records,
		}, nil
	}
}

func meteredRequest() *http.Request {
	req := httptest.NewRequest("POST", "/query2", nil)
	req.Header.Set(APIKeyHeader, "key-1")
	return req
}

func TestUsageMeter(t *testing.T) {
	t.Run("rejects request without api key", func(t *testing.T) {
		meter := newMeterForBalance(&trackedBalance{total: 500}, &mockUsageRepo{})
		handler := meter.Wrap("product02", func(r *http.Request) (*ProductResult, error) {
			t.Fatal("handler should not be called")
			return nil, nil
		})

		req := httptest.NewRequest("POST", "/query2", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects unprovisioned product", func(t *testing.T) {
		creditRepo := &mockCreditRepo{
			findFunc: func(ctx context.Context, apiKey, productType string) (*model.ProductCredit, error) {
				return nil, nil
			},
		}
		meter := NewUsageMeter(stubTx{}, creditRepo, &mockUsageRepo{}, 100)
		handler := meter.Wrap("product02", func(r *http.Request) (*ProductResult, error) {
			t.Fatal("handler should not be called")
			return nil, nil
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, meteredRequest())

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "QUOTA_NOT_PROVISIONED")
	})

	t.Run("rejects when cost exceeds remaining credit", func(t *testing.T) {
		// total=500, used=400: a 2-record call costs 200 and must be refused.
		balance := &trackedBalance{total: 500, used: 400}
		logged := 0
		usageRepo := &mockUsageRepo{
			createFunc: func(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error) {
				logged++
				return &model.UsageLogEntry{}, nil
			},
		}
		meter := newMeterForBalance(balance, usageRepo)
		handler := meter.Wrap("product02", productReturning(2))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, meteredRequest())

		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body struct {
			Code    apperrors.ErrorCode `json:"error_code"`
			Details map[string]any      `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, apperrors.ErrCodeQuotaExceeded, body.Code)
		assert.EqualValues(t, 200, body.Details["required_credit"])
		assert.EqualValues(t, 100, body.Details["remaining_credit"])
		assert.EqualValues(t, 500, body.Details["total_credit"])
		assert.EqualValues(t, 400, body.Details["used_credit"])

		// Balance unchanged, nothing logged.
		assert.EqualValues(t, 400, balance.snapshot().UsedCredit)
		assert.Equal(t, 0, logged)
	})

	t.Run("debits exactly cost and appends one log entry", func(t *testing.T) {
		balance := &trackedBalance{total: 500, used: 400}
		var loggedParams []model.CreateUsageLogParams
		usageRepo := &mockUsageRepo{
			createFunc: func(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error) {
				loggedParams = append(loggedParams, params)
				return &model.UsageLogEntry{}, nil
			},
		}
		meter := newMeterForBalance(balance, usageRepo)
		handler := meter.Wrap("product02", productReturning(1))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, meteredRequest())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 500, balance.snapshot().UsedCredit)

		require.Len(t, loggedParams, 1)
		assert.Equal(t, "key-1", loggedParams[0].APIKey)
		assert.Equal(t, "product02", loggedParams[0].ProductType)
		assert.Equal(t, 1, loggedParams[0].DataCount)
		assert.EqualValues(t, 100, loggedParams[0].CreditUsed)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		creditInfo, ok := body["credit_info"].(map[string]any)
		require.True(t, ok, "response should carry credit_info")
		assert.EqualValues(t, 1, creditInfo["data_count"])
		assert.EqualValues(t, 100, creditInfo["credit_used"])
		assert.EqualValues(t, 500, creditInfo["total_credit"])
		assert.EqualValues(t, 0, creditInfo["remaining_credit"])
	})

	t.Run("handler errors propagate unmetered", func(t *testing.T) {
		balance := &trackedBalance{total: 500}
		logged := 0
		usageRepo := &mockUsageRepo{
			createFunc: func(ctx context.Context, params model.CreateUsageLogParams) (*model.UsageLogEntry, error) {
				logged++
				return &model.UsageLogEntry{}, nil
			},
		}
		meter := newMeterForBalance(balance, usageRepo)
		handler := meter.Wrap("product03", func(r *http.Request) (*ProductResult, error) {
			return nil, apperrors.NotFound("Company evaluation")
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, meteredRequest())

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.EqualValues(t, 0, balance.snapshot().UsedCredit)
		assert.Equal(t, 0, logged)
	})

	t.Run("concurrent calls admit at most floor(remaining/cost)", func(t *testing.T) {
		// remaining=300, cost=100 each: exactly 3 of 10 may succeed.
		balance := &trackedBalance{total: 300}
		meter := newMeterForBalance(balance, &mockUsageRepo{})
		handler := meter.Wrap("product02", productReturning(1))

		const calls = 10
		codes := make([]int, calls)
		var wg sync.WaitGroup
		for i := 0; i < calls; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, meteredRequest())
				codes[i] = rec.Code
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, code := range codes {
			switch code {
			case http.StatusOK:
				succeeded++
			case http.StatusForbidden:
			default:
				t.Fatalf("unexpected status %d", code)
			}
		}
		assert.Equal(t, 3, succeeded)
		assert.EqualValues(t, 300, balance.snapshot().UsedCredit)
	})
}
