package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/vendorlens/diligence-api/internal/audit"
	"github.com/vendorlens/diligence-api/internal/database"
	apperrors "github.com/vendorlens/diligence-api/internal/errors"
	"github.com/vendorlens/diligence-api/internal/model"
	"github.com/vendorlens/diligence-api/internal/repository"
)

// APIKeyHeader identifies the billing account on metered endpoints.
const APIKeyHeader = "X-API-Key"

// ProductResult is what a product handler reports back to the meter: a JSON
// payload, how many billable records it contains, and the status to respond
// with (zero means 200).
type ProductResult struct {
	Payload     map[string]any
	RecordCount int
	Status      int
}

// ProductFunc is a product query handler. It is opaque to the meter beyond
// the countable result contract.
type ProductFunc func(r *http.Request) (*ProductResult, error)

var errInsufficientCredit = errors.New("insufficient credit")

// txRunner is the slice of database.DB the meter needs; satisfied by *database.DB.
type txRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// UsageMeter wraps product handlers with pay-per-record quota enforcement:
// look up the balance, run the handler, then debit and log in one transaction.
type UsageMeter struct {
	db              txRunner
	creditRepo      repository.CreditRepository
	usageRepo       repository.UsageLogRepository
	creditPerRecord int64
}

func NewUsageMeter(
	db txRunner,
	creditRepo repository.CreditRepository,
	usageRepo repository.UsageLogRepository,
	creditPerRecord int,
) *UsageMeter {
	return &UsageMeter{
		db:              db,
		creditRepo:      creditRepo,
		usageRepo:       usageRepo,
		creditPerRecord: int64(creditPerRecord),
	}
}

func (m *UsageMeter) Wrap(productType string, fn ProductFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		apiKey := r.Header.Get(APIKeyHeader)
		if apiKey == "" {
			writeError(w, apperrors.Unauthorized("Missing API key"))
			return
		}

		credit, err := m.creditRepo.FindByKeyAndProduct(ctx, apiKey, productType)
		if err != nil {
			log.Error().Err(err).Str("product_type", productType).Msg("usage meter: credit lookup failed")
			writeError(w, apperrors.Database(err))
			return
		}
		if credit == nil {
			writeError(w, apperrors.QuotaNotProvisioned(productType))
			return
		}

		// The query runs before admission; on rejection its result is
		// discarded (cost is only known from the result size).
		result, err := fn(r)
		if err != nil {
			writeError(w, err)
			return
		}

		cost := int64(result.RecordCount) * m.creditPerRecord

		var updated *model.ProductCredit
		txErr := m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			var err error
			updated, err = m.creditRepo.WithTx(tx).Debit(ctx, apiKey, productType, cost)
			if err != nil {
				return err
			}
			if updated == nil {
				return errInsufficientCredit
			}
			_, err = m.usageRepo.WithTx(tx).Create(ctx, model.CreateUsageLogParams{
				APIKey:      apiKey,
				ProductType: productType,
				DataCount:   result.RecordCount,
				CreditUsed:  cost,
			})
			return err
		})

		if errors.Is(txErr, errInsufficientCredit) {
			m.rejectOverQuota(w, r, apiKey, productType, cost)
			return
		}
		if txErr != nil {
			log.Error().Err(txErr).Str("product_type", productType).Msg("usage meter: debit transaction failed")
			writeError(w, apperrors.Database(txErr))
			return
		}

		audit.LogFromRequest(r, audit.Event{
			Type:        audit.EventCreditDebit,
			APIKey:      apiKey,
			ProductType: productType,
			Details: map[string]interface{}{
				"data_count":  result.RecordCount,
				"credit_used": cost,
			},
		})

		result.Payload["credit_info"] = model.CreditInfo{
			ProductType:     productType,
			DataCount:       result.RecordCount,
			CreditUsed:      cost,
			TotalCredit:     updated.TotalCredit,
			RemainingCredit: updated.Remaining(),
			Message:         fmt.Sprintf("Returned %d records, consumed %d credits", result.RecordCount, cost),
		}

		status := result.Status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, result.Payload)
	}
}

// rejectOverQuota re-reads the untouched balance so the 403 can report what
// the caller would need to reduce the query scope.
func (m *UsageMeter) rejectOverQuota(w http.ResponseWriter, r *http.Request, apiKey, productType string, required int64) {
	details := map[string]any{
		"product_type":    productType,
		"required_credit": required,
	}

	credit, err := m.creditRepo.FindByKeyAndProduct(r.Context(), apiKey, productType)
	if err != nil {
		log.Error().Err(err).Msg("usage meter: balance re-read failed")
	} else if credit != nil {
		details["total_credit"] = credit.TotalCredit
		details["used_credit"] = credit.UsedCredit
		details["remaining_credit"] = credit.Remaining()
	}

	audit.LogFromRequest(r, audit.Event{
		Type:        audit.EventQuotaExceeded,
		APIKey:      apiKey,
		ProductType: productType,
		Details:     map[string]interface{}{"required_credit": required},
	})

	writeError(w, apperrors.QuotaExceeded(details))
}
