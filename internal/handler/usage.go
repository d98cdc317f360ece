package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/vendorlens/diligence-api/internal/errors"
	"github.com/vendorlens/diligence-api/internal/middleware"
	"github.com/vendorlens/diligence-api/internal/model"
	"github.com/vendorlens/diligence-api/internal/repository"
	"github.com/vendorlens/diligence-api/internal/util"
)

const periodTimeFormat = "2006-01-02 15:04:05"

type UsageHandler struct {
	usageRepo  repository.UsageLogRepository
	creditRepo repository.CreditRepository
}

func NewUsageHandler(usageRepo repository.UsageLogRepository, creditRepo repository.CreditRepository) *UsageHandler {
	return &UsageHandler{
		usageRepo:  usageRepo,
		creditRepo: creditRepo,
	}
}

type usageRequest struct {
	GroupBy     string `json:"group_by"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	ProductType string `json:"product_type"`
}

// usagePeriodView is a UsagePeriod with timestamps rendered for clients.
type usagePeriodView struct {
	TimePeriod   string `json:"time_period"`
	ProductType  string `json:"product_type"`
	TotalCalls   int64  `json:"total_calls"`
	TotalRecords int64  `json:"total_records"`
	TotalCredits int64  `json:"total_credits"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`
}

// POST /usage
func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get(middleware.APIKeyHeader)
	if apiKey == "" {
		writeError(w, apperrors.Unauthorized("Missing API key"))
		return
	}

	var req usageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Missing request body"))
		return
	}

	if req.GroupBy == "" {
		req.GroupBy = "day"
	}

	// All parameter validation happens before any query executes.
	if !util.IsValidEnum(req.GroupBy, model.ValidUsageGroupBy) {
		writeError(w, apperrors.ValidationError(fmt.Sprintf(
			"Invalid group_by parameter. Must be one of: %s",
			strings.Join(model.ValidUsageGroupBy, ", "),
		)))
		return
	}
	if req.StartDate != "" && !util.IsValidDate(req.StartDate) {
		writeError(w, apperrors.InvalidInput("start_date", "use YYYY-MM-DD format"))
		return
	}
	if req.EndDate != "" && !util.IsValidDate(req.EndDate) {
		writeError(w, apperrors.InvalidInput("end_date", "use YYYY-MM-DD format"))
		return
	}

	ctx := r.Context()

	periods, err := h.usageRepo.AggregateByPeriod(ctx, apiKey, model.UsageFilter{
		GroupBy:     req.GroupBy,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ProductType: req.ProductType,
	})
	if err != nil {
		log.Error().Err(err).Msg("usage report: aggregation failed")
		writeError(w, apperrors.Database(err))
		return
	}

	var summary model.UsageSummary
	views := make([]usagePeriodView, 0, len(periods))
	for _, p := range periods {
		summary.TotalCalls += p.TotalCalls
		summary.TotalRecords += p.TotalRecords
		summary.TotalCredits += p.TotalCredits
		views = append(views, usagePeriodView{
			TimePeriod:   p.TimePeriod.Format(periodTimeFormat),
			ProductType:  p.ProductType,
			TotalCalls:   p.TotalCalls,
			TotalRecords: p.TotalRecords,
			TotalCredits: p.TotalCredits,
			PeriodStart:  p.PeriodStart.Format(periodTimeFormat),
			PeriodEnd:    p.PeriodEnd.Format(periodTimeFormat),
		})
	}

	balances, err := h.creditRepo.ListBalances(ctx, apiKey)
	if err != nil {
		log.Error().Err(err).Msg("usage report: balance lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}
	if balances == nil {
		balances = []model.CreditBalance{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"usage_data":   views,
		"summary":      summary,
		"credits_info": balances,
		"params": map[string]any{
			"group_by":     req.GroupBy,
			"start_date":   nullable(req.StartDate),
			"end_date":     nullable(req.EndDate),
			"product_type": nullable(req.ProductType),
		},
		"total_records": len(views),
	})
}

// POST /credit/balance
func (h *UsageHandler) CreditBalance(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get(middleware.APIKeyHeader)
	if apiKey == "" {
		writeError(w, apperrors.Unauthorized("Missing API key"))
		return
	}

	balances, err := h.creditRepo.ListBalances(r.Context(), apiKey)
	if err != nil {
		log.Error().Err(err).Msg("credit balance: lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}
	if balances == nil {
		balances = []model.CreditBalance{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"api_key":      apiKey,
		"credits_data": balances,
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
