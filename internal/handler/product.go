package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/vendorlens/diligence-api/internal/errors"
	"github.com/vendorlens/diligence-api/internal/middleware"
	"github.com/vendorlens/diligence-api/internal/model"
	"github.com/vendorlens/diligence-api/internal/repository"
	"github.com/vendorlens/diligence-api/internal/service"
)

// ProductHandler holds the read-only product queries wrapped by the usage
// meter. Each method satisfies middleware.ProductFunc.
type ProductHandler struct {
	coopRepo    repository.CooperationRepository
	evalRepo    repository.EvaluationRepository
	evalService *service.EvaluationService
}

func NewProductHandler(
	coopRepo repository.CooperationRepository,
	evalRepo repository.EvaluationRepository,
	evalService *service.EvaluationService,
) *ProductHandler {
	return &ProductHandler{
		coopRepo:    coopRepo,
		evalRepo:    evalRepo,
		evalService: evalService,
	}
}

// Query1: exact company lookup by name and unified credit code.
func (h *ProductHandler) Query1(r *http.Request) (*middleware.ProductResult, error) {
	var req struct {
		CompanyName string `json:"company_name"`
		CreditCode  string `json:"credit_code"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.CompanyName == "" || req.CreditCode == "" {
		return nil, apperrors.ValidationError("Missing parameters")
	}

	rows, err := h.coopRepo.FindByCompanyAndCreditCode(r.Context(), req.CompanyName, req.CreditCode)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if rows == nil {
		rows = []model.CooperationDetail{}
	}

	return &middleware.ProductResult{
		Payload: map[string]any{
			"data":          rows,
			"total_records": len(rows),
		},
		RecordCount: len(rows),
	}, nil
}

// Query2: filtered supplier listing.
func (h *ProductHandler) Query2(r *http.Request) (*middleware.ProductResult, error) {
	var filter model.CooperationFilter
	_ = json.NewDecoder(r.Body).Decode(&filter)

	rows, err := h.coopRepo.FindFiltered(r.Context(), filter)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if rows == nil {
		rows = []model.Cooperation{}
	}

	return &middleware.ProductResult{
		Payload: map[string]any{
			"data":          rows,
			"query_params":  filter,
			"total_records": len(rows),
		},
		RecordCount: len(rows),
	}, nil
}

// Query3: single-company evaluation blended with the external score.
func (h *ProductHandler) Query3(r *http.Request) (*middleware.ProductResult, error) {
	var req struct {
		CompanyName string `json:"company_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.CompanyName == "" {
		return nil, apperrors.ValidationError("Missing 'company_name' parameter")
	}

	result, err := h.evalService.Evaluate(r.Context(), req.CompanyName)
	if err != nil {
		return nil, err
	}

	return &middleware.ProductResult{
		Payload: map[string]any{
			"code":    http.StatusOK,
			"message": "success",
			"data":    result,
		},
		RecordCount: 1,
	}, nil
}

// Query4: evaluation score card for a company.
func (h *ProductHandler) Query4(r *http.Request) (*middleware.ProductResult, error) {
	var req struct {
		CompanyName string `json:"company_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.CompanyName == "" {
		return nil, apperrors.ValidationError("Missing 'company_name' parameter")
	}

	rows, err := h.evalRepo.FindScoresByCompanyName(r.Context(), req.CompanyName)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if rows == nil {
		rows = []model.EvaluationScore{}
	}

	return &middleware.ProductResult{
		Payload: map[string]any{
			"data": rows,
		},
		RecordCount: len(rows),
	}, nil
}
