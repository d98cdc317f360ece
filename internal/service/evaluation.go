package service

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	apperrors "github.com/vendorlens/diligence-api/internal/errors"
	"github.com/vendorlens/diligence-api/internal/model"
	"github.com/vendorlens/diligence-api/internal/repository"
)

const (
	externalScoreWeight = 0.2
	internalScoreWeight = 0.8
	externalScoreScale  = 10
)

// scoreFetcher is the slice of ScoreClient the evaluation service needs.
type scoreFetcher interface {
	FetchScore(ctx context.Context, companyName string) (*float64, error)
}

// EvaluationResult is the product03 response object: the internal evaluation
// row enriched with the external score and a weighted total.
type EvaluationResult struct {
	ExternalScore *float64 `json:"external_score"`
	TotalScore    *float64 `json:"total_score,omitempty"`
	*model.Evaluation
}

// EvaluationService blends the internally stored supplier evaluation with a
// best-effort external score lookup.
type EvaluationService struct {
	evalRepo repository.EvaluationRepository
	scores   scoreFetcher
}

func NewEvaluationService(evalRepo repository.EvaluationRepository, scores scoreFetcher) *EvaluationService {
	return &EvaluationService{
		evalRepo: evalRepo,
		scores:   scores,
	}
}

// Evaluate looks up the internal evaluation for a company and attaches the
// external score. External failures degrade to internal-score-only; they
// never fail the request.
func (s *EvaluationService) Evaluate(ctx context.Context, companyName string) (*EvaluationResult, error) {
	internal, err := s.evalRepo.FindByCompanyName(ctx, companyName)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if internal == nil {
		return nil, apperrors.NotFound("Company evaluation")
	}

	result := &EvaluationResult{Evaluation: internal}

	raw, err := s.scores.FetchScore(ctx, companyName)
	if err != nil {
		log.Warn().Err(err).Str("company", companyName).Msg("external score lookup failed, degrading to internal score")
		return result, nil
	}
	if raw == nil {
		return result, nil
	}

	external := *raw / externalScoreScale
	result.ExternalScore = &external

	if internal.Score != nil {
		total := round2(external*externalScoreWeight + *internal.Score*internalScoreWeight)
		result.TotalScore = &total
	}

	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
