package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"furious-host/internal/catalog"
	"furious-host/internal/llm"
)

// PlanService arma el prompt de recomendacion y consulta el gateway de completions.
// Es un proxy de un solo disparo: sin retries, sin cache, sin rate limiting propio.
type PlanService struct {
	logger *zap.Logger
	client llm.Client
}

var (
	ErrPlanMissingFields = errors.New("missing requirements or planType")
	ErrPlanUnknownType   = errors.New("unknown planType")
)

// FallbackRecommendation se devuelve cuando el gateway responde sin contenido.
const FallbackRecommendation = "Unable to generate recommendation"

func NewPlanService(logger *zap.Logger, client llm.Client) *PlanService {
	return &PlanService{logger: logger, client: client}
}

// Recommend valida la entrada, selecciona el catalogo y devuelve la recomendacion generada.
// Los errores del gateway (llm.ErrRateLimited, llm.ErrPaymentRequired, etc.) se propagan sin transformar.
func (s *PlanService) Recommend(ctx context.Context, requirements, planType string) (string, error) {
	requirements = strings.TrimSpace(requirements)
	planType = strings.TrimSpace(planType)
	if requirements == "" || planType == "" {
		return "", ErrPlanMissingFields
	}

	plans, ok := catalog.Plans(planType)
	if !ok {
		return "", ErrPlanUnknownType
	}

	recommendation, err := s.client.Complete(ctx, buildPlanPrompt(planType, plans), requirements)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(recommendation) == "" {
		if s.logger != nil {
			s.logger.Warn("ai gateway returned no recommendation", zap.String("plan_type", planType))
		}
		return FallbackRecommendation, nil
	}
	return recommendation, nil
}

func buildPlanPrompt(planType string, plans []catalog.Entry) string {
	data, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		data = []byte("[]")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a hosting expert helping customers choose the right %s hosting plan. \n", planType))
	sb.WriteString("Based on the customer's requirements, analyze their needs and recommend the most suitable plan from the available options.\n\n")
	sb.WriteString("Available plans:\n")
	sb.Write(data)
	sb.WriteString("\n\n")
	sb.WriteString("Provide a clear, concise recommendation that:\n")
	sb.WriteString("1. Identifies the best matching plan by name\n")
	sb.WriteString("2. Explains why this plan fits their needs\n")
	sb.WriteString("3. Mentions key specs that align with their requirements\n")
	sb.WriteString("4. Suggests if they might need to upgrade in the future based on growth potential\n\n")
	sb.WriteString("Keep the response friendly, professional, and under 200 words.")
	return sb.String()
}
