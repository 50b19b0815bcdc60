package contracts

import (
	"context"

	"facturation-service/internal/app/models"
)

type RuleRepository interface {
	FindAll(ctx context.Context) ([]models.RuleDefinition, error)
	FindEnabled(ctx context.Context) ([]models.RuleDefinition, error)
}

// RuleUsecase loads rule definitions with their condition payloads decoded
// into the per-category typed structs.
type RuleUsecase interface {
	LoadEnabledRules(ctx context.Context) ([]models.RuleDefinition, error)
	ListRules(ctx context.Context) ([]models.RuleDefinition, error)
}
