package contracts

import (
	"context"

	"facturation-service/internal/app/models"
)

type ReferenceRepository interface {
	FindAllCodes(ctx context.Context) ([]models.Code, error)
	FindAllEstablishments(ctx context.Context) ([]models.Establishment, error)
}

// ReferenceUsecase answers exact-key reference lookups and assembles the
// immutable snapshot handed to rule handlers.
type ReferenceUsecase interface {
	BuildReferenceSet(ctx context.Context) (models.ReferenceSet, error)
}
