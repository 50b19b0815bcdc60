package contracts

import (
	"context"

	"facturation-service/internal/app/models"
	"facturation-service/internal/pkg/dto/requests"
	"facturation-service/internal/pkg/dto/responses"
)

type RunRepository interface {
	Insert(ctx context.Context, run *models.ValidationRun) error
	FindByID(ctx context.Context, runID string) (*models.ValidationRun, error)
	UpdateStatus(ctx context.Context, runID string, status models.RunStatus, errorMessage string) error
	UpdateProgress(ctx context.Context, runID string, progress int) error
	MarkCompleted(ctx context.Context, runID string, findingCount int, skippedRules []string) error
}

type BillingRecordRepository interface {
	InsertMany(ctx context.Context, records []models.BillingRecord) error
	FindByRunID(ctx context.Context, runID string) ([]models.BillingRecord, error)
	DeleteByRunID(ctx context.Context, runID string) error
}

type FindingRepository interface {
	InsertMany(ctx context.Context, findings []models.Finding) error
	FindByRunID(ctx context.Context, runID string) ([]models.Finding, error)
	DeleteByRunID(ctx context.Context, runID string) error
}

type RunUsecase interface {
	SubmitRun(ctx context.Context, request *requests.SubmitRun) (*responses.SubmitRun, error)
	ProcessRun(ctx context.Context, runID string) error
	GetRun(ctx context.Context, runID string) (*responses.Run, error)
	GetFindings(ctx context.Context, runID string, redact *bool) ([]models.Finding, error)
	GetRecords(ctx context.Context, runID string, redact *bool) ([]models.BillingRecord, error)
	ExportFindings(ctx context.Context, runID string) (*responses.Export, error)
}
