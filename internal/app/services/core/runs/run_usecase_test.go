package runs

import (
	"bytes"
	"context"
	"testing"
	"time"

	"facturation-service/internal/app/config"
	"facturation-service/internal/app/models"
	"facturation-service/internal/app/services/core/validation"
	"facturation-service/internal/pkg/exceptions"
	"facturation-service/internal/pkg/phi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Insert(ctx context.Context, run *models.ValidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) FindByID(ctx context.Context, runID string) (*models.ValidationRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ValidationRun), args.Error(1)
}

func (m *MockRunRepository) UpdateStatus(ctx context.Context, runID string, status models.RunStatus, errorMessage string) error {
	args := m.Called(ctx, runID, status, errorMessage)
	return args.Error(0)
}

func (m *MockRunRepository) UpdateProgress(ctx context.Context, runID string, progress int) error {
	args := m.Called(ctx, runID, progress)
	return args.Error(0)
}

func (m *MockRunRepository) MarkCompleted(ctx context.Context, runID string, findingCount int, skippedRules []string) error {
	args := m.Called(ctx, runID, findingCount, skippedRules)
	return args.Error(0)
}

type MockBillingRecordRepository struct {
	mock.Mock
}

func (m *MockBillingRecordRepository) InsertMany(ctx context.Context, records []models.BillingRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockBillingRecordRepository) FindByRunID(ctx context.Context, runID string) ([]models.BillingRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillingRecord), args.Error(1)
}

func (m *MockBillingRecordRepository) DeleteByRunID(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

type MockFindingRepository struct {
	mock.Mock
}

func (m *MockFindingRepository) InsertMany(ctx context.Context, findings []models.Finding) error {
	args := m.Called(ctx, findings)
	return args.Error(0)
}

func (m *MockFindingRepository) FindByRunID(ctx context.Context, runID string) ([]models.Finding, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Finding), args.Error(1)
}

func (m *MockFindingRepository) DeleteByRunID(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

type MockRuleUsecase struct {
	mock.Mock
}

func (m *MockRuleUsecase) LoadEnabledRules(ctx context.Context) ([]models.RuleDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RuleDefinition), args.Error(1)
}

func (m *MockRuleUsecase) ListRules(ctx context.Context) ([]models.RuleDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RuleDefinition), args.Error(1)
}

type MockReferenceUsecase struct {
	mock.Mock
}

func (m *MockReferenceUsecase) BuildReferenceSet(ctx context.Context) (models.ReferenceSet, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.ReferenceSet), args.Error(1)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) UploadObject(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectName, data, contentType)
	return args.String(0), args.Error(1)
}

type usecaseMocks struct {
	runRepo     *MockRunRepository
	recordRepo  *MockBillingRecordRepository
	findingRepo *MockFindingRepository
	ruleUsecase *MockRuleUsecase
	refUsecase  *MockReferenceUsecase
	storage     *MockStorageService
}

func newTestUsecase() (*runUsecase, *usecaseMocks) {
	mocks := &usecaseMocks{
		runRepo:     new(MockRunRepository),
		recordRepo:  new(MockBillingRecordRepository),
		findingRepo: new(MockFindingRepository),
		ruleUsecase: new(MockRuleUsecase),
		refUsecase:  new(MockReferenceUsecase),
		storage:     new(MockStorageService),
	}
	internalConfig := &config.InternalConfig{
		Phi:    config.Phi{RedactByDefault: true},
		Engine: config.Engine{RunTimeoutInSeconds: 30, ProgressWritesPerSecond: 100},
		Export: config.Export{BucketName: "validation-exports"},
	}
	uc := &runUsecase{
		RunRepository:     mocks.runRepo,
		RecordRepository:  mocks.recordRepo,
		FindingRepository: mocks.findingRepo,
		RuleUsecase:       mocks.ruleUsecase,
		ReferenceUsecase:  mocks.refUsecase,
		Dispatcher:        validation.NewDispatcher(zap.NewNop()),
		Storage:           mocks.storage,
		InternalConfig:    internalConfig,
		Log:               zap.NewNop(),
		progressLimiter:   rate.NewLimiter(rate.Limit(100), 100),
	}
	return uc, mocks
}

func pendingRun(runID string) *models.ValidationRun {
	return &models.ValidationRun{
		ID:          runID,
		Status:      models.RunStatusPending,
		RecordCount: 1,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func testBillingRecords(runID string) []models.BillingRecord {
	return []models.BillingRecord{
		{
			ID:           "rec-1",
			RunID:        runID,
			RecordNumber: 1,
			Facture:      "F-1",
			IDRamq:       "RAMQ-1",
			DateService:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Code:         "15820",
			DoctorInfo:   "doc-1",
			Patient:      "patient-a",
		},
	}
}

func requirementRule() models.RuleDefinition {
	rule := models.RuleDefinition{
		ID:           "rule-requirement",
		Category:     models.CategoryRequirement,
		Enabled:      true,
		Severity:     models.SeverityError,
		RawCondition: []byte(`{"code":"15820","requiredContexts":["ICEP"]}`),
	}
	if err := rule.DecodeCondition(); err != nil {
		panic(err)
	}
	return rule
}

func TestProcessRun(t *testing.T) {
	t.Run("completed run persists findings and marks completion", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-1"

		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(pendingRun(runID), nil)
		mocks.runRepo.On("UpdateStatus", mock.Anything, runID, models.RunStatusProcessing, "").Return(nil)
		mocks.runRepo.On("UpdateProgress", mock.Anything, runID, mock.Anything).Return(nil)
		mocks.recordRepo.On("FindByRunID", mock.Anything, runID).Return(testBillingRecords(runID), nil)
		mocks.ruleUsecase.On("LoadEnabledRules", mock.Anything).Return([]models.RuleDefinition{requirementRule()}, nil)
		mocks.refUsecase.On("BuildReferenceSet", mock.Anything).Return(models.ReferenceSet{}, nil)
		mocks.findingRepo.On("InsertMany", mock.Anything, mock.MatchedBy(func(findings []models.Finding) bool {
			return len(findings) == 1 && findings[0].RunID == runID && findings[0].ID != ""
		})).Return(nil)
		mocks.runRepo.On("MarkCompleted", mock.Anything, runID, 1, []string(nil)).Return(nil)

		err := uc.ProcessRun(context.Background(), runID)
		assert.NoError(t, err)
		mocks.runRepo.AssertExpectations(t)
		mocks.findingRepo.AssertExpectations(t)
	})

	t.Run("handler failure degrades to partial results", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-2"
		broken := models.RuleDefinition{ID: "rule-broken", Category: models.CategoryOfficeFee, Enabled: true}

		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(pendingRun(runID), nil)
		mocks.runRepo.On("UpdateStatus", mock.Anything, runID, models.RunStatusProcessing, "").Return(nil)
		mocks.runRepo.On("UpdateProgress", mock.Anything, runID, mock.Anything).Return(nil)
		mocks.recordRepo.On("FindByRunID", mock.Anything, runID).Return(testBillingRecords(runID), nil)
		mocks.ruleUsecase.On("LoadEnabledRules", mock.Anything).Return([]models.RuleDefinition{broken, requirementRule()}, nil)
		mocks.refUsecase.On("BuildReferenceSet", mock.Anything).Return(models.ReferenceSet{}, nil)
		mocks.findingRepo.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
		mocks.runRepo.On("MarkCompleted", mock.Anything, runID, 1, []string{"rule-broken"}).Return(nil)

		err := uc.ProcessRun(context.Background(), runID)
		assert.NoError(t, err)
		mocks.runRepo.AssertExpectations(t)
	})

	t.Run("every rule failing marks the run failed", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-5"
		brokenA := models.RuleDefinition{ID: "rule-broken-a", Category: models.CategoryOfficeFee, Enabled: true}
		brokenB := models.RuleDefinition{ID: "rule-broken-b", Category: models.CategoryOfficeFee, Enabled: true}

		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(pendingRun(runID), nil)
		mocks.runRepo.On("UpdateStatus", mock.Anything, runID, models.RunStatusProcessing, "").Return(nil)
		mocks.runRepo.On("UpdateProgress", mock.Anything, runID, mock.Anything).Return(nil)
		mocks.recordRepo.On("FindByRunID", mock.Anything, runID).Return(testBillingRecords(runID), nil)
		mocks.ruleUsecase.On("LoadEnabledRules", mock.Anything).Return([]models.RuleDefinition{brokenA, brokenB}, nil)
		mocks.refUsecase.On("BuildReferenceSet", mock.Anything).Return(models.ReferenceSet{}, nil)
		mocks.runRepo.On("UpdateStatus", mock.Anything, runID, models.RunStatusFailed, mock.Anything).Return(nil)

		err := uc.ProcessRun(context.Background(), runID)
		assert.Error(t, err)
		mocks.runRepo.AssertCalled(t, "UpdateStatus", mock.Anything, runID, models.RunStatusFailed, mock.Anything)
		mocks.runRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mocks.findingRepo.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
	})

	t.Run("rule load failure marks the run failed", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-3"

		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(pendingRun(runID), nil)
		mocks.runRepo.On("UpdateStatus", mock.Anything, runID, models.RunStatusProcessing, "").Return(nil)
		mocks.runRepo.On("UpdateProgress", mock.Anything, runID, mock.Anything).Return(nil)
		mocks.recordRepo.On("FindByRunID", mock.Anything, runID).Return(testBillingRecords(runID), nil)
		mocks.ruleUsecase.On("LoadEnabledRules", mock.Anything).Return(nil, exceptions.ErrMongoDBFindDocument(assert.AnError))
		mocks.runRepo.On("UpdateStatus", mock.Anything, runID, models.RunStatusFailed, mock.Anything).Return(nil)

		err := uc.ProcessRun(context.Background(), runID)
		assert.Error(t, err)
		mocks.runRepo.AssertExpectations(t)
	})

	t.Run("missing run is an error", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		mocks.runRepo.On("FindByID", mock.Anything, "missing").Return(nil, nil)

		err := uc.ProcessRun(context.Background(), "missing")
		assert.Error(t, err)
	})

	t.Run("terminal run is left untouched", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		done := pendingRun("run-4")
		done.Status = models.RunStatusCompleted
		mocks.runRepo.On("FindByID", mock.Anything, "run-4").Return(done, nil)

		err := uc.ProcessRun(context.Background(), "run-4")
		assert.NoError(t, err)
		mocks.runRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetFindings(t *testing.T) {
	findingWithPHI := func(runID string) []models.Finding {
		return []models.Finding{{
			ID:     "f-1",
			RunID:  runID,
			RuleID: "rule-1",
			RuleData: map[string]interface{}{
				"patient": "LACM12345678",
				"doctor":  "doc-1",
				"idRamq":  "RAMQ-1",
			},
		}}
	}

	t.Run("no preference follows the configured default and redacts", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-1"
		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(pendingRun(runID), nil)
		mocks.findingRepo.On("FindByRunID", mock.Anything, runID).Return(findingWithPHI(runID), nil)

		findings, err := uc.GetFindings(context.Background(), runID, nil)
		assert.NoError(t, err)
		assert.Len(t, findings, 1)
		assert.NotEqual(t, "LACM12345678", findings[0].RuleData["patient"])
		assert.Equal(t, phi.DoctorMarker, findings[0].RuleData["doctor"])
		assert.Equal(t, "RAMQ-1", findings[0].RuleData["idRamq"])
	})

	t.Run("explicit false disables redaction", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-1"
		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(pendingRun(runID), nil)
		mocks.findingRepo.On("FindByRunID", mock.Anything, runID).Return(findingWithPHI(runID), nil)

		noRedact := false
		findings, err := uc.GetFindings(context.Background(), runID, &noRedact)
		assert.NoError(t, err)
		assert.Equal(t, "LACM12345678", findings[0].RuleData["patient"])
	})

	t.Run("unknown run is an error", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		mocks.runRepo.On("FindByID", mock.Anything, "missing").Return(nil, nil)

		_, err := uc.GetFindings(context.Background(), "missing", nil)
		assert.Error(t, err)
	})
}

func TestGetRecords(t *testing.T) {
	t.Run("records are redacted by default", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-1"
		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(pendingRun(runID), nil)
		mocks.recordRepo.On("FindByRunID", mock.Anything, runID).Return(testBillingRecords(runID), nil)

		records, err := uc.GetRecords(context.Background(), runID, nil)
		assert.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, phi.DoctorMarker, records[0].DoctorInfo)
		assert.NotEqual(t, "patient-a", records[0].Patient)
		assert.Equal(t, "RAMQ-1", records[0].IDRamq)
		assert.Equal(t, "F-1", records[0].Facture)
	})
}

func TestExportFindings(t *testing.T) {
	t.Run("export of a completed run is always redacted", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-1"
		completed := pendingRun(runID)
		completed.Status = models.RunStatusCompleted

		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(completed, nil)
		mocks.findingRepo.On("FindByRunID", mock.Anything, runID).Return([]models.Finding{{
			ID:       "f-1",
			RunID:    runID,
			RuleData: map[string]interface{}{"patient": "LACM12345678"},
		}}, nil)
		mocks.storage.On("UploadObject", mock.Anything, mock.Anything, mock.MatchedBy(func(data []byte) bool {
			return !bytes.Contains(data, []byte("LACM12345678"))
		}), "application/json").Return("runs/run-1/findings.json", nil)

		response, err := uc.ExportFindings(context.Background(), runID)
		assert.NoError(t, err)
		assert.Equal(t, runID, response.RunID)
		assert.Equal(t, "validation-exports", response.Bucket)
		assert.Equal(t, 1, response.FindingCount)
		mocks.storage.AssertExpectations(t)
	})

	t.Run("run still processing cannot be exported", func(t *testing.T) {
		uc, mocks := newTestUsecase()
		runID := "run-1"
		processing := pendingRun(runID)
		processing.Status = models.RunStatusProcessing
		mocks.runRepo.On("FindByID", mock.Anything, runID).Return(processing, nil)

		_, err := uc.ExportFindings(context.Background(), runID)
		assert.Error(t, err)
		mocks.storage.AssertNotCalled(t, "UploadObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
