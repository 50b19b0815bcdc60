package runs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"facturation-service/internal/app/config"
	"facturation-service/internal/app/contracts"
	"facturation-service/internal/app/models"
	"facturation-service/internal/app/services/core/validation"
	"facturation-service/internal/app/services/shared/runqueue"
	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/dto/requests"
	"facturation-service/internal/pkg/dto/responses"
	"facturation-service/internal/pkg/exceptions"
	"facturation-service/internal/pkg/phi"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type runUsecase struct {
	RunRepository     contracts.RunRepository
	RecordRepository  contracts.BillingRecordRepository
	FindingRepository contracts.FindingRepository
	RuleUsecase       contracts.RuleUsecase
	ReferenceUsecase  contracts.ReferenceUsecase
	Dispatcher        *validation.Dispatcher
	Queue             *runqueue.Service
	Storage           contracts.StorageService
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
	progressLimiter   *rate.Limiter
}

var (
	runUsecaseInstance contracts.RunUsecase
	onceRunUsecase     sync.Once
)

func NewRunUsecase(
	runRepository contracts.RunRepository,
	recordRepository contracts.BillingRecordRepository,
	findingRepository contracts.FindingRepository,
	ruleUsecase contracts.RuleUsecase,
	referenceUsecase contracts.ReferenceUsecase,
	dispatcher *validation.Dispatcher,
	queue *runqueue.Service,
	storage contracts.StorageService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.RunUsecase {
	onceRunUsecase.Do(func() {
		writesPerSecond := internalConfig.Engine.ProgressWritesPerSecond
		if writesPerSecond <= 0 {
			writesPerSecond = 1
		}
		runUsecaseInstance = &runUsecase{
			RunRepository:     runRepository,
			RecordRepository:  recordRepository,
			FindingRepository: findingRepository,
			RuleUsecase:       ruleUsecase,
			ReferenceUsecase:  referenceUsecase,
			Dispatcher:        dispatcher,
			Queue:             queue,
			Storage:           storage,
			InternalConfig:    internalConfig,
			Log:               logger,
			progressLimiter:   rate.NewLimiter(rate.Limit(writesPerSecond), writesPerSecond),
		}
	})
	return runUsecaseInstance
}

// SubmitRun persists the batch and parks the run on the queue for the worker.
// The caller gets the run id back immediately; evaluation happens out of band.
func (uc *runUsecase) SubmitRun(ctx context.Context, request *requests.SubmitRun) (*responses.SubmitRun, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("runUsecase.SubmitRun called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingRecordsCountKey, len(request.Records)),
	)

	if len(request.Records) == 0 {
		return nil, exceptions.ErrEmptyRecordBatch(fmt.Errorf("record batch is empty"))
	}

	runID := uuid.NewString()
	now := time.Now().UTC()

	records := make([]models.BillingRecord, 0, len(request.Records))
	for _, row := range request.Records {
		dateService, err := time.Parse("2006-01-02", row.DateService)
		if err != nil {
			return nil, exceptions.ErrInputValidation(err)
		}
		records = append(records, models.BillingRecord{
			ID:                  uuid.NewString(),
			RunID:               runID,
			RecordNumber:        row.RecordNumber,
			Facture:             row.Facture,
			IDRamq:              row.IDRamq,
			DateService:         dateService,
			Debut:               row.Debut,
			Fin:                 row.Fin,
			LieuPratique:        row.LieuPratique,
			SecteurActivite:     row.SecteurActivite,
			Diagnostic:          row.Diagnostic,
			Code:                row.Code,
			Unites:              row.Unites,
			Role:                row.Role,
			ElementContexte:     row.ElementContexte,
			MontantPreliminaire: row.MontantPreliminaire,
			MontantPaye:         row.MontantPaye,
			DoctorInfo:          row.DoctorInfo,
			Patient:             row.Patient,
		})
	}

	run := &models.ValidationRun{
		ID:          runID,
		Status:      models.RunStatusPending,
		Progress:    0,
		RecordCount: len(records),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.RunRepository.Insert(ctx, run); err != nil {
		uc.Log.Error("runUsecase.SubmitRun error inserting run",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if err := uc.RecordRepository.InsertMany(ctx, records); err != nil {
		uc.Log.Error("runUsecase.SubmitRun error inserting billing records",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRunIDKey, runID),
			zap.Error(err),
		)
		return nil, err
	}

	message := runqueue.RunQueueMessage{ID: uuid.NewString(), RunID: runID}
	if err := uc.Queue.Enqueue(ctx, message); err != nil {
		uc.Log.Error("runUsecase.SubmitRun error enqueueing run",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRunIDKey, runID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("runUsecase.SubmitRun succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRunIDKey, runID),
	)
	return &responses.SubmitRun{
		RunID:       runID,
		Status:      models.RunStatusPending,
		RecordCount: len(records),
	}, nil
}

// ProcessRun drives one run through the state machine:
// pending -> processing -> {completed | failed}. Handler failures degrade to
// partial results; infrastructure failures and timeouts fail the run.
func (uc *runUsecase) ProcessRun(ctx context.Context, runID string) error {
	uc.Log.Info("runUsecase.ProcessRun called",
		zap.String(constvars.LoggingRunIDKey, runID),
	)

	timeout := time.Duration(uc.InternalConfig.Engine.RunTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run, err := uc.RunRepository.FindByID(runCtx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return exceptions.ErrRunNotFound(fmt.Errorf("run %s does not exist", runID))
	}
	if run.Terminal() {
		uc.Log.Info("runUsecase.ProcessRun run already terminal, nothing to do",
			zap.String(constvars.LoggingRunIDKey, runID),
			zap.String(constvars.LoggingStatusKey, string(run.Status)),
		)
		return nil
	}

	if err := uc.RunRepository.UpdateStatus(runCtx, runID, models.RunStatusProcessing, ""); err != nil {
		return err
	}

	if err := uc.evaluate(runCtx, runID); err != nil {
		message := err.Error()
		if runCtx.Err() == context.DeadlineExceeded {
			message = "run timed out"
		}
		// Failure writes go through the parent context; the run context may
		// already be dead.
		if updateErr := uc.RunRepository.UpdateStatus(ctx, runID, models.RunStatusFailed, message); updateErr != nil {
			uc.Log.Error("runUsecase.ProcessRun error marking run failed",
				zap.String(constvars.LoggingRunIDKey, runID),
				zap.Error(updateErr),
			)
		}
		return err
	}
	return nil
}

func (uc *runUsecase) evaluate(ctx context.Context, runID string) error {
	records, err := uc.RecordRepository.FindByRunID(ctx, runID)
	if err != nil {
		return err
	}
	uc.writeProgress(ctx, runID, models.ProgressRecordsPersisted)

	rules, err := uc.RuleUsecase.LoadEnabledRules(ctx)
	if err != nil {
		return err
	}
	uc.writeProgress(ctx, runID, models.ProgressRulesLoaded)

	refs, err := uc.ReferenceUsecase.BuildReferenceSet(ctx)
	if err != nil {
		return err
	}

	result, err := uc.Dispatcher.Run(ctx, records, rules, refs, runID)
	if err != nil {
		return err
	}
	// Handler failures degrade to partial results, but only while at least one
	// rule still produced a usable result. All rules failing fails the run.
	if result.EvaluatedRules > 0 && len(result.SkippedRules) == result.EvaluatedRules {
		return exceptions.ErrAllRulesFailed(fmt.Errorf("all %d evaluated rules failed for run %s", result.EvaluatedRules, runID))
	}
	uc.writeProgress(ctx, runID, models.ProgressRulesEvaluated)

	now := time.Now().UTC()
	for i := range result.Findings {
		result.Findings[i].ID = uuid.NewString()
		result.Findings[i].RunID = runID
		result.Findings[i].CreatedAt = now
	}
	if err := uc.FindingRepository.InsertMany(ctx, result.Findings); err != nil {
		return err
	}

	if err := uc.RunRepository.MarkCompleted(ctx, runID, len(result.Findings), result.SkippedRules); err != nil {
		return err
	}

	uc.Log.Info("runUsecase.evaluate run completed",
		zap.String(constvars.LoggingRunIDKey, runID),
		zap.Int(constvars.LoggingFindingsCountKey, len(result.Findings)),
		zap.Int(constvars.LoggingRulesCountKey, len(rules)),
	)
	return nil
}

// writeProgress persists a checkpoint, best effort. Writes are throttled so a
// burst of checkpoints on large runs does not hammer mongo; progress is
// monotonic in the repository, so a dropped write is harmless.
func (uc *runUsecase) writeProgress(ctx context.Context, runID string, progress int) {
	if progress < models.ProgressResultsPersisted && !uc.progressLimiter.Allow() {
		return
	}
	if err := uc.RunRepository.UpdateProgress(ctx, runID, progress); err != nil {
		uc.Log.Error("runUsecase.writeProgress error persisting progress",
			zap.String(constvars.LoggingRunIDKey, runID),
			zap.Int(constvars.LoggingProgressKey, progress),
			zap.Error(err),
		)
		return
	}
	uc.Log.Info("runUsecase.writeProgress checkpoint",
		zap.String(constvars.LoggingRunIDKey, runID),
		zap.Int(constvars.LoggingProgressKey, progress),
	)
}

func (uc *runUsecase) GetRun(ctx context.Context, runID string) (*responses.Run, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("runUsecase.GetRun called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRunIDKey, runID),
	)

	run, err := uc.RunRepository.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, exceptions.ErrRunNotFound(fmt.Errorf("run %s does not exist", runID))
	}

	return &responses.Run{
		RunID:          run.ID,
		Status:         run.Status,
		Progress:       run.Progress,
		RecordCount:    run.RecordCount,
		FindingCount:   run.FindingCount,
		SkippedRules:   run.SkippedRules,
		PartialResults: run.PartialResults,
		ErrorMessage:   run.ErrorMessage,
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      run.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (uc *runUsecase) GetFindings(ctx context.Context, runID string, redact *bool) ([]models.Finding, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("runUsecase.GetFindings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRunIDKey, runID),
	)

	run, err := uc.RunRepository.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, exceptions.ErrRunNotFound(fmt.Errorf("run %s does not exist", runID))
	}

	findings, err := uc.FindingRepository.FindByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	enabled := uc.redactionEnabled(redact)
	for i := range findings {
		findings[i] = phi.RedactFinding(findings[i], enabled)
	}
	return findings, nil
}

func (uc *runUsecase) GetRecords(ctx context.Context, runID string, redact *bool) ([]models.BillingRecord, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("runUsecase.GetRecords called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRunIDKey, runID),
	)

	run, err := uc.RunRepository.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, exceptions.ErrRunNotFound(fmt.Errorf("run %s does not exist", runID))
	}

	records, err := uc.RecordRepository.FindByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	enabled := uc.redactionEnabled(redact)
	for i := range records {
		records[i] = phi.RedactBillingRecord(records[i], enabled)
	}
	return records, nil
}

// ExportFindings writes the run's findings to object storage. Export is an
// outbound channel, so the payload is always redacted regardless of caller
// preference.
func (uc *runUsecase) ExportFindings(ctx context.Context, runID string) (*responses.Export, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("runUsecase.ExportFindings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRunIDKey, runID),
	)

	run, err := uc.RunRepository.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, exceptions.ErrRunNotFound(fmt.Errorf("run %s does not exist", runID))
	}
	if !run.Terminal() {
		return nil, exceptions.ErrRunNotFinished(fmt.Errorf("run %s is %s", runID, run.Status))
	}

	findings, err := uc.FindingRepository.FindByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	for i := range findings {
		findings[i] = phi.RedactFinding(findings[i], true)
	}

	payload, err := json.Marshal(findings)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	objectName := fmt.Sprintf("runs/%s/findings-%s.json", runID, time.Now().UTC().Format("20060102T150405Z"))
	uploadedName, err := uc.Storage.UploadObject(ctx, objectName, payload, constvars.MIMEApplicationJSON)
	if err != nil {
		uc.Log.Error("runUsecase.ExportFindings error uploading export object",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRunIDKey, runID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("runUsecase.ExportFindings succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRunIDKey, runID),
		zap.String(constvars.LoggingObjectNameKey, uploadedName),
	)
	return &responses.Export{
		RunID:        runID,
		ObjectName:   uploadedName,
		Bucket:       uc.InternalConfig.Export.BucketName,
		FindingCount: len(findings),
	}, nil
}

// redactionEnabled resolves the caller preference against the configured
// default. Only an explicit false turns redaction off.
func (uc *runUsecase) redactionEnabled(preference *bool) bool {
	if preference == nil {
		return uc.InternalConfig.Phi.RedactByDefault
	}
	return phi.ShouldRedactPHI(preference)
}
