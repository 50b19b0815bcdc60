package runs

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/dto/requests"
	"facturation-service/internal/pkg/exceptions"
	"facturation-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type RunController struct {
	Log        *zap.Logger
	RunUsecase contracts.RunUsecase
}

func NewRunController(logger *zap.Logger, runUsecase contracts.RunUsecase) *RunController {
	return &RunController{
		Log:        logger,
		RunUsecase: runUsecase,
	}
}

func (ctrl *RunController) SubmitRun(w http.ResponseWriter, r *http.Request) {
	request := new(requests.SubmitRun)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	response, err := ctrl.RunUsecase.SubmitRun(ctx, request)
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.SubmitRunSuccessMessage, response)
}

func (ctrl *RunController) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, constvars.URLParamRunID)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.RunUsecase.GetRun(ctx, runID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetRunSuccessMessage, response)
}

func (ctrl *RunController) GetFindings(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, constvars.URLParamRunID)
	redact := parseRedactParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	findings, err := ctrl.RunUsecase.GetFindings(ctx, runID, redact)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetFindingsSuccessMessage, findings)
}

func (ctrl *RunController) GetRecords(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, constvars.URLParamRunID)
	redact := parseRedactParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := ctrl.RunUsecase.GetRecords(ctx, runID, redact)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetRecordsSuccessMessage, records)
}

func (ctrl *RunController) ExportFindings(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, constvars.URLParamRunID)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	response, err := ctrl.RunUsecase.ExportFindings(ctx, runID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ExportFindingsSuccessMessage, response)
}

// parseRedactParam reads the optional redact query parameter. Absent or
// unparsable values mean "no preference"; the usecase falls back to the
// configured default.
func parseRedactParam(r *http.Request) *bool {
	raw := r.URL.Query().Get("redact")
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}
