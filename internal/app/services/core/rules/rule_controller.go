package rules

import (
	"context"
	"net/http"
	"time"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/exceptions"
	"facturation-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type RuleController struct {
	Log         *zap.Logger
	RuleUsecase contracts.RuleUsecase
}

func NewRuleController(logger *zap.Logger, ruleUsecase contracts.RuleUsecase) *RuleController {
	return &RuleController{
		Log:         logger,
		RuleUsecase: ruleUsecase,
	}
}

func (ctrl *RuleController) ListRules(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.RuleUsecase.ListRules(ctx)
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetRulesSuccessMessage, result)
}
