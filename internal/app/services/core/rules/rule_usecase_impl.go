package rules

import (
	"context"
	"sync"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/app/models"
	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

type ruleUsecase struct {
	RuleRepository contracts.RuleRepository
	Log            *zap.Logger
}

var (
	ruleUsecaseInstance contracts.RuleUsecase
	onceRuleUsecase     sync.Once
)

func NewRuleUsecase(
	ruleRepository contracts.RuleRepository,
	logger *zap.Logger,
) contracts.RuleUsecase {
	onceRuleUsecase.Do(func() {
		ruleUsecaseInstance = &ruleUsecase{
			RuleRepository: ruleRepository,
			Log:            logger,
		}
	})
	return ruleUsecaseInstance
}

// LoadEnabledRules fetches enabled rule definitions and decodes each raw
// condition payload into its category-typed form. A rule whose payload does
// not match its category shape fails the whole load; the caller decides
// whether that aborts the run.
func (uc *ruleUsecase) LoadEnabledRules(ctx context.Context) ([]models.RuleDefinition, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("ruleUsecase.LoadEnabledRules called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	rules, err := uc.RuleRepository.FindEnabled(ctx)
	if err != nil {
		uc.Log.Error("ruleUsecase.LoadEnabledRules error fetching rules from repository",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	for i := range rules {
		if err := rules[i].DecodeCondition(); err != nil {
			uc.Log.Error("ruleUsecase.LoadEnabledRules malformed rule condition",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRuleIDKey, rules[i].ID),
				zap.Error(err),
			)
			return nil, exceptions.ErrMalformedRuleCondition(err, rules[i].ID)
		}
	}

	uc.Log.Info("ruleUsecase.LoadEnabledRules succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingRulesCountKey, len(rules)),
	)
	return rules, nil
}

func (uc *ruleUsecase) ListRules(ctx context.Context) ([]models.RuleDefinition, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("ruleUsecase.ListRules called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	rules, err := uc.RuleRepository.FindAll(ctx)
	if err != nil {
		uc.Log.Error("ruleUsecase.ListRules error fetching rules from repository",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return rules, nil
}
