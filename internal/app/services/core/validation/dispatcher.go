package validation

import (
	"context"
	"fmt"

	"facturation-service/internal/app/models"
	"facturation-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// Dispatcher routes every enabled rule of a run to the handler registered for
// its category and merges the findings into one ordered collection. Findings
// appear in input rule order, then in handler-internal order, so two
// invocations over the same input produce identical output.
type Dispatcher struct {
	Log      *zap.Logger
	registry map[models.RuleCategory]HandlerFunc
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Log:      logger,
		registry: NewHandlerRegistry(),
	}
}

// Result is the outcome of dispatching one run's rule set.
type Result struct {
	Findings []models.Finding
	// SkippedRules lists rule ids whose handler returned an error or panicked.
	// Their findings are absent; the run itself continues.
	SkippedRules []string
	// EvaluatedRules counts the enabled rules that had a registered handler.
	// SkippedRules == EvaluatedRules means no rule produced a usable result.
	EvaluatedRules int
}

// Run evaluates every enabled rule against the record set. Handler failures
// are contained: the rule is logged (rule id and run id only, no PHI) and
// skipped. Cancellation is cooperative between rule invocations, never
// mid-handler.
func (d *Dispatcher) Run(ctx context.Context, records []models.BillingRecord, rules []models.RuleDefinition, refs models.ReferenceSet, runID string) (*Result, error) {
	result := &Result{}

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !rule.Enabled {
			continue
		}

		handler, ok := d.registry[rule.Category]
		if !ok {
			d.Log.Warn("Dispatcher.Run no handler registered for category, skipping rule",
				zap.String(constvars.LoggingRunIDKey, runID),
				zap.String(constvars.LoggingRuleIDKey, rule.ID),
				zap.String(constvars.LoggingRuleCategoryKey, string(rule.Category)),
			)
			continue
		}

		result.EvaluatedRules++
		findings, err := d.invoke(handler, rule, records, refs, runID)
		if err != nil {
			d.Log.Error("Dispatcher.Run handler failed, skipping rule",
				zap.String(constvars.LoggingRunIDKey, runID),
				zap.String(constvars.LoggingRuleIDKey, rule.ID),
				zap.String(constvars.LoggingRuleCategoryKey, string(rule.Category)),
				zap.Error(err),
			)
			result.SkippedRules = append(result.SkippedRules, rule.ID)
			continue
		}
		result.Findings = append(result.Findings, findings...)
	}

	return result, nil
}

// invoke shields the run from a panicking handler: a handler failure is a
// programming or data error scoped to one rule, not a reason to abort the run.
func (d *Dispatcher) invoke(handler HandlerFunc, rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) (findings []models.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(rule, records, refs, runID)
}
