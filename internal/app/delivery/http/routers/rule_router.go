package routers

import (
	"facturation-service/internal/app/services/core/rules"

	"github.com/go-chi/chi/v5"
)

func attachRuleRoutes(router chi.Router, ruleController *rules.RuleController) {
	router.Get("/", ruleController.ListRules)
}
