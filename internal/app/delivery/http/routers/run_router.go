package routers

import (
	"facturation-service/internal/app/services/core/runs"

	"github.com/go-chi/chi/v5"
)

func attachRunRoutes(router chi.Router, runController *runs.RunController) {
	router.Post("/", runController.SubmitRun)
	router.Get("/{run_id}", runController.GetRun)
	router.Get("/{run_id}/results", runController.GetFindings)
	router.Get("/{run_id}/records", runController.GetRecords)
	router.Post("/{run_id}/export", runController.ExportFindings)
}
