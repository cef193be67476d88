package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jgu1lherme/crm-alternativa/internal/handlers"
	"github.com/jgu1lherme/crm-alternativa/internal/middleware"
	"github.com/jgu1lherme/crm-alternativa/internal/services"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

func NewRouter(service services.FeatureService, logger *utils.Logger, maxFileSize int64) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	featureHandler := handlers.NewFeatureHandler(service, logger, maxFileSize)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Feature endpoints
	api.HandleFunc("/invoices/rename", featureHandler.RenameInvoices).Methods(http.MethodPost)
	api.HandleFunc("/statements/ml", featureHandler.ParseStatement).Methods(http.MethodPost)
	api.HandleFunc("/ledger", featureHandler.ProcessLedger).Methods(http.MethodPost)
	api.HandleFunc("/crm/clients", featureHandler.ClientActivity).Methods(http.MethodPost)
	api.HandleFunc("/goals/cnpj", featureHandler.GoalProgress).Methods(http.MethodPost)
	api.HandleFunc("/convert/image", featureHandler.ConvertImage).Methods(http.MethodPost)

	// Downloads and session lifecycle
	api.HandleFunc("/artifacts/{id}", featureHandler.DownloadArtifact).Methods(http.MethodGet)
	api.HandleFunc("/session", featureHandler.ResetSession).Methods(http.MethodDelete)

	return r
}
