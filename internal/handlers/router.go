package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/buildinfo"
	"github.com/kopitani-id/kopitrace/internal/config"
	"github.com/kopitani-id/kopitrace/internal/database"
	"github.com/kopitani-id/kopitrace/internal/middleware"
	"github.com/kopitani-id/kopitrace/internal/services/harvest"
	"github.com/kopitani-id/kopitrace/internal/services/lineage"
	"github.com/kopitani-id/kopitrace/internal/services/marketplace"
	"github.com/kopitani-id/kopitrace/internal/services/report"
	"github.com/kopitani-id/kopitrace/internal/validation"
	ws "github.com/kopitani-id/kopitrace/internal/websocket"
)

// Router wraps the mux router, database and domain services
type Router struct {
	*mux.Router
	db       *database.DB
	cfg      *config.Config
	pipeline *harvest.Pipeline
	lineage  *lineage.Engine
	reports  *report.Generator
	market   *marketplace.Service
	hub      *ws.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, hub *ws.Hub) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		db:       db,
		cfg:      cfg,
		pipeline: harvest.NewPipeline(db.DB, hub),
		lineage:  lineage.NewEngine(db.DB),
		reports:  report.NewGenerator(db.DB),
		market:   marketplace.NewService(db.DB, cfg.Marketplace),
		hub:      hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes (public)
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/refresh", r.refresh).Methods("POST")

	authed := middleware.Auth(cfg.JWTSecret)
	write := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireWriteRole(h))
	}
	read := func(h http.HandlerFunc) http.Handler {
		return authed(h)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Koperasi
	api.Handle("/koperasi", read(r.listKoperasi)).Methods("GET")
	api.Handle("/koperasi", write(r.createKoperasi)).Methods("POST")
	api.Handle("/koperasi/{id}", read(r.getKoperasi)).Methods("GET")
	api.Handle("/koperasi/{id}", write(r.updateKoperasi)).Methods("PUT")
	api.Handle("/koperasi/{id}", write(r.deleteKoperasi)).Methods("DELETE")

	// Petani
	api.Handle("/petani", read(r.listPetani)).Methods("GET")
	api.Handle("/petani", write(r.createPetani)).Methods("POST")
	api.Handle("/petani/{id}", read(r.getPetani)).Methods("GET")
	api.Handle("/petani/{id}", write(r.updatePetani)).Methods("PUT")
	api.Handle("/petani/{id}", write(r.deletePetani)).Methods("DELETE")

	// Lahan
	api.Handle("/lahan", read(r.listLahan)).Methods("GET")
	api.Handle("/lahan", write(r.createLahan)).Methods("POST")
	api.Handle("/lahan/{id}", read(r.getLahan)).Methods("GET")
	api.Handle("/lahan/{id}", write(r.updateLahan)).Methods("PUT")
	api.Handle("/lahan/{id}", write(r.deleteLahan)).Methods("DELETE")

	// Aktivitas (harvest pipeline fires on create/update)
	api.Handle("/aktivitas", read(r.listAktivitas)).Methods("GET")
	api.Handle("/aktivitas", write(r.createAktivitas)).Methods("POST")
	api.Handle("/aktivitas/{id}", read(r.getAktivitas)).Methods("GET")
	api.Handle("/aktivitas/{id}", write(r.updateAktivitas)).Methods("PUT")
	api.Handle("/aktivitas/{id}", write(r.deleteAktivitas)).Methods("DELETE")

	// Inventory + transactions
	api.Handle("/inventory", read(r.listInventory)).Methods("GET")
	api.Handle("/inventory", write(r.createInventory)).Methods("POST")
	api.Handle("/inventory/transaksi", read(r.listTransaksi)).Methods("GET")
	api.Handle("/inventory/transaksi", write(r.createTransaksi)).Methods("POST")

	// Batch traceability (reads, any authenticated role)
	api.Handle("/inventory/traceability/batch/{batchId}", read(r.getLineageTree)).Methods("GET")
	api.Handle("/inventory/traceability/timeline/{batchId}", read(r.getTimeline)).Methods("GET")
	api.Handle("/inventory/traceability/report/{batchId}", read(r.getTraceabilityReport)).Methods("GET")

	// Inventory entry detail registered after the traceability prefix routes
	api.Handle("/inventory/{id}", read(r.getInventory)).Methods("GET")
	api.Handle("/inventory/{id}", write(r.updateInventory)).Methods("PUT")
	api.Handle("/inventory/{id}", write(r.deleteInventory)).Methods("DELETE")

	// Quality checkpoints
	api.Handle("/quality", read(r.listQuality)).Methods("GET")
	api.Handle("/quality", write(r.createQuality)).Methods("POST")
	api.Handle("/quality/{id}", read(r.getQuality)).Methods("GET")
	api.Handle("/quality/{id}", write(r.deleteQuality)).Methods("DELETE")

	// Reports
	api.Handle("/laporan/dashboard", read(r.dashboard)).Methods("GET")

	// Marketplace sync
	api.Handle("/marketplace/status", read(r.marketplaceStatus)).Methods("GET")
	api.Handle("/marketplace/sync/{entryId}", write(r.marketplaceSync)).Methods("POST")

	// Live dashboard feed
	r.HandleFunc("/ws/feed", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(hub, w, req)
	})

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	body := map[string]interface{}{
		"status": "ok",
		"build":  buildinfo.Summary(),
	}
	if sqlDB, err := r.db.DB.DB(); err != nil || sqlDB.Ping() != nil {
		body["status"] = "degraded"
	}
	respondJSON(w, http.StatusOK, body)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondValidationErrors lists every violated field at once
func respondValidationErrors(w http.ResponseWriter, v *validation.Errors) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "Validasi gagal",
		"fields": v.Fields(),
	})
}
