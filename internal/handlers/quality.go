package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/middleware"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/validation"
)

// listQuality returns quality checkpoints visible to the caller
func (r *Router) listQuality(w http.ResponseWriter, req *http.Request) {
	db := scopeKoperasi(r.db.DB, req)
	if batch := req.URL.Query().Get("batch_id"); batch != "" {
		db = db.Where("batch_id = ?", batch)
	}

	var list []models.QualityCheckpoint
	if err := db.Order("tanggal DESC").Find(&list).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch quality checkpoints")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getQuality returns a single quality checkpoint
func (r *Router) getQuality(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var qc models.QualityCheckpoint
	if err := r.db.First(&qc, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Quality checkpoint tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, qc.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}
	respondJSON(w, http.StatusOK, qc)
}

// createQuality records a genuine inspection result for a batch
func (r *Router) createQuality(w http.ResponseWriter, req *http.Request) {
	var qc models.QualityCheckpoint
	if err := json.NewDecoder(req.Body).Decode(&qc); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var v validation.Errors
	if qc.KoperasiID == 0 {
		v.Add("koperasi_id", "koperasi_id wajib diisi")
	}
	v.Require("batch_id", qc.BatchID)
	v.Require("stage", qc.Stage)
	v.OneOf("stage", qc.Stage,
		models.CheckpointHarvest, models.CheckpointProcessing, models.CheckpointStorage)
	v.OneOf("result", qc.Result, models.CheckResultPassed, models.CheckResultFailed)
	if v.HasErrors() {
		respondValidationErrors(w, &v)
		return
	}
	if !canAccessKoperasi(req, qc.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	qc.ID = uuid.NewString()
	if qc.Result == "" {
		qc.Result = models.CheckResultPassed
	}
	if claims := middleware.ClaimsFrom(req.Context()); claims != nil {
		qc.CreatedBy = claims.UserID
	}

	if err := r.db.Create(&qc).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create quality checkpoint")
		return
	}
	respondJSON(w, http.StatusCreated, qc)
}

// deleteQuality soft-deletes a quality checkpoint
func (r *Router) deleteQuality(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var qc models.QualityCheckpoint
	if err := r.db.First(&qc, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Quality checkpoint tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, qc.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := r.db.Delete(&models.QualityCheckpoint{}, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete quality checkpoint")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Quality checkpoint deleted successfully",
	})
}
