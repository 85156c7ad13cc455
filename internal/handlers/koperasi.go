package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/middleware"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/validation"
)

// listKoperasi returns the cooperatives visible to the caller
func (r *Router) listKoperasi(w http.ResponseWriter, req *http.Request) {
	db := r.db.DB
	claims := middleware.ClaimsFrom(req.Context())
	if ids := claims.AccessibleKoperasiIDs(); ids != nil {
		db = db.Where("id IN ?", ids)
	}

	var list []models.Koperasi
	if err := db.Find(&list).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch koperasi")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getKoperasi returns a single cooperative with its farmers
func (r *Router) getKoperasi(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid koperasi ID")
		return
	}

	var kop models.Koperasi
	if err := r.db.Preload("Petani").First(&kop, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Koperasi tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, kop.ID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}
	respondJSON(w, http.StatusOK, kop)
}

// createKoperasi creates a new cooperative
func (r *Router) createKoperasi(w http.ResponseWriter, req *http.Request) {
	var kop models.Koperasi
	if err := json.NewDecoder(req.Body).Decode(&kop); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var v validation.Errors
	v.Require("nama", kop.Nama)
	if v.HasErrors() {
		respondValidationErrors(w, &v)
		return
	}

	kop.Aktif = true
	if err := r.db.Create(&kop).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create koperasi")
		return
	}
	respondJSON(w, http.StatusCreated, kop)
}

// updateKoperasi updates an existing cooperative
func (r *Router) updateKoperasi(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid koperasi ID")
		return
	}

	var kop models.Koperasi
	if err := r.db.First(&kop, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Koperasi tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, kop.ID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := json.NewDecoder(req.Body).Decode(&kop); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	kop.ID = uint(id)

	if err := r.db.Save(&kop).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update koperasi")
		return
	}
	respondJSON(w, http.StatusOK, kop)
}

// deleteKoperasi soft-deletes a cooperative
func (r *Router) deleteKoperasi(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid koperasi ID")
		return
	}
	if !canAccessKoperasi(req, uint(id)) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := r.db.Delete(&models.Koperasi{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete koperasi")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Koperasi deleted successfully",
	})
}
