package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/validation"
)

// listLahan returns land plots visible to the caller
func (r *Router) listLahan(w http.ResponseWriter, req *http.Request) {
	db := scopeKoperasi(r.db.DB, req)
	if pid := req.URL.Query().Get("petani_id"); pid != "" {
		db = db.Where("petani_id = ?", pid)
	}

	var list []models.Lahan
	if err := db.Preload("Petani").Find(&list).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch lahan")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getLahan returns a single land plot
func (r *Router) getLahan(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lahan ID")
		return
	}

	var lahan models.Lahan
	if err := r.db.Preload("Petani").Preload("Koperasi").First(&lahan, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Lahan tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}
	respondJSON(w, http.StatusOK, lahan)
}

// createLahan registers a land plot for a farmer
func (r *Router) createLahan(w http.ResponseWriter, req *http.Request) {
	var lahan models.Lahan
	if err := json.NewDecoder(req.Body).Decode(&lahan); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var v validation.Errors
	v.Require("nama", lahan.Nama)
	if lahan.KoperasiID == 0 {
		v.Add("koperasi_id", "koperasi_id wajib diisi")
	}
	if lahan.PetaniID == 0 {
		v.Add("petani_id", "petani_id wajib diisi")
	}
	if lahan.LuasHa < 0 {
		v.Add("luas_ha", "luas_ha tidak boleh negatif")
	}
	if v.HasErrors() {
		respondValidationErrors(w, &v)
		return
	}
	if !canAccessKoperasi(req, lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := r.db.Create(&lahan).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create lahan")
		return
	}
	respondJSON(w, http.StatusCreated, lahan)
}

// updateLahan updates an existing land plot
func (r *Router) updateLahan(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lahan ID")
		return
	}

	var lahan models.Lahan
	if err := r.db.First(&lahan, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Lahan tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := json.NewDecoder(req.Body).Decode(&lahan); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	lahan.ID = uint(id)

	if err := r.db.Save(&lahan).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update lahan")
		return
	}
	respondJSON(w, http.StatusOK, lahan)
}

// deleteLahan soft-deletes a land plot
func (r *Router) deleteLahan(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lahan ID")
		return
	}

	var lahan models.Lahan
	if err := r.db.First(&lahan, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Lahan tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := r.db.Delete(&models.Lahan{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete lahan")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Lahan deleted successfully",
	})
}
