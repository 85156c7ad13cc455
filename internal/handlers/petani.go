package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/validation"
)

// listPetani returns farmers visible to the caller, optionally filtered by koperasi
func (r *Router) listPetani(w http.ResponseWriter, req *http.Request) {
	db := scopeKoperasi(r.db.DB, req)
	if kid := req.URL.Query().Get("koperasi_id"); kid != "" {
		db = db.Where("koperasi_id = ?", kid)
	}

	var list []models.Petani
	if err := db.Find(&list).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch petani")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getPetani returns a single farmer with land plots
func (r *Router) getPetani(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid petani ID")
		return
	}

	var p models.Petani
	if err := r.db.Preload("Lahan").First(&p, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Petani tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, p.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// createPetani registers a new member farmer
func (r *Router) createPetani(w http.ResponseWriter, req *http.Request) {
	var p models.Petani
	if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var v validation.Errors
	v.Require("nama", p.Nama)
	if p.KoperasiID == 0 {
		v.Add("koperasi_id", "koperasi_id wajib diisi")
	}
	if v.HasErrors() {
		respondValidationErrors(w, &v)
		return
	}
	if !canAccessKoperasi(req, p.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	p.Aktif = true
	if err := r.db.Create(&p).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create petani")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// updatePetani updates an existing farmer
func (r *Router) updatePetani(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid petani ID")
		return
	}

	var p models.Petani
	if err := r.db.First(&p, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Petani tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, p.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	p.ID = uint(id)

	if err := r.db.Save(&p).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update petani")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// deletePetani soft-deletes a farmer
func (r *Router) deletePetani(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid petani ID")
		return
	}

	var p models.Petani
	if err := r.db.First(&p, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Petani tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, p.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := r.db.Delete(&models.Petani{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete petani")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Petani deleted successfully",
	})
}
