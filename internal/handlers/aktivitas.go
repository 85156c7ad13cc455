package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/middleware"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/services/harvest"
	"github.com/kopitani-id/kopitrace/internal/validation"
)

// AktivitasRequest is the request body for creating/updating an activity.
// Dates arrive as ISO strings and are validated before parsing.
type AktivitasRequest struct {
	LahanID          uint     `json:"lahan_id"`
	JenisAktivitas   string   `json:"jenis_aktivitas"`
	TanggalAktivitas string   `json:"tanggal_aktivitas"`
	TanggalEstimasi  string   `json:"tanggal_estimasi"`
	JumlahEstimasiKg *float64 `json:"jumlah_estimasi_kg"`
	JumlahAktualKg   *float64 `json:"jumlah_aktual_kg"`
	JenisBibit       string   `json:"jenis_bibit"`
	Status           string   `json:"status"`
	Keterangan       string   `json:"keterangan"`
	CreatedFrom      string   `json:"created_from"`
}

// validate collects every violated field at once.
func (a *AktivitasRequest) validate() (*validation.Errors, time.Time, *time.Time) {
	var v validation.Errors
	if a.LahanID == 0 {
		v.Add("lahan_id", "lahan_id wajib diisi")
	}
	v.Require("jenis_aktivitas", a.JenisAktivitas)
	v.OneOf("jenis_aktivitas", a.JenisAktivitas,
		models.AktivitasTanam, models.AktivitasPanen, models.AktivitasEstimasiPanen)
	v.Require("tanggal_aktivitas", a.TanggalAktivitas)
	tanggal := v.Date("tanggal_aktivitas", a.TanggalAktivitas)
	v.OneOf("status", a.Status,
		models.StatusTerjadwal, models.StatusSelesai, models.StatusPending)
	v.NonNegative("jumlah_estimasi_kg", a.JumlahEstimasiKg)
	v.NonNegative("jumlah_aktual_kg", a.JumlahAktualKg)

	var estimasi *time.Time
	if a.TanggalEstimasi != "" {
		t := v.Date("tanggal_estimasi", a.TanggalEstimasi)
		if !t.IsZero() {
			estimasi = &t
		}
	}
	return &v, tanggal, estimasi
}

func (a *AktivitasRequest) apply(act *models.Aktivitas, tanggal time.Time, estimasi *time.Time) {
	act.LahanID = a.LahanID
	act.JenisAktivitas = a.JenisAktivitas
	act.TanggalAktivitas = tanggal
	act.TanggalEstimasi = estimasi
	act.JumlahEstimasiKg = a.JumlahEstimasiKg
	act.JumlahAktualKg = a.JumlahAktualKg
	act.JenisBibit = a.JenisBibit
	if a.Status != "" {
		act.Status = a.Status
	}
	act.Keterangan = a.Keterangan
	if a.CreatedFrom != "" {
		act.CreatedFrom = a.CreatedFrom
	}
}

// listAktivitas returns activities visible to the caller
func (r *Router) listAktivitas(w http.ResponseWriter, req *http.Request) {
	db := r.db.Model(&models.Aktivitas{}).
		Joins("JOIN lahan ON lahan.id = aktivitas.lahan_id")
	claims := middleware.ClaimsFrom(req.Context())
	if ids := claims.AccessibleKoperasiIDs(); ids != nil {
		db = db.Where("lahan.koperasi_id IN ?", ids)
	}
	q := req.URL.Query()
	if lid := q.Get("lahan_id"); lid != "" {
		db = db.Where("aktivitas.lahan_id = ?", lid)
	}
	if jenis := q.Get("jenis_aktivitas"); jenis != "" {
		db = db.Where("aktivitas.jenis_aktivitas = ?", jenis)
	}
	if status := q.Get("status"); status != "" {
		db = db.Where("aktivitas.status = ?", status)
	}

	var list []models.Aktivitas
	if err := db.Order("aktivitas.tanggal_aktivitas DESC").Find(&list).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch aktivitas")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getAktivitas returns a single activity
func (r *Router) getAktivitas(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid aktivitas ID")
		return
	}

	var act models.Aktivitas
	if err := r.db.Preload("Lahan.Petani").First(&act, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Aktivitas tidak ditemukan")
		return
	}
	if act.Lahan != nil && !canAccessKoperasi(req, act.Lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}
	respondJSON(w, http.StatusOK, act)
}

// createAktivitas records a farming activity. A completed harvest with a
// positive actual yield also materializes an inventory batch and a forward
// estimate in the same transaction.
func (r *Router) createAktivitas(w http.ResponseWriter, req *http.Request) {
	var body AktivitasRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	v, tanggal, estimasi := body.validate()
	if v.HasErrors() {
		respondValidationErrors(w, v)
		return
	}

	var lahan models.Lahan
	if err := r.db.First(&lahan, body.LahanID).Error; err != nil {
		respondError(w, http.StatusNotFound, "Lahan tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	act := models.Aktivitas{Status: models.StatusTerjadwal, CreatedFrom: models.OriginManual}
	body.apply(&act, tanggal, estimasi)
	if claims := middleware.ClaimsFrom(req.Context()); claims != nil {
		act.CreatedBy = claims.UserID
	}

	if _, err := r.pipeline.Create(&act); err != nil {
		if errors.Is(err, harvest.ErrLahanNotFound) {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create aktivitas: "+err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, act)
}

// updateAktivitas updates an activity, re-evaluating the harvest trigger
// against the previously stored status: only a transition into SELESAI fires
// the pipeline.
func (r *Router) updateAktivitas(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid aktivitas ID")
		return
	}

	var act models.Aktivitas
	if err := r.db.Preload("Lahan").First(&act, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Aktivitas tidak ditemukan")
		return
	}
	if act.Lahan != nil && !canAccessKoperasi(req, act.Lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}
	prevStatus := act.Status

	var body AktivitasRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	v, tanggal, estimasi := body.validate()
	if v.HasErrors() {
		respondValidationErrors(w, v)
		return
	}

	act.Lahan = nil
	body.apply(&act, tanggal, estimasi)

	if _, err := r.pipeline.Update(&act, prevStatus); err != nil {
		if errors.Is(err, harvest.ErrLahanNotFound) {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update aktivitas: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, act)
}

// deleteAktivitas soft-deletes an activity
func (r *Router) deleteAktivitas(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid aktivitas ID")
		return
	}

	var act models.Aktivitas
	if err := r.db.Preload("Lahan").First(&act, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Aktivitas tidak ditemukan")
		return
	}
	if act.Lahan != nil && !canAccessKoperasi(req, act.Lahan.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := r.db.Delete(&models.Aktivitas{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete aktivitas")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Aktivitas deleted successfully",
	})
}
