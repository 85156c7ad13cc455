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

// listInventory returns inventory entries visible to the caller
func (r *Router) listInventory(w http.ResponseWriter, req *http.Request) {
	db := scopeKoperasi(r.db.DB, req)
	q := req.URL.Query()
	if jenis := q.Get("jenis"); jenis != "" {
		db = db.Where("jenis = ?", jenis)
	}
	if batch := q.Get("batch_id"); batch != "" {
		db = db.Where("batch_id = ?", batch)
	}

	var list []models.InventoryEntry
	if err := db.Order("tanggal DESC, id DESC").Find(&list).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch inventory")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getInventory returns a single inventory entry
func (r *Router) getInventory(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid inventory ID")
		return
	}

	var entry models.InventoryEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Inventory entry tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, entry.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// InventoryRequest is the request body for a manual inventory movement.
// BatchID is caller-supplied here; pipeline-produced entries generate theirs.
type InventoryRequest struct {
	KoperasiID    uint     `json:"koperasi_id"`
	NamaItem      string   `json:"nama_item"`
	Jenis         string   `json:"jenis"`
	Tanggal       string   `json:"tanggal"`
	Jumlah        *float64 `json:"jumlah"`
	Satuan        string   `json:"satuan"`
	BatchID       string   `json:"batch_id"`
	ParentBatchID string   `json:"parent_batch_id"`
	Keterangan    string   `json:"keterangan"`
}

// createInventory records a manual inventory movement
func (r *Router) createInventory(w http.ResponseWriter, req *http.Request) {
	var body InventoryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var v validation.Errors
	if body.KoperasiID == 0 {
		v.Add("koperasi_id", "koperasi_id wajib diisi")
	}
	v.Require("nama_item", body.NamaItem)
	v.Require("jenis", body.Jenis)
	v.OneOf("jenis", body.Jenis, models.DirectionIn, models.DirectionOut)
	v.Require("tanggal", body.Tanggal)
	tanggal := v.Date("tanggal", body.Tanggal)
	if body.Jumlah == nil {
		v.Add("jumlah", "jumlah wajib diisi")
	}
	v.Positive("jumlah", body.Jumlah)
	if v.HasErrors() {
		respondValidationErrors(w, &v)
		return
	}
	if !canAccessKoperasi(req, body.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	satuan := body.Satuan
	if satuan == "" {
		satuan = "kg"
	}

	entry := models.InventoryEntry{
		KoperasiID:    body.KoperasiID,
		NamaItem:      body.NamaItem,
		Jenis:         body.Jenis,
		Tanggal:       tanggal,
		Jumlah:        *body.Jumlah,
		Satuan:        satuan,
		BatchID:       body.BatchID,
		ParentBatchID: body.ParentBatchID,
		Keterangan:    body.Keterangan,
	}
	if claims := middleware.ClaimsFrom(req.Context()); claims != nil {
		entry.CreatedBy = claims.UserID
	}

	if err := r.db.Create(&entry).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create inventory entry")
		return
	}

	r.hub.Publish("INVENTORY_CREATED", map[string]interface{}{
		"entryId": entry.ID,
		"batchId": entry.BatchID,
		"jenis":   entry.Jenis,
	})

	respondJSON(w, http.StatusCreated, entry)
}

// updateInventory edits a manual inventory movement. Pipeline-produced entries
// keep their source activity link.
func (r *Router) updateInventory(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid inventory ID")
		return
	}

	var entry models.InventoryEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Inventory entry tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, entry.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	var body InventoryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var v validation.Errors
	v.Require("nama_item", body.NamaItem)
	v.OneOf("jenis", body.Jenis, models.DirectionIn, models.DirectionOut)
	tanggal := v.Date("tanggal", body.Tanggal)
	v.Positive("jumlah", body.Jumlah)
	if v.HasErrors() {
		respondValidationErrors(w, &v)
		return
	}

	entry.NamaItem = body.NamaItem
	if body.Jenis != "" {
		entry.Jenis = body.Jenis
	}
	if !tanggal.IsZero() {
		entry.Tanggal = tanggal
	}
	if body.Jumlah != nil {
		entry.Jumlah = *body.Jumlah
	}
	if body.Satuan != "" {
		entry.Satuan = body.Satuan
	}
	entry.ParentBatchID = body.ParentBatchID
	entry.Keterangan = body.Keterangan

	if err := r.db.Save(&entry).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update inventory entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// deleteInventory soft-deletes an inventory entry
func (r *Router) deleteInventory(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid inventory ID")
		return
	}

	var entry models.InventoryEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Inventory entry tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, entry.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	if err := r.db.Delete(&models.InventoryEntry{}, id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete inventory entry")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Inventory entry deleted successfully",
	})
}

// listTransaksi returns inventory transactions visible to the caller
func (r *Router) listTransaksi(w http.ResponseWriter, req *http.Request) {
	db := r.db.Model(&models.InventoryTransaction{}).
		Joins("JOIN inventory_entries ON inventory_entries.id = inventory_transactions.inventory_entry_id")
	claims := middleware.ClaimsFrom(req.Context())
	if ids := claims.AccessibleKoperasiIDs(); ids != nil {
		db = db.Where("inventory_entries.koperasi_id IN ?", ids)
	}
	if eid := req.URL.Query().Get("inventory_entry_id"); eid != "" {
		db = db.Where("inventory_transactions.inventory_entry_id = ?", eid)
	}

	var list []models.InventoryTransaction
	if err := db.Order("inventory_transactions.tanggal DESC").Find(&list).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch transaksi")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// TransaksiRequest is the request body for recording a transaction
type TransaksiRequest struct {
	InventoryEntryID uint     `json:"inventory_entry_id"`
	LahanID          *uint    `json:"lahan_id"`
	JenisTransaksi   string   `json:"jenis_transaksi"`
	Tanggal          string   `json:"tanggal"`
	Jumlah           *float64 `json:"jumlah"`
	HargaPerUnit     float64  `json:"harga_per_unit"`
	Pembeli          string   `json:"pembeli"`
	Keterangan       string   `json:"keterangan"`
}

// createTransaksi records a commercial event against an inventory entry
func (r *Router) createTransaksi(w http.ResponseWriter, req *http.Request) {
	var body TransaksiRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var v validation.Errors
	if body.InventoryEntryID == 0 {
		v.Add("inventory_entry_id", "inventory_entry_id wajib diisi")
	}
	v.Require("jenis_transaksi", body.JenisTransaksi)
	v.Require("tanggal", body.Tanggal)
	tanggal := v.Date("tanggal", body.Tanggal)
	if body.Jumlah == nil {
		v.Add("jumlah", "jumlah wajib diisi")
	}
	v.Positive("jumlah", body.Jumlah)
	if v.HasErrors() {
		respondValidationErrors(w, &v)
		return
	}

	var entry models.InventoryEntry
	if err := r.db.First(&entry, body.InventoryEntryID).Error; err != nil {
		respondError(w, http.StatusNotFound, "Inventory entry tidak ditemukan")
		return
	}
	if !canAccessKoperasi(req, entry.KoperasiID) {
		respondError(w, http.StatusForbidden, "Akses koperasi ditolak")
		return
	}

	tr := models.InventoryTransaction{
		InventoryEntryID: body.InventoryEntryID,
		LahanID:          body.LahanID,
		JenisTransaksi:   body.JenisTransaksi,
		Tanggal:          tanggal,
		Jumlah:           *body.Jumlah,
		HargaPerUnit:     body.HargaPerUnit,
		Pembeli:          body.Pembeli,
		Keterangan:       body.Keterangan,
	}
	if claims := middleware.ClaimsFrom(req.Context()); claims != nil {
		tr.CreatedBy = claims.UserID
	}

	if err := r.db.Create(&tr).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create transaksi")
		return
	}
	respondJSON(w, http.StatusCreated, tr)
}
