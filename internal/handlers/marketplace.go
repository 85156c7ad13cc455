package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/services/marketplace"
)

// marketplaceStatus reports connectivity with the external marketplace
func (r *Router) marketplaceStatus(w http.ResponseWriter, req *http.Request) {
	if !r.market.Enabled() {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"enabled": false,
		})
		return
	}

	version, err := r.market.Status()
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"enabled":   true,
			"connected": false,
			"error":     err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"enabled":   true,
		"connected": true,
		"version":   version,
	})
}

// marketplaceSync pushes one inventory entry to the external marketplace and
// stores the returned reference on the row
func (r *Router) marketplaceSync(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["entryId"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid inventory entry ID")
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

	ref, err := r.market.SyncEntry(&entry)
	if err != nil {
		if errors.Is(err, marketplace.ErrDisabled) {
			respondError(w, http.StatusServiceUnavailable, "Marketplace sync is not configured")
			return
		}
		respondError(w, http.StatusBadGateway, "Marketplace sync failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entryId":        entry.ID,
		"marketplaceRef": ref,
	})
}
