package handlers

import (
	"net/http"

	"github.com/kopitani-id/kopitrace/internal/middleware"
	"github.com/kopitani-id/kopitrace/internal/models"
	"gorm.io/gorm"
)

// DashboardSummary aggregates the headline numbers for the admin dashboard.
type DashboardSummary struct {
	TotalKoperasi   int64              `json:"total_koperasi"`
	TotalPetani     int64              `json:"total_petani"`
	TotalLahan      int64              `json:"total_lahan"`
	TotalLuasHa     float64            `json:"total_luas_ha"`
	PanenSelesai    int64              `json:"panen_selesai"`
	EstimasiAktif   int64              `json:"estimasi_aktif"`
	TotalMasukKg    float64            `json:"total_masuk_kg"`
	TotalKeluarKg   float64            `json:"total_keluar_kg"`
	TotalTransaksi  int64              `json:"total_transaksi"`
	RecentAktivitas []models.Aktivitas `json:"recent_aktivitas"`
}

// dashboard runs the read-only aggregate queries for the admin dashboard.
// All sums are delegated to the database; no lineage logic is involved.
func (r *Router) dashboard(w http.ResponseWriter, req *http.Request) {
	claims := middleware.ClaimsFrom(req.Context())
	ids := claims.AccessibleKoperasiIDs()
	db := r.db.DB

	scoped := func(q *gorm.DB, col string) *gorm.DB {
		if ids != nil {
			return q.Where(col+" IN ?", ids)
		}
		return q
	}
	aktivitas := func() *gorm.DB {
		return scoped(db.Model(&models.Aktivitas{}).
			Joins("JOIN lahan ON lahan.id = aktivitas.lahan_id"), "lahan.koperasi_id")
	}

	var sum DashboardSummary
	if err := scoped(db.Model(&models.Koperasi{}), "id").
		Count(&sum.TotalKoperasi).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to aggregate dashboard")
		return
	}

	scoped(db.Model(&models.Petani{}), "koperasi_id").Count(&sum.TotalPetani)
	scoped(db.Model(&models.Lahan{}), "koperasi_id").Count(&sum.TotalLahan)
	scoped(db.Model(&models.Lahan{}), "koperasi_id").
		Select("COALESCE(SUM(luas_ha), 0)").Scan(&sum.TotalLuasHa)

	aktivitas().
		Where("aktivitas.jenis_aktivitas = ? AND aktivitas.status = ?",
			models.AktivitasPanen, models.StatusSelesai).
		Count(&sum.PanenSelesai)
	aktivitas().
		Where("aktivitas.jenis_aktivitas = ? AND aktivitas.status = ?",
			models.AktivitasEstimasiPanen, models.StatusTerjadwal).
		Count(&sum.EstimasiAktif)

	scoped(db.Model(&models.InventoryEntry{}), "koperasi_id").
		Where("jenis = ?", models.DirectionIn).
		Select("COALESCE(SUM(jumlah), 0)").Scan(&sum.TotalMasukKg)
	scoped(db.Model(&models.InventoryEntry{}), "koperasi_id").
		Where("jenis = ?", models.DirectionOut).
		Select("COALESCE(SUM(jumlah), 0)").Scan(&sum.TotalKeluarKg)

	scoped(db.Model(&models.InventoryTransaction{}).
		Joins("JOIN inventory_entries ON inventory_entries.id = inventory_transactions.inventory_entry_id"),
		"inventory_entries.koperasi_id").
		Count(&sum.TotalTransaksi)

	aktivitas().Order("aktivitas.created_at DESC").Limit(10).Find(&sum.RecentAktivitas)

	respondJSON(w, http.StatusOK, sum)
}
