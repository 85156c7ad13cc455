package harvest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/kopitani-id/kopitrace/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Koperasi{},
		&models.Petani{},
		&models.Lahan{},
		&models.Aktivitas{},
		&models.InventoryEntry{},
	); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return db
}

func seedLahan(t *testing.T, db *gorm.DB) models.Lahan {
	t.Helper()
	kop := models.Koperasi{Nama: "Koperasi Uji", Aktif: true}
	if err := db.Create(&kop).Error; err != nil {
		t.Fatalf("Failed to seed koperasi: %v", err)
	}
	petani := models.Petani{KoperasiID: kop.ID, Nama: "Pak Budi", Aktif: true}
	if err := db.Create(&petani).Error; err != nil {
		t.Fatalf("Failed to seed petani: %v", err)
	}
	lahan := models.Lahan{KoperasiID: kop.ID, PetaniID: petani.ID, Nama: "Kebun Atas"}
	if err := db.Create(&lahan).Error; err != nil {
		t.Fatalf("Failed to seed lahan: %v", err)
	}
	return lahan
}

func harvestActivity(lahanID uint, status string, actualKg float64) *models.Aktivitas {
	act := &models.Aktivitas{
		LahanID:          lahanID,
		JenisAktivitas:   models.AktivitasPanen,
		TanggalAktivitas: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Status:           status,
		CreatedFrom:      models.OriginManual,
	}
	if actualKg > 0 {
		act.JumlahAktualKg = &actualKg
	}
	return act
}

func TestCreateCompletedHarvestMaterializes(t *testing.T) {
	db := newTestDB(t)
	lahan := seedLahan(t, db)
	p := NewPipeline(db, nil)

	act := harvestActivity(lahan.ID, models.StatusSelesai, 200)
	res, err := p.Create(act)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if res.Entry == nil {
		t.Fatal("Expected an inventory entry to be created")
	}
	if res.Entry.Jenis != models.DirectionIn {
		t.Errorf("Entry direction = %s, want %s", res.Entry.Jenis, models.DirectionIn)
	}
	if res.Entry.Jumlah != 200 {
		t.Errorf("Entry quantity = %f, want 200", res.Entry.Jumlah)
	}
	if res.Entry.NamaItem != "Cherry from Kebun Atas" {
		t.Errorf("Entry item name = %q", res.Entry.NamaItem)
	}
	if !strings.HasPrefix(res.Entry.BatchID, "BATCH-") {
		t.Errorf("Batch id %q should have BATCH- prefix", res.Entry.BatchID)
	}
	if !strings.HasSuffix(res.Entry.BatchID, "-1") {
		t.Errorf("Batch id %q should end with the lahan id", res.Entry.BatchID)
	}
	if res.Entry.SourceAktivitasID == nil || *res.Entry.SourceAktivitasID != act.ID {
		t.Errorf("Entry source activity = %v, want %d", res.Entry.SourceAktivitasID, act.ID)
	}

	if res.Estimate == nil {
		t.Fatal("Expected a forward estimate to be created")
	}
	if res.Estimate.JenisAktivitas != models.AktivitasEstimasiPanen {
		t.Errorf("Estimate kind = %s", res.Estimate.JenisAktivitas)
	}
	if res.Estimate.CreatedFrom != models.OriginSistem {
		t.Errorf("Estimate origin = %s, want SISTEM", res.Estimate.CreatedFrom)
	}
	if res.Estimate.Status != models.StatusTerjadwal {
		t.Errorf("Estimate status = %s, want TERJADWAL", res.Estimate.Status)
	}
	wantDate := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
	if !res.Estimate.TanggalAktivitas.Equal(wantDate) {
		t.Errorf("Estimate date = %v, want %v", res.Estimate.TanggalAktivitas, wantDate)
	}
	if res.Estimate.JumlahEstimasiKg == nil || *res.Estimate.JumlahEstimasiKg != 210 {
		t.Errorf("Estimate kg = %v, want 210", res.Estimate.JumlahEstimasiKg)
	}
}

func TestEstimateMath(t *testing.T) {
	tests := []struct {
		actual float64
		want   float64
	}{
		{200, 210},
		{150, 158}, // round(157.5)
		{100, 105},
		{1, 1}, // round(1.05)
	}

	for _, tt := range tests {
		db := newTestDB(t)
		lahan := seedLahan(t, db)
		p := NewPipeline(db, nil)

		act := harvestActivity(lahan.ID, models.StatusSelesai, tt.actual)
		res, err := p.Create(act)
		if err != nil {
			t.Fatalf("Create(%v kg) failed: %v", tt.actual, err)
		}
		if res.Estimate == nil {
			t.Fatalf("Create(%v kg) produced no estimate", tt.actual)
		}
		if got := *res.Estimate.JumlahEstimasiKg; got != tt.want {
			t.Errorf("Estimate for %v kg = %v, want %v", tt.actual, got, tt.want)
		}
	}
}

func TestCreateScheduledHarvestNoSideEffects(t *testing.T) {
	db := newTestDB(t)
	lahan := seedLahan(t, db)
	p := NewPipeline(db, nil)

	act := harvestActivity(lahan.ID, models.StatusTerjadwal, 200)
	res, err := p.Create(act)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if res.Entry != nil || res.Estimate != nil {
		t.Error("Scheduled harvest must not produce inventory or estimates")
	}

	var count int64
	db.Model(&models.InventoryEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected 0 inventory entries, got %d", count)
	}
}

func TestUpdateTransitionIntoSelesaiFires(t *testing.T) {
	db := newTestDB(t)
	lahan := seedLahan(t, db)
	p := NewPipeline(db, nil)

	act := harvestActivity(lahan.ID, models.StatusTerjadwal, 0)
	if _, err := p.Create(act); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	prev := act.Status
	actual := 150.0
	act.Status = models.StatusSelesai
	act.JumlahAktualKg = &actual

	res, err := p.Update(act, prev)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if res.Entry == nil {
		t.Fatal("Transition into SELESAI must materialize inventory")
	}
	if res.Entry.Jumlah != 150 {
		t.Errorf("Entry quantity = %f, want 150", res.Entry.Jumlah)
	}
}

func TestUpdateAlreadySelesaiDoesNotRefire(t *testing.T) {
	db := newTestDB(t)
	lahan := seedLahan(t, db)
	p := NewPipeline(db, nil)

	act := harvestActivity(lahan.ID, models.StatusSelesai, 200)
	if _, err := p.Create(act); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Save again with no status transition.
	act.Keterangan = "catatan diperbarui"
	if _, err := p.Update(act, models.StatusSelesai); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var entries int64
	db.Model(&models.InventoryEntry{}).Count(&entries)
	if entries != 1 {
		t.Errorf("Expected 1 inventory entry after no-transition update, got %d", entries)
	}

	var estimates int64
	db.Model(&models.Aktivitas{}).
		Where("jenis_aktivitas = ?", models.AktivitasEstimasiPanen).
		Count(&estimates)
	if estimates != 1 {
		t.Errorf("Expected 1 estimate after no-transition update, got %d", estimates)
	}
}

func TestEditingBackToTerjadwalThenSelesaiSkipsDuplicate(t *testing.T) {
	db := newTestDB(t)
	lahan := seedLahan(t, db)
	p := NewPipeline(db, nil)

	act := harvestActivity(lahan.ID, models.StatusSelesai, 200)
	if _, err := p.Create(act); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Edit back to TERJADWAL: must not fire.
	act.Status = models.StatusTerjadwal
	if _, err := p.Update(act, models.StatusSelesai); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Complete again: the unique source activity guard skips re-creation.
	act.Status = models.StatusSelesai
	if _, err := p.Update(act, models.StatusTerjadwal); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var entries int64
	db.Model(&models.InventoryEntry{}).Count(&entries)
	if entries != 1 {
		t.Errorf("Expected 1 inventory entry after re-completion, got %d", entries)
	}
}

func TestMissingLahanRollsBackWholeTransaction(t *testing.T) {
	db := newTestDB(t)
	p := NewPipeline(db, nil)

	act := harvestActivity(999, models.StatusSelesai, 200)
	if _, err := p.Create(act); err == nil {
		t.Fatal("Expected error for unknown lahan")
	}

	// The activity write itself must not persist.
	var activities int64
	db.Model(&models.Aktivitas{}).Count(&activities)
	if activities != 0 {
		t.Errorf("Expected full rollback, found %d activity rows", activities)
	}

	var entries int64
	db.Model(&models.InventoryEntry{}).Count(&entries)
	if entries != 0 {
		t.Errorf("Expected 0 inventory entries, got %d", entries)
	}
}
