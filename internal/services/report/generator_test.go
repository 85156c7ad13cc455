package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/services/harvest"
	"github.com/kopitani-id/kopitrace/internal/services/lineage"
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
		&models.InventoryTransaction{},
		&models.QualityCheckpoint{},
	); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return db
}

// seedHarvestBatch runs a completed harvest through the pipeline and returns
// the produced batch id.
func seedHarvestBatch(t *testing.T, db *gorm.DB) string {
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

	actual := 200.0
	act := &models.Aktivitas{
		LahanID:          lahan.ID,
		JenisAktivitas:   models.AktivitasPanen,
		TanggalAktivitas: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		JumlahAktualKg:   &actual,
		Status:           models.StatusSelesai,
	}
	res, err := harvest.NewPipeline(db, nil).Create(act)
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}
	return res.Entry.BatchID
}

func TestGenerateReport(t *testing.T) {
	db := newTestDB(t)
	batchID := seedHarvestBatch(t, db)
	g := NewGenerator(db)

	rep, err := g.Generate(batchID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !rep.TraceabilityConfirmed {
		t.Error("TraceabilityConfirmed must be true")
	}
	if !strings.HasPrefix(rep.ReportID, "TR-"+batchID+"-") {
		t.Errorf("ReportID = %s, want TR-<batch>-<ts>", rep.ReportID)
	}
	if rep.ReportSummary.TotalProcessingSteps < 1 {
		t.Errorf("TotalProcessingSteps = %d, want >= 1", rep.ReportSummary.TotalProcessingSteps)
	}
	if len(rep.FarmSource) != 1 {
		t.Fatalf("FarmSource count = %d, want 1", len(rep.FarmSource))
	}
	if rep.FarmSource[0].Lahan.Nama != "Kebun Atas" {
		t.Errorf("FarmSource lahan = %s", rep.FarmSource[0].Lahan.Nama)
	}
	if rep.FarmSource[0].PetaniNama != "Pak Budi" {
		t.Errorf("FarmSource petani = %s", rep.FarmSource[0].PetaniNama)
	}

	var harvestCP, processingCP int
	for _, cp := range rep.QualityCheckpoints {
		switch cp.Stage {
		case models.CheckpointHarvest:
			harvestCP++
		case models.CheckpointProcessing:
			processingCP++
		}
		if cp.Result != models.CheckResultPassed {
			t.Errorf("Synthesized checkpoint result = %s, want PASSED", cp.Result)
		}
	}
	if harvestCP != 1 || processingCP != 1 {
		t.Errorf("Checkpoints harvest=%d processing=%d, want 1 each", harvestCP, processingCP)
	}

	if rep.BatchInfo.Koperasi == nil || rep.BatchInfo.Koperasi.Nama != "Koperasi Uji" {
		t.Error("BatchInfo must carry the owning koperasi")
	}
}

func TestGenerateReportMergesGenuineCheckpoints(t *testing.T) {
	db := newTestDB(t)
	batchID := seedHarvestBatch(t, db)
	g := NewGenerator(db)

	genuine := models.QualityCheckpoint{
		ID:         "11111111-2222-3333-4444-555555555555",
		KoperasiID: 1,
		BatchID:    batchID,
		Stage:      models.CheckpointStorage,
		Result:     models.CheckResultFailed,
		Tanggal:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&genuine).Error; err != nil {
		t.Fatalf("Failed to seed checkpoint: %v", err)
	}

	rep, err := g.Generate(batchID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if rep.QualityCheckpoints[0].ID != genuine.ID {
		t.Errorf("Genuine checkpoint must lead the list, got %s", rep.QualityCheckpoints[0].ID)
	}
	if rep.ReportSummary.TotalQualityChecks != 3 {
		t.Errorf("TotalQualityChecks = %d, want 3", rep.ReportSummary.TotalQualityChecks)
	}
}

func TestGenerateReportNotFound(t *testing.T) {
	db := newTestDB(t)
	g := NewGenerator(db)

	if _, err := g.Generate("UNKNOWN"); err != lineage.ErrBatchNotFound {
		t.Errorf("Generate(UNKNOWN) error = %v, want ErrBatchNotFound", err)
	}
}

func TestRenderPDF(t *testing.T) {
	db := newTestDB(t)
	batchID := seedHarvestBatch(t, db)
	g := NewGenerator(db)

	rep, err := g.Generate(batchID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	pdfBytes, err := g.RenderPDF(rep)
	if err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Error("Output does not look like a PDF document")
	}
}
