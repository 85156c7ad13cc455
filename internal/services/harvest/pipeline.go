package harvest

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/utils"
	"gorm.io/gorm"
)

// ErrLahanNotFound is returned when a completed harvest references a land plot
// that does not exist. The whole transaction rolls back: an orphaned harvest
// must not persist without its inventory side effects.
var ErrLahanNotFound = errors.New("lahan tidak ditemukan")

// Next-cycle forecast heuristic: the follow-up harvest is scheduled six months
// out at a flat 5% growth over the actual yield.
const (
	estimateGrowthFactor = 1.05
	estimateOffsetMonths = 6
)

// EventSink receives domain events after a successful commit. The websocket
// feed implements it; a nil sink disables publishing.
type EventSink interface {
	Publish(eventType string, payload interface{})
}

// Pipeline converts a freshly completed harvest activity into an inventory
// batch and a forward estimate, atomically with the activity write itself.
type Pipeline struct {
	db   *gorm.DB
	sink EventSink
	now  func() time.Time
}

// NewPipeline creates a Pipeline bound to a database handle.
func NewPipeline(db *gorm.DB, sink EventSink) *Pipeline {
	return &Pipeline{db: db, sink: sink, now: time.Now}
}

// Result reports what a pipeline run produced.
type Result struct {
	Aktivitas *models.Aktivitas
	Entry     *models.InventoryEntry
	Estimate  *models.Aktivitas
}

// Create persists a new activity. When the activity is a completed harvest
// with a positive actual yield, the inventory batch and the forward estimate
// are written in the same transaction; any failure rolls everything back.
func (p *Pipeline) Create(act *models.Aktivitas) (*Result, error) {
	res := &Result{Aktivitas: act}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(act).Error; err != nil {
			return err
		}
		if act.IsCompletedHarvest() {
			return p.materialize(tx, act, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.publish(res)
	return res, nil
}

// Update persists changes to an existing activity. The harvest side effects
// fire only on the transition into SELESAI: an activity already stored as
// SELESAI does not re-fire, and editing a completed harvest back to TERJADWAL
// never does.
func (p *Pipeline) Update(act *models.Aktivitas, prevStatus string) (*Result, error) {
	res := &Result{Aktivitas: act}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(act).Error; err != nil {
			return err
		}
		if act.IsCompletedHarvest() && prevStatus != models.StatusSelesai {
			return p.materialize(tx, act, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.publish(res)
	return res, nil
}

// materialize runs steps 1-6 of the harvest workflow inside tx.
func (p *Pipeline) materialize(tx *gorm.DB, act *models.Aktivitas, res *Result) error {
	// Idempotency: at most one IN entry per source activity, enforced by the
	// unique index on source_aktivitas_id.
	var existing models.InventoryEntry
	err := tx.Where("source_aktivitas_id = ? AND jenis = ?", act.ID, models.DirectionIn).
		First(&existing).Error
	if err == nil {
		log.Printf("📦 Harvest #%d already materialized as %s, skipping", act.ID, existing.BatchID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Resolve lahan, petani and koperasi for the item label and note.
	var lahan models.Lahan
	if err := tx.Preload("Petani").First(&lahan, act.LahanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrLahanNotFound, act.LahanID)
		}
		return err
	}

	petaniNama := ""
	if lahan.Petani != nil {
		petaniNama = lahan.Petani.Nama
	}

	actual := *act.JumlahAktualKg
	batchID := utils.GenerateBatchID(lahan.ID, p.now())

	aktID := act.ID
	entry := models.InventoryEntry{
		KoperasiID: lahan.KoperasiID,
		NamaItem:   fmt.Sprintf("Cherry from %s", lahan.Nama),
		Jenis:      models.DirectionIn,
		Tanggal:    act.TanggalAktivitas,
		Jumlah:     actual,
		Satuan:     "kg",
		BatchID:    batchID,
		Keterangan: fmt.Sprintf("Hasil panen lahan %s (petani: %s), aktivitas #%d",
			lahan.Nama, petaniNama, act.ID),
		SourceAktivitasID: &aktID,
		CreatedBy:         act.CreatedBy,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	nextDate := act.TanggalAktivitas.AddDate(0, estimateOffsetMonths, 0)
	nextKg := math.Round(actual * estimateGrowthFactor)

	estimate := models.Aktivitas{
		LahanID:          act.LahanID,
		JenisAktivitas:   models.AktivitasEstimasiPanen,
		TanggalAktivitas: nextDate,
		TanggalEstimasi:  &nextDate,
		JumlahEstimasiKg: &nextKg,
		Status:           models.StatusTerjadwal,
		CreatedFrom:      models.OriginSistem,
		Keterangan: fmt.Sprintf("Estimasi otomatis dari panen #%d (%.0f kg aktual)",
			act.ID, actual),
		CreatedBy: act.CreatedBy,
	}
	if err := tx.Create(&estimate).Error; err != nil {
		return err
	}

	log.Printf("🌱 Harvest #%d materialized: batch %s, next estimate %.0f kg on %s",
		act.ID, batchID, nextKg, nextDate.Format("2006-01-02"))

	res.Entry = &entry
	res.Estimate = &estimate
	return nil
}

func (p *Pipeline) publish(res *Result) {
	if p.sink == nil || res.Entry == nil {
		return
	}
	p.sink.Publish("HARVEST_MATERIALIZED", map[string]interface{}{
		"aktivitasId": res.Aktivitas.ID,
		"batchId":     res.Entry.BatchID,
		"jumlahKg":    res.Entry.Jumlah,
	})
}
