package main

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kopitani-id/kopitrace/internal/config"
	"github.com/kopitani-id/kopitrace/internal/database"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/services/harvest"
	"github.com/kopitani-id/kopitrace/internal/utils"
)

// Seeds a demo cooperative with a farmer, a land plot and one completed
// harvest so the traceability endpoints have data to show.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(
		&models.UserAuth{},
		&models.Koperasi{},
		&models.Petani{},
		&models.Lahan{},
		&models.Aktivitas{},
		&models.InventoryEntry{},
		&models.InventoryTransaction{},
		&models.QualityCheckpoint{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	kop := models.Koperasi{Nama: "Koperasi Kopi Lestari", Alamat: "Takengon, Aceh Tengah", Ketua: "Ibu Ratna", Aktif: true}
	if err := db.Create(&kop).Error; err != nil {
		log.Fatalf("Failed to seed koperasi: %v", err)
	}

	hash, _ := utils.HashPassword("demo1234")
	admin := models.UserAuth{
		ID:       uuid.NewString(),
		Username: "demo-admin",
		Email:    "admin@lestari.coop",
		Password: hash,
		Name:     "Demo Admin",
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	petani := models.Petani{KoperasiID: kop.ID, Nama: "Pak Budi", Telepon: "0812000111", Aktif: true}
	if err := db.Create(&petani).Error; err != nil {
		log.Fatalf("Failed to seed petani: %v", err)
	}

	lahan := models.Lahan{
		KoperasiID: kop.ID,
		PetaniID:   petani.ID,
		Nama:       "Kebun Atas",
		LuasHa:     1.5,
		Ketinggian: 1400,
		Varietas:   "Gayo 1",
	}
	if err := db.Create(&lahan).Error; err != nil {
		log.Fatalf("Failed to seed lahan: %v", err)
	}

	actual := 200.0
	panen := models.Aktivitas{
		LahanID:          lahan.ID,
		JenisAktivitas:   models.AktivitasPanen,
		TanggalAktivitas: time.Now().AddDate(0, 0, -7),
		JumlahAktualKg:   &actual,
		Status:           models.StatusSelesai,
		Keterangan:       "Panen demo",
		CreatedBy:        admin.ID,
	}

	pipeline := harvest.NewPipeline(db.DB, nil)
	res, err := pipeline.Create(&panen)
	if err != nil {
		log.Fatalf("Failed to seed harvest: %v", err)
	}

	log.Printf("✅ Demo data seeded: koperasi #%d, batch %s", kop.ID, res.Entry.BatchID)
	log.Printf("   Login: admin@lestari.coop / demo1234")
}
