package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity kinds (jenis_aktivitas).
const (
	AktivitasTanam         = "TANAM"
	AktivitasPanen         = "PANEN"
	AktivitasEstimasiPanen = "ESTIMASI_PANEN"
)

// Activity statuses.
const (
	StatusTerjadwal = "TERJADWAL"
	StatusSelesai   = "SELESAI"
	StatusPending   = "PENDING"
)

// Activity origins (created_from).
const (
	OriginManual = "MANUAL"
	OriginSistem = "SISTEM"
)

// Aktivitas is one farming event on a land plot. Harvest-estimate rows with
// CreatedFrom == SISTEM are produced only by the harvest pipeline.
type Aktivitas struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	LahanID          uint       `gorm:"index;not null" json:"lahan_id"`
	JenisAktivitas   string     `gorm:"index;not null" json:"jenis_aktivitas"`
	TanggalAktivitas time.Time  `gorm:"index;not null" json:"tanggal_aktivitas"`
	TanggalEstimasi  *time.Time `json:"tanggal_estimasi,omitempty"`
	JumlahEstimasiKg *float64   `json:"jumlah_estimasi_kg,omitempty"`
	JumlahAktualKg   *float64   `json:"jumlah_aktual_kg,omitempty"`
	JenisBibit       string     `json:"jenis_bibit,omitempty"`
	Status           string     `gorm:"index;default:'TERJADWAL'" json:"status"`
	Keterangan       string     `json:"keterangan,omitempty"`
	CreatedFrom      string     `gorm:"default:'MANUAL'" json:"created_from"`
	CreatedBy        string     `gorm:"type:uuid" json:"created_by,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Lahan *Lahan `gorm:"foreignKey:LahanID" json:"lahan,omitempty"`
}

func (Aktivitas) TableName() string {
	return "aktivitas"
}

// IsCompletedHarvest reports whether this row is a finished harvest carrying a
// positive actual yield, the condition under which the pipeline fires.
func (a *Aktivitas) IsCompletedHarvest() bool {
	return a.JenisAktivitas == AktivitasPanen &&
		a.Status == StatusSelesai &&
		a.JumlahAktualKg != nil && *a.JumlahAktualKg > 0
}
