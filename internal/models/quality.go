package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quality checkpoint stages and results.
const (
	CheckpointHarvest    = "HARVEST"
	CheckpointProcessing = "PROCESSING"
	CheckpointStorage    = "STORAGE"

	CheckResultPassed = "PASSED"
	CheckResultFailed = "FAILED"
)

// QualityCheckpoint is a recorded inspection of a batch at some stage.
// The traceability report merges genuine rows with synthesized ones.
type QualityCheckpoint struct {
	ID         string         `gorm:"primaryKey;type:uuid" json:"id"`
	KoperasiID uint           `gorm:"index;not null" json:"koperasi_id"`
	BatchID    string         `gorm:"index;not null" json:"batch_id"`
	Stage      string         `gorm:"index;not null" json:"stage"`
	Result     string         `gorm:"default:'PASSED'" json:"result"`
	Tanggal    time.Time      `json:"tanggal"`
	Inspektur  string         `json:"inspektur,omitempty"`
	Catatan    string         `json:"catatan,omitempty"`
	Detail     datatypes.JSON `json:"detail,omitempty"` // moisture, defect counts, cupping notes
	CreatedBy  string         `gorm:"type:uuid" json:"created_by,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (QualityCheckpoint) TableName() string {
	return "quality_checkpoints"
}
