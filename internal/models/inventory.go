package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Inventory directions.
const (
	DirectionIn  = "MASUK"
	DirectionOut = "KELUAR"
)

// InventoryEntry is one quantity movement of a named product. BatchID and
// ParentBatchID are opaque strings, not foreign keys: multiple rows may share a
// BatchID (repeated movements of the same physical batch) and ParentBatchID is
// a weak back-reference into the set of all BatchID values. Together they form
// the batch lineage graph.
type InventoryEntry struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	KoperasiID       uint      `gorm:"index;not null" json:"koperasi_id"`
	NamaItem         string    `gorm:"not null" json:"nama_item"`
	Jenis            string    `gorm:"index;not null" json:"jenis"` // MASUK / KELUAR
	Tanggal          time.Time `gorm:"index;not null" json:"tanggal"`
	Jumlah           float64   `gorm:"not null" json:"jumlah"`
	Satuan           string    `gorm:"default:'kg'" json:"satuan"`
	BatchID          string    `gorm:"index" json:"batch_id,omitempty"`
	ParentBatchID    string    `gorm:"index" json:"parent_batch_id,omitempty"`
	Keterangan       string    `json:"keterangan,omitempty"`
	MarketplaceRef   string    `json:"marketplace_ref,omitempty"`
	// SourceAktivitasID makes the harvest pipeline idempotent: at most one IN
	// entry may exist per source activity.
	SourceAktivitasID *uint  `gorm:"uniqueIndex" json:"source_aktivitas_id,omitempty"`
	CreatedBy         string `gorm:"type:uuid" json:"created_by,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Koperasi *Koperasi `gorm:"foreignKey:KoperasiID" json:"koperasi,omitempty"`
}

func (InventoryEntry) TableName() string {
	return "inventory_entries"
}

// InventoryTransaction records a commercial event (sale, transfer, payment)
// against an inventory entry.
type InventoryTransaction struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	InventoryEntryID uint           `gorm:"index;not null" json:"inventory_entry_id"`
	LahanID          *uint          `gorm:"index" json:"lahan_id,omitempty"`
	JenisTransaksi   string         `gorm:"index" json:"jenis_transaksi"`
	Tanggal          time.Time      `gorm:"index" json:"tanggal"`
	Jumlah           float64        `json:"jumlah"`
	HargaPerUnit     float64        `json:"harga_per_unit,omitempty"`
	Pembeli          string         `json:"pembeli,omitempty"`
	Keterangan       string         `json:"keterangan,omitempty"`
	Metadata         datatypes.JSON `json:"metadata,omitempty"`
	CreatedBy        string         `gorm:"type:uuid" json:"created_by,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	InventoryEntry *InventoryEntry `gorm:"foreignKey:InventoryEntryID" json:"inventory_entry,omitempty"`
	Lahan          *Lahan          `gorm:"foreignKey:LahanID" json:"lahan,omitempty"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}
