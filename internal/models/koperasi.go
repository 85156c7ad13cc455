package models

import (
	"time"

	"gorm.io/gorm"
)

// Koperasi is the tenant unit owning farmers, land plots and inventory.
type Koperasi struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Nama      string `gorm:"not null;index" json:"nama"`
	Alamat    string `json:"alamat,omitempty"`
	Telepon   string `json:"telepon,omitempty"`
	Email     string `json:"email,omitempty"`
	Ketua     string `json:"ketua,omitempty"` // chairperson name
	Aktif     bool   `gorm:"default:true" json:"aktif"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Petani []Petani `gorm:"foreignKey:KoperasiID" json:"petani,omitempty"`
}

func (Koperasi) TableName() string {
	return "koperasi"
}

// Petani represents a member farmer of a cooperative.
type Petani struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	KoperasiID uint   `gorm:"index;not null" json:"koperasi_id"`
	Nama       string `gorm:"not null" json:"nama"`
	NIK        string `gorm:"index" json:"nik,omitempty"` // national ID number
	Telepon    string `json:"telepon,omitempty"`
	Alamat     string `json:"alamat,omitempty"`
	Aktif      bool   `gorm:"default:true" json:"aktif"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Koperasi *Koperasi `gorm:"foreignKey:KoperasiID" json:"koperasi,omitempty"`
	Lahan    []Lahan   `gorm:"foreignKey:PetaniID" json:"lahan,omitempty"`
}

func (Petani) TableName() string {
	return "petani"
}

// Lahan is a land plot worked by a farmer.
type Lahan struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	KoperasiID uint    `gorm:"index;not null" json:"koperasi_id"`
	PetaniID   uint    `gorm:"index;not null" json:"petani_id"`
	Nama       string  `gorm:"not null" json:"nama"`
	LuasHa     float64 `json:"luas_ha,omitempty"` // area in hectares
	Lokasi     string  `json:"lokasi,omitempty"`
	Ketinggian int     `json:"ketinggian,omitempty"` // elevation, masl
	Varietas   string  `json:"varietas,omitempty"`   // dominant coffee variety

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Koperasi *Koperasi `gorm:"foreignKey:KoperasiID" json:"koperasi,omitempty"`
	Petani   *Petani   `gorm:"foreignKey:PetaniID" json:"petani,omitempty"`
}

func (Lahan) TableName() string {
	return "lahan"
}
