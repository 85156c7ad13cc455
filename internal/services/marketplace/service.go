package marketplace

import (
	"errors"
	"fmt"
	"log"

	"github.com/kopitani-id/kopitrace/internal/config"
	"github.com/kopitani-id/kopitrace/internal/models"
	"gorm.io/gorm"
)

// ErrDisabled is returned when no marketplace URL is configured.
var ErrDisabled = errors.New("marketplace sync is not configured")

// Service pushes inventory movements to the external marketplace and records
// the returned reference on the entry.
type Service struct {
	db     *gorm.DB
	client *Client
}

// NewService creates the sync service. The client stays nil (disabled) when no
// URL is configured.
func NewService(db *gorm.DB, cfg config.MarketplaceConfig) *Service {
	s := &Service{db: db}
	if cfg.URL != "" {
		s.client = NewClient(cfg.URL, cfg.Database, cfg.Username, cfg.Password)
	}
	return s
}

// Enabled reports whether a marketplace endpoint is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Status checks connectivity with the remote marketplace.
func (s *Service) Status() (string, error) {
	if s.client == nil {
		return "", ErrDisabled
	}
	return s.client.Version()
}

// SyncEntry pushes one inventory entry to the marketplace and stores the
// external reference on the row.
func (s *Service) SyncEntry(entry *models.InventoryEntry) (string, error) {
	if s.client == nil {
		return "", ErrDisabled
	}

	if _, err := s.client.Authenticate(); err != nil {
		return "", err
	}

	remoteID, err := s.client.Create("stock.move", map[string]interface{}{
		"name":        entry.NamaItem,
		"product_qty": entry.Jumlah,
		"product_uom": entry.Satuan,
		"origin":      entry.BatchID,
		"reference":   fmt.Sprintf("KOP-%d", entry.ID),
	})
	if err != nil {
		return "", err
	}

	ref := fmt.Sprintf("MKT-%d", remoteID)
	if err := s.db.Model(entry).Update("marketplace_ref", ref).Error; err != nil {
		return "", err
	}
	entry.MarketplaceRef = ref

	log.Printf("🛒 Inventory entry #%d synced to marketplace as %s", entry.ID, ref)
	return ref, nil
}
