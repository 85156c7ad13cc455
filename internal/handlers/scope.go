package handlers

import (
	"net/http"

	"github.com/kopitani-id/kopitrace/internal/middleware"
	"gorm.io/gorm"
)

// scopeKoperasi restricts a query to the cooperatives the caller may access.
// ADMIN is unscoped; other roles get a bound-array IN clause.
func scopeKoperasi(db *gorm.DB, req *http.Request) *gorm.DB {
	claims := middleware.ClaimsFrom(req.Context())
	if claims == nil {
		return db.Where("1 = 0")
	}
	ids := claims.AccessibleKoperasiIDs()
	if ids == nil {
		return db
	}
	return db.Where("koperasi_id IN ?", ids)
}

// canAccessKoperasi reports whether the caller may touch rows of a cooperative.
func canAccessKoperasi(req *http.Request, koperasiID uint) bool {
	claims := middleware.ClaimsFrom(req.Context())
	if claims == nil {
		return false
	}
	ids := claims.AccessibleKoperasiIDs()
	if ids == nil {
		return true
	}
	for _, id := range ids {
		if id == koperasiID {
			return true
		}
	}
	return false
}
