package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produit is a stocked good sold against food credits.
type Produit struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time      `gorm:"index"`
	Nom          string          `gorm:"size:255;not null;uniqueIndex"`
	Unite        string          `gorm:"size:32"` // kg, sac, litre...
	PrixUnitaire decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	StockActuel  int             `gorm:"not null;default:0"`
	SeuilAlerte  int             `gorm:"default:0"`
}
