package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MouvementStock types.
const (
	MouvementEntree = "ENTREE"
	MouvementSortie = "SORTIE"
)

// MouvementStock is an inventory change: a replenishment (ENTREE, cash out)
// or a consumption (SORTIE, recorded alongside ventes).
type MouvementStock struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProduitID    uint            `gorm:"index;not null"`
	Produit      Produit         `gorm:"foreignKey:ProduitID"`
	Type         string          `gorm:"size:16;not null;index"` // ENTREE | SORTIE
	Quantite     int             `gorm:"not null"`
	PrixUnitaire decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Date         time.Time       `gorm:"not null;index"`
	Motif        string          `gorm:"size:255"`
}
