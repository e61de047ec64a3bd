package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vente is a sale of goods drawn against a food credit. No new cash moves:
// the credit solde absorbs quantite * prix_unitaire.
type Vente struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProduitID    uint              `gorm:"index;not null"`
	Produit      Produit           `gorm:"foreignKey:ProduitID"`
	CreditID     uint              `gorm:"index;not null"`
	Credit       CreditAlimentaire `gorm:"foreignKey:CreditID"`
	MembreID     *uint             `gorm:"index"`
	Membre       *Membre           `gorm:"foreignKey:MembreID"`
	ClientID     *uint             `gorm:"index"`
	Client       *Client           `gorm:"foreignKey:ClientID"`
	Quantite     int               `gorm:"not null"`
	PrixUnitaire decimal.Decimal   `gorm:"type:decimal(14,2);not null"`
	Date         time.Time         `gorm:"not null;index"`
}
