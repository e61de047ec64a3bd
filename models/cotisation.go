package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cotisation statuses.
const (
	CotisationEnAttente = "EN_ATTENTE"
	CotisationPayee     = "PAYEE"
	CotisationAnnulee   = "ANNULEE"
)

// Cotisation is a dues obligation for a membre OR a client (never both).
// DatePaiement is only set once the statut becomes PAYEE.
type Cotisation struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MembreID     *uint   `gorm:"index"`
	Membre       *Membre `gorm:"foreignKey:MembreID"`
	ClientID     *uint   `gorm:"index"`
	Client       *Client `gorm:"foreignKey:ClientID"`
	Periode      string  `gorm:"size:7;not null;index"` // YYYY-MM
	Montant      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Statut       string          `gorm:"size:16;not null;default:EN_ATTENTE;index"`
	DatePaiement *time.Time      `gorm:"index"`
	NumeroRecu   string          `gorm:"size:64"`
}
