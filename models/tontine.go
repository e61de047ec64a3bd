package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tontine statuses.
const (
	TontineActive  = "ACTIVE"
	TontineCloturee = "CLOTUREE"
)

// CycleTontine statuses.
const (
	CycleEnCours = "EN_COURS"
	CycleTermine = "TERMINE"
)

// Tontine is a rotating savings group.
type Tontine struct {
	ID                 uint `gorm:"primaryKey"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time      `gorm:"index"`
	Nom                string          `gorm:"size:255;not null"`
	MontantCotisation  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Frequence          string          `gorm:"size:32;default:MENSUELLE"` // HEBDOMADAIRE | MENSUELLE
	Statut             string          `gorm:"size:16;not null;default:ACTIVE"`
	Membres            []TontineMembre `gorm:"foreignKey:TontineID"`
	Cycles             []CycleTontine  `gorm:"foreignKey:TontineID"`
}

// TontineMembre is the tontine<->membre seat with the payout order.
type TontineMembre struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	TontineID uint   `gorm:"index;not null;uniqueIndex:idx_tontine_membre"`
	MembreID  uint   `gorm:"index;not null;uniqueIndex:idx_tontine_membre"`
	Membre    Membre `gorm:"foreignKey:MembreID"`
	Ordre     int    `gorm:"not null"`
}

// CotisationTontine is one member's contribution payment for a given cycle.
type CotisationTontine struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TontineID    uint    `gorm:"index;not null"`
	Tontine      Tontine `gorm:"foreignKey:TontineID"`
	MembreID     uint    `gorm:"index;not null"`
	Membre       Membre  `gorm:"foreignKey:MembreID"`
	Cycle        int     `gorm:"not null;index"`
	Montant      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Statut       string          `gorm:"size:16;not null;default:PAYEE"`
	DatePaiement *time.Time      `gorm:"index"`
	NumeroRecu   string          `gorm:"size:64"`
}

// CycleTontine tracks one rotation; closing it pays the pooled pot out to the beneficiary.
type CycleTontine struct {
	ID                   uint `gorm:"primaryKey"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	TontineID            uint    `gorm:"index;not null;uniqueIndex:idx_tontine_cycle"`
	Tontine              Tontine `gorm:"foreignKey:TontineID"`
	Numero               int     `gorm:"not null;uniqueIndex:idx_tontine_cycle"`
	BeneficiaireMembreID *uint   `gorm:"index"`
	BeneficiaireMembre   *Membre `gorm:"foreignKey:BeneficiaireMembreID"`
	MontantTotal         decimal.Decimal `gorm:"type:decimal(14,2);default:0"`
	Statut               string          `gorm:"size:16;not null;default:EN_COURS;index"`
	DateCloture          *time.Time      `gorm:"index"`
}
