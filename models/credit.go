package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditAlimentaire statuses.
const (
	CreditActif    = "ACTIF"
	CreditSolde    = "SOLDE"
	CreditSuspendu = "SUSPENDU"
)

// TransactionCredit types.
const (
	TransactionDecaissement  = "DECAISSEMENT"
	TransactionRemboursement = "REMBOURSEMENT"
)

// CreditAlimentaire is a pre-funded spending allowance held by a membre OR a client.
// Solde goes up on DECAISSEMENT/REMBOURSEMENT and down when a vente draws on it.
type CreditAlimentaire struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	MembreID  *uint   `gorm:"index"`
	Membre    *Membre `gorm:"foreignKey:MembreID"`
	ClientID  *uint   `gorm:"index"`
	Client    *Client `gorm:"foreignKey:ClientID"`
	Plafond   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Solde     decimal.Decimal `gorm:"type:decimal(14,2);default:0"`
	Statut    string          `gorm:"size:16;not null;default:ACTIF;index"`
	Transactions []TransactionCredit `gorm:"foreignKey:CreditID"`
}

// TransactionCredit is a cash movement on a credit: a disbursement funding it
// or a repayment from the beneficiary.
type TransactionCredit struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	CreditID  uint              `gorm:"index;not null"`
	Credit    CreditAlimentaire `gorm:"foreignKey:CreditID"`
	Type      string            `gorm:"size:16;not null;index"` // DECAISSEMENT | REMBOURSEMENT
	Montant   decimal.Decimal   `gorm:"type:decimal(14,2);not null"`
	Date      time.Time         `gorm:"not null;index"`
	Motif     string            `gorm:"size:255"`
}
