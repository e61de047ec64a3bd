package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCredit type discriminators as stored by the data store.
const (
	CreditDecaissement  = "DECAISSEMENT"
	CreditRemboursement = "REMBOURSEMENT"
)

// GenreBeneficiaire discriminates the membre-or-client union.
type GenreBeneficiaire int

const (
	BeneficiaireInconnu GenreBeneficiaire = iota
	BeneficiaireMembre
	BeneficiaireClient
)

// Beneficiaire is the person behind a financial event: a membre, a client or
// nobody resolvable. Source rows carry two nullable foreign keys; this union
// is the single place that ambiguity is resolved.
type Beneficiaire struct {
	Genre GenreBeneficiaire
	Nom   string
}

// PourMembre builds a membre beneficiary.
func PourMembre(nom string) Beneficiaire {
	return Beneficiaire{Genre: BeneficiaireMembre, Nom: nom}
}

// PourClient builds a client beneficiary.
func PourClient(nom string) Beneficiaire {
	return Beneficiaire{Genre: BeneficiaireClient, Nom: nom}
}

// Libelle returns the display name, "Inconnu" when unresolved.
func (b Beneficiaire) Libelle() string {
	if b.Genre == BeneficiaireInconnu || b.Nom == "" {
		return "Inconnu"
	}
	return b.Nom
}

// VenteRecord is a sale of goods drawn against a food credit.
type VenteRecord struct {
	ID           uint
	Date         time.Time
	Produit      string
	Quantite     int
	PrixUnitaire decimal.Decimal
	Beneficiaire Beneficiaire
}

// CotisationRecord is a dues payment. DatePaiement may be nil when a row that
// was never marked paid leaks through; such rows are skipped.
type CotisationRecord struct {
	ID           uint
	DatePaiement *time.Time
	Periode      string
	Montant      decimal.Decimal
	Beneficiaire Beneficiaire
}

// CotisationTontineRecord is one member's tontine contribution payment.
type CotisationTontineRecord struct {
	ID           uint
	DatePaiement *time.Time
	Tontine      string
	Membre       string
	Montant      decimal.Decimal
}

// TransactionCreditRecord is a credit disbursement or repayment.
type TransactionCreditRecord struct {
	ID           uint
	Date         time.Time
	Type         string // CreditDecaissement | CreditRemboursement
	Montant      decimal.Decimal
	Beneficiaire Beneficiaire
}

// MouvementStockRecord is a stock replenishment (ENTREE rows only).
type MouvementStockRecord struct {
	ID           uint
	Date         time.Time
	Produit      string
	Quantite     int
	PrixUnitaire decimal.Decimal
}

// CycleTontineRecord is a completed tontine cycle, i.e. a payout of the pot.
type CycleTontineRecord struct {
	ID           uint
	DateCloture  *time.Time
	Tontine      string
	Numero       int
	MontantTotal decimal.Decimal
	Beneficiaire Beneficiaire
}

// Source exposes the six read-only finder operations the aggregator consumes.
// Every finder is scoped to [du, au]; status predicates (PAYEE, ENTREE,
// TERMINE) are the implementation's responsibility. Injected so tests can
// substitute an in-memory fake.
type Source interface {
	VentesCredit(ctx context.Context, du, au time.Time) ([]VenteRecord, error)
	CotisationsPayees(ctx context.Context, du, au time.Time) ([]CotisationRecord, error)
	CotisationsTontinePayees(ctx context.Context, du, au time.Time) ([]CotisationTontineRecord, error)
	TransactionsCredit(ctx context.Context, du, au time.Time, typ string) ([]TransactionCreditRecord, error)
	EntreesStock(ctx context.Context, du, au time.Time) ([]MouvementStockRecord, error)
	CyclesTermines(ctx context.Context, du, au time.Time) ([]CycleTontineRecord, error)
}
