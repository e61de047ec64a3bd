// Package gormsource implements journal.Source over the application's
// Postgres schema via gorm. It is the only bridge between the stored entities
// and the aggregator's flat records.
package gormsource

import (
	"context"
	"time"

	"musoba/models"
	"musoba/pkg/journal"

	"gorm.io/gorm"
)

type source struct {
	db *gorm.DB
}

// New builds a journal.Source backed by the given gorm handle.
func New(db *gorm.DB) journal.Source {
	return &source{db: db}
}

// beneficiaire resolves the nullable membre/client pair into the union.
func beneficiaire(m *models.Membre, c *models.Client) journal.Beneficiaire {
	switch {
	case m != nil:
		return journal.PourMembre(m.NomComplet())
	case c != nil:
		return journal.PourClient(c.NomComplet())
	default:
		return journal.Beneficiaire{}
	}
}

func (s *source) VentesCredit(ctx context.Context, du, au time.Time) ([]journal.VenteRecord, error) {
	var ventes []models.Vente
	err := s.db.WithContext(ctx).
		Preload("Produit").Preload("Membre").Preload("Client").
		Where("date BETWEEN ? AND ?", du, au).
		Find(&ventes).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.VenteRecord, 0, len(ventes))
	for _, v := range ventes {
		out = append(out, journal.VenteRecord{
			ID:           v.ID,
			Date:         v.Date,
			Produit:      v.Produit.Nom,
			Quantite:     v.Quantite,
			PrixUnitaire: v.PrixUnitaire,
			Beneficiaire: beneficiaire(v.Membre, v.Client),
		})
	}
	return out, nil
}

func (s *source) CotisationsPayees(ctx context.Context, du, au time.Time) ([]journal.CotisationRecord, error) {
	var cots []models.Cotisation
	err := s.db.WithContext(ctx).
		Preload("Membre").Preload("Client").
		Where("statut = ? AND date_paiement BETWEEN ? AND ?", models.CotisationPayee, du, au).
		Find(&cots).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.CotisationRecord, 0, len(cots))
	for _, c := range cots {
		out = append(out, journal.CotisationRecord{
			ID:           c.ID,
			DatePaiement: c.DatePaiement,
			Periode:      c.Periode,
			Montant:      c.Montant,
			Beneficiaire: beneficiaire(c.Membre, c.Client),
		})
	}
	return out, nil
}

func (s *source) CotisationsTontinePayees(ctx context.Context, du, au time.Time) ([]journal.CotisationTontineRecord, error) {
	var cots []models.CotisationTontine
	err := s.db.WithContext(ctx).
		Preload("Tontine").Preload("Membre").
		Where("statut = ? AND date_paiement BETWEEN ? AND ?", models.CotisationPayee, du, au).
		Find(&cots).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.CotisationTontineRecord, 0, len(cots))
	for _, c := range cots {
		out = append(out, journal.CotisationTontineRecord{
			ID:           c.ID,
			DatePaiement: c.DatePaiement,
			Tontine:      c.Tontine.Nom,
			Membre:       c.Membre.NomComplet(),
			Montant:      c.Montant,
		})
	}
	return out, nil
}

func (s *source) TransactionsCredit(ctx context.Context, du, au time.Time, typ string) ([]journal.TransactionCreditRecord, error) {
	var txs []models.TransactionCredit
	err := s.db.WithContext(ctx).
		Preload("Credit.Membre").Preload("Credit.Client").
		Where("type = ? AND date BETWEEN ? AND ?", typ, du, au).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.TransactionCreditRecord, 0, len(txs))
	for _, tx := range txs {
		out = append(out, journal.TransactionCreditRecord{
			ID:           tx.ID,
			Date:         tx.Date,
			Type:         tx.Type,
			Montant:      tx.Montant,
			Beneficiaire: beneficiaire(tx.Credit.Membre, tx.Credit.Client),
		})
	}
	return out, nil
}

func (s *source) EntreesStock(ctx context.Context, du, au time.Time) ([]journal.MouvementStockRecord, error) {
	var mvs []models.MouvementStock
	err := s.db.WithContext(ctx).
		Preload("Produit").
		Where("type = ? AND date BETWEEN ? AND ?", models.MouvementEntree, du, au).
		Find(&mvs).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.MouvementStockRecord, 0, len(mvs))
	for _, m := range mvs {
		out = append(out, journal.MouvementStockRecord{
			ID:           m.ID,
			Date:         m.Date,
			Produit:      m.Produit.Nom,
			Quantite:     m.Quantite,
			PrixUnitaire: m.PrixUnitaire,
		})
	}
	return out, nil
}

func (s *source) CyclesTermines(ctx context.Context, du, au time.Time) ([]journal.CycleTontineRecord, error) {
	var cycles []models.CycleTontine
	err := s.db.WithContext(ctx).
		Preload("Tontine").Preload("BeneficiaireMembre").
		Where("statut = ? AND date_cloture BETWEEN ? AND ?", models.CycleTermine, du, au).
		Find(&cycles).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.CycleTontineRecord, 0, len(cycles))
	for _, cy := range cycles {
		out = append(out, journal.CycleTontineRecord{
			ID:           cy.ID,
			DateCloture:  cy.DateCloture,
			Tontine:      cy.Tontine.Nom,
			Numero:       cy.Numero,
			MontantTotal: cy.MontantTotal,
			Beneficiaire: beneficiaire(cy.BeneficiaireMembre, nil),
		})
	}
	return out, nil
}
