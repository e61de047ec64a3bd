package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"musoba/pkg/journal"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// stubSource feeds journalHandler without a database.
type stubSource struct {
	fail bool
}

func (s stubSource) VentesCredit(context.Context, time.Time, time.Time) ([]journal.VenteRecord, error) {
	if s.fail {
		return nil, errors.New("boom")
	}
	return []journal.VenteRecord{{ID: 3, Date: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), Produit: "Riz", Quantite: 2, PrixUnitaire: decimal.NewFromInt(1000), Beneficiaire: journal.PourMembre("Awa Diallo")}}, nil
}

func (s stubSource) CotisationsPayees(context.Context, time.Time, time.Time) ([]journal.CotisationRecord, error) {
	if s.fail {
		return nil, errors.New("boom")
	}
	d := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	return []journal.CotisationRecord{{ID: 8, DatePaiement: &d, Periode: "2026-03", Montant: decimal.NewFromInt(5000), Beneficiaire: journal.PourMembre("Awa Diallo")}}, nil
}

func (s stubSource) CotisationsTontinePayees(context.Context, time.Time, time.Time) ([]journal.CotisationTontineRecord, error) {
	return nil, nil
}

func (s stubSource) TransactionsCredit(context.Context, time.Time, time.Time, string) ([]journal.TransactionCreditRecord, error) {
	return nil, nil
}

func (s stubSource) EntreesStock(context.Context, time.Time, time.Time) ([]journal.MouvementStockRecord, error) {
	return nil, nil
}

func (s stubSource) CyclesTermines(context.Context, time.Time, time.Time) ([]journal.CycleTontineRecord, error) {
	return nil, nil
}

func journalTestRouter(src journal.Source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	journalAgg = journal.New(src)
	r := gin.New()
	r.GET("/journal", journalHandler)
	return r
}

func TestJournalHandlerEnvelope(t *testing.T) {
	r := journalTestRouter(stubSource{})
	req, _ := http.NewRequest(http.MethodGet, "/journal?dateDebut=2026-03-01&dateFin=2026-03-31", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			ID        string  `json:"id"`
			SourceID  uint    `json:"sourceId"`
			Date      string  `json:"date"`
			Type      string  `json:"type"`
			Categorie string  `json:"categorie"`
			Libelle   string  `json:"libelle"`
			Montant   float64 `json:"montant"`
			Reference string  `json:"reference"`
		} `json:"data"`
		Totaux struct {
			Encaissements float64 `json:"encaissements"`
			Decaissements float64 `json:"decaissements"`
			Activite      float64 `json:"activite"`
			Net           float64 `json:"net"`
		} `json:"totaux"`
		Meta struct {
			Total      int    `json:"total"`
			Page       int    `json:"page"`
			Limit      int    `json:"limit"`
			TotalPages int    `json:"totalPages"`
			DateDebut  string `json:"dateDebut"`
			DateFin    string `json:"dateFin"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if len(resp.Data) != 2 || resp.Meta.Total != 2 {
		t.Fatalf("expected 2 entries, got %d (total=%d)", len(resp.Data), resp.Meta.Total)
	}
	// cotisation (12th) before vente (10th)
	if resp.Data[0].ID != "COTISATION-8" || resp.Data[1].ID != "VENTE-3" {
		t.Errorf("unexpected order: %s, %s", resp.Data[0].ID, resp.Data[1].ID)
	}
	if resp.Totaux.Encaissements != 5000 || resp.Totaux.Activite != 2000 || resp.Totaux.Net != 5000 {
		t.Errorf("totaux wrong: %+v", resp.Totaux)
	}
	if resp.Meta.Page != 1 || resp.Meta.Limit != 20 || resp.Meta.TotalPages != 1 {
		t.Errorf("meta wrong: %+v", resp.Meta)
	}
	if _, err := time.Parse(time.RFC3339, resp.Data[0].Date); err != nil {
		t.Errorf("entry date not RFC3339: %q", resp.Data[0].Date)
	}
}

func TestJournalHandlerErreurServeur(t *testing.T) {
	r := journalTestRouter(stubSource{fail: true})
	req, _ := http.NewRequest(http.MethodGet, "/journal", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp["success"] != false || resp["message"] != "Erreur serveur" {
		t.Errorf("unexpected error body: %v", resp)
	}
}
