package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeSource emulates the data store: finders apply the date window the way
// the real queries do, and count their calls so gating can be asserted.
type fakeSource struct {
	ventes       []VenteRecord
	cotisations  []CotisationRecord
	cotTontines  []CotisationTontineRecord
	transactions []TransactionCreditRecord
	entreesStock []MouvementStockRecord
	cycles       []CycleTontineRecord
	err          error
	appels       map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{appels: map[string]int{}}
}

func dansFenetre(d, du, au time.Time) bool {
	return !d.Before(du) && !d.After(au)
}

func (f *fakeSource) VentesCredit(_ context.Context, du, au time.Time) ([]VenteRecord, error) {
	f.appels["ventes"]++
	if f.err != nil {
		return nil, f.err
	}
	var out []VenteRecord
	for _, v := range f.ventes {
		if dansFenetre(v.Date, du, au) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeSource) CotisationsPayees(_ context.Context, du, au time.Time) ([]CotisationRecord, error) {
	f.appels["cotisations"]++
	if f.err != nil {
		return nil, f.err
	}
	var out []CotisationRecord
	for _, c := range f.cotisations {
		if c.DatePaiement == nil || dansFenetre(*c.DatePaiement, du, au) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) CotisationsTontinePayees(_ context.Context, du, au time.Time) ([]CotisationTontineRecord, error) {
	f.appels["cotTontines"]++
	if f.err != nil {
		return nil, f.err
	}
	var out []CotisationTontineRecord
	for _, c := range f.cotTontines {
		if c.DatePaiement == nil || dansFenetre(*c.DatePaiement, du, au) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) TransactionsCredit(_ context.Context, du, au time.Time, typ string) ([]TransactionCreditRecord, error) {
	f.appels["transactions:"+typ]++
	if f.err != nil {
		return nil, f.err
	}
	var out []TransactionCreditRecord
	for _, tx := range f.transactions {
		if tx.Type == typ && dansFenetre(tx.Date, du, au) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeSource) EntreesStock(_ context.Context, du, au time.Time) ([]MouvementStockRecord, error) {
	f.appels["entreesStock"]++
	if f.err != nil {
		return nil, f.err
	}
	var out []MouvementStockRecord
	for _, m := range f.entreesStock {
		if dansFenetre(m.Date, du, au) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeSource) CyclesTermines(_ context.Context, du, au time.Time) ([]CycleTontineRecord, error) {
	f.appels["cycles"]++
	if f.err != nil {
		return nil, f.err
	}
	var out []CycleTontineRecord
	for _, cy := range f.cycles {
		if cy.DateCloture == nil || dansFenetre(*cy.DateCloture, du, au) {
			out = append(out, cy)
		}
	}
	return out, nil
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func ptr(t time.Time) *time.Time { return &t }

var jourD = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// The concrete scenario: one paid cotisation of 25000 on day D, one sale of
// 3x1000 on day D, one stock entry of 10x500 on day D-1.
func TestScenarioTroisEntrees(t *testing.T) {
	src := newFakeSource()
	src.cotisations = []CotisationRecord{{ID: 1, DatePaiement: ptr(jourD), Periode: "2026-03", Montant: dec(25000), Beneficiaire: PourMembre("Awa Diallo")}}
	src.ventes = []VenteRecord{{ID: 7, Date: jourD, Produit: "Riz", Quantite: 3, PrixUnitaire: dec(1000), Beneficiaire: PourClient("Moussa Ba")}}
	src.entreesStock = []MouvementStockRecord{{ID: 4, Date: jourD.AddDate(0, 0, -1), Produit: "Riz", Quantite: 10, PrixUnitaire: dec(500)}}

	page, err := New(src).Journal(context.Background(), Filtres{DateDebut: jourD.AddDate(0, 0, -20), DateFin: jourD})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 3 || page.Total != 3 {
		t.Fatalf("expected 3 entries got %d (total=%d)", len(page.Entrees), page.Total)
	}
	if !page.Totaux.Encaissements.Equal(dec(25000)) {
		t.Errorf("encaissements = %s, want 25000", page.Totaux.Encaissements)
	}
	if !page.Totaux.Activite.Equal(dec(3000)) {
		t.Errorf("activite = %s, want 3000", page.Totaux.Activite)
	}
	if !page.Totaux.Decaissements.Equal(dec(5000)) {
		t.Errorf("decaissements = %s, want 5000", page.Totaux.Decaissements)
	}
	if !page.Totaux.Net.Equal(dec(20000)) {
		t.Errorf("net = %s, want 20000", page.Totaux.Net)
	}
	// same-day order is whatever the stable sort keeps, but the older stock
	// entry must come last
	last := page.Entrees[2]
	if last.Categorie != CategorieStockEntree {
		t.Errorf("last entry = %s, want STOCK_ENTREE", last.Categorie)
	}
	if page.Entrees[0].Date.Before(page.Entrees[1].Date) {
		t.Errorf("dates not in descending order")
	}
}

func TestEntreeFormats(t *testing.T) {
	src := newFakeSource()
	src.ventes = []VenteRecord{{ID: 42, Date: jourD, Produit: "Huile", Quantite: 2, PrixUnitaire: dec(750), Beneficiaire: PourMembre("Fatou Ndiaye")}}

	page, err := New(src).Journal(context.Background(), Filtres{Categorie: CategorieVente, DateFin: jourD})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 1 {
		t.Fatalf("expected 1 entry got %d", len(page.Entrees))
	}
	e := page.Entrees[0]
	if e.ID != "VENTE-42" {
		t.Errorf("id = %q, want VENTE-42", e.ID)
	}
	if e.SourceID != 42 {
		t.Errorf("sourceId = %d, want 42", e.SourceID)
	}
	if e.Reference != "VTE-00042" {
		t.Errorf("reference = %q, want VTE-00042", e.Reference)
	}
	if !e.Montant.Equal(dec(1500)) {
		t.Errorf("montant = %s, want 1500", e.Montant)
	}
	if !strings.Contains(e.Libelle, "Huile") || !strings.Contains(e.Libelle, "Fatou Ndiaye") {
		t.Errorf("libelle missing product or beneficiary: %q", e.Libelle)
	}
}

// Totals are over the whole filtered set and identical on every page;
// concatenating all pages yields exactly Total entries, no duplicates, dates
// never increasing across page boundaries.
func TestPaginationEtTotaux(t *testing.T) {
	src := newFakeSource()
	for i := 1; i <= 18; i++ {
		src.cotisations = append(src.cotisations, CotisationRecord{
			ID: uint(i), DatePaiement: ptr(jourD.AddDate(0, 0, -i)), Periode: "2026-03",
			Montant: dec(int64(1000 * i)), Beneficiaire: PourMembre(fmt.Sprintf("Membre %d", i)),
		})
	}
	for i := 1; i <= 7; i++ {
		src.entreesStock = append(src.entreesStock, MouvementStockRecord{
			ID: uint(i), Date: jourD.AddDate(0, 0, -i), Produit: "Mil", Quantite: i, PrixUnitaire: dec(200),
		})
	}
	agg := New(src)

	f := Filtres{Limit: 10, DateDebut: jourD.AddDate(0, 0, -30), DateFin: jourD}
	first, err := agg.Journal(context.Background(), f)
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if first.Total != 25 {
		t.Fatalf("total = %d, want 25", first.Total)
	}
	if first.TotalPages != 3 {
		t.Fatalf("totalPages = %d, want 3", first.TotalPages)
	}

	var all []Entree
	sommeEnc, sommeDec := decimal.Zero, decimal.Zero
	for p := 1; p <= first.TotalPages; p++ {
		f.Page = p
		page, err := agg.Journal(context.Background(), f)
		if err != nil {
			t.Fatalf("page %d failed: %v", p, err)
		}
		if !page.Totaux.Encaissements.Equal(first.Totaux.Encaissements) ||
			!page.Totaux.Decaissements.Equal(first.Totaux.Decaissements) {
			t.Errorf("page %d totals differ from page 1", p)
		}
		all = append(all, page.Entrees...)
	}
	if len(all) != first.Total {
		t.Fatalf("concatenated %d entries, want %d", len(all), first.Total)
	}
	vus := map[string]bool{}
	for i, e := range all {
		if vus[e.ID] {
			t.Errorf("duplicate entry %s", e.ID)
		}
		vus[e.ID] = true
		if i > 0 && all[i-1].Date.Before(e.Date) {
			t.Errorf("date order broken at index %d", i)
		}
		switch e.Type {
		case TypeEncaissement:
			sommeEnc = sommeEnc.Add(e.Montant)
		case TypeDecaissement:
			sommeDec = sommeDec.Add(e.Montant)
		}
	}
	if !sommeEnc.Equal(first.Totaux.Encaissements) {
		t.Errorf("sum over pages %s != totaux.encaissements %s", sommeEnc, first.Totaux.Encaissements)
	}
	if !sommeDec.Equal(first.Totaux.Decaissements) {
		t.Errorf("sum over pages %s != totaux.decaissements %s", sommeDec, first.Totaux.Decaissements)
	}
	if !first.Totaux.Net.Equal(first.Totaux.Encaissements.Sub(first.Totaux.Decaissements)) {
		t.Errorf("net %s != encaissements - decaissements", first.Totaux.Net)
	}
}

// dateFin is inclusive to end-of-day; earlier/later events stay out.
func TestFenetreDates(t *testing.T) {
	fin := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) // midnight, must stretch to 23:59:59.999
	src := newFakeSource()
	src.cotisations = []CotisationRecord{
		{ID: 1, DatePaiement: ptr(time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)), Periode: "2026-03", Montant: dec(100)},
		{ID: 2, DatePaiement: ptr(time.Date(2026, 3, 16, 1, 0, 0, 0, time.UTC)), Periode: "2026-03", Montant: dec(100)},
		{ID: 3, DatePaiement: ptr(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)), Periode: "2026-02", Montant: dec(100)},
	}
	page, err := New(src).Journal(context.Background(), Filtres{DateDebut: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), DateFin: fin})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 1 || page.Entrees[0].ID != "COTISATION-1" {
		t.Fatalf("expected only COTISATION-1, got %+v", page.Entrees)
	}
	for _, e := range page.Entrees {
		if e.Date.Before(page.DateDebut) || e.Date.After(page.DateFin) {
			t.Errorf("entry %s outside resolved window", e.ID)
		}
	}
	if page.DateFin.Hour() != 23 || page.DateFin.Minute() != 59 {
		t.Errorf("dateFin not normalized to end-of-day: %s", page.DateFin)
	}
}

// Every category maps to its fixed type.
func TestTableTypesCategories(t *testing.T) {
	src := newFakeSource()
	src.ventes = []VenteRecord{{ID: 1, Date: jourD, Produit: "Riz", Quantite: 1, PrixUnitaire: dec(100)}}
	src.cotisations = []CotisationRecord{{ID: 1, DatePaiement: ptr(jourD), Periode: "2026-03", Montant: dec(100)}}
	src.cotTontines = []CotisationTontineRecord{{ID: 1, DatePaiement: ptr(jourD), Tontine: "Ndeye", Membre: "Awa", Montant: dec(100)}}
	src.transactions = []TransactionCreditRecord{
		{ID: 1, Date: jourD, Type: CreditRemboursement, Montant: dec(100)},
		{ID: 2, Date: jourD, Type: CreditDecaissement, Montant: dec(100)},
	}
	src.entreesStock = []MouvementStockRecord{{ID: 1, Date: jourD, Produit: "Riz", Quantite: 1, PrixUnitaire: dec(100)}}
	src.cycles = []CycleTontineRecord{{ID: 1, DateCloture: ptr(jourD), Tontine: "Ndeye", Numero: 2, MontantTotal: dec(100)}}

	page, err := New(src).Journal(context.Background(), Filtres{DateFin: jourD})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 7 {
		t.Fatalf("expected one entry per category, got %d", len(page.Entrees))
	}
	attendus := map[Categorie]Type{
		CategorieVente:             TypeActivite,
		CategorieCotisation:        TypeEncaissement,
		CategorieCotisationTontine: TypeEncaissement,
		CategorieCreditRembourse:   TypeEncaissement,
		CategorieStockEntree:       TypeDecaissement,
		CategorieCreditDecaisse:    TypeDecaissement,
		CategorieTontineCloture:    TypeDecaissement,
	}
	for _, e := range page.Entrees {
		if attendus[e.Categorie] != e.Type {
			t.Errorf("%s has type %s, want %s", e.Categorie, e.Type, attendus[e.Categorie])
		}
		typ, ok := TypePourCategorie(e.Categorie)
		if !ok || typ != e.Type {
			t.Errorf("TypePourCategorie(%s) = %s/%v, entry says %s", e.Categorie, typ, ok, e.Type)
		}
		if e.Montant.IsNegative() {
			t.Errorf("%s has negative montant %s", e.ID, e.Montant)
		}
	}
}

// Case-insensitive substring search on libelle and reference, non-ASCII
// included.
func TestRecherche(t *testing.T) {
	src := newFakeSource()
	src.ventes = []VenteRecord{
		{ID: 1, Date: jourD, Produit: "Riz du Marché", Quantite: 1, PrixUnitaire: dec(100), Beneficiaire: PourMembre("Awa")},
		{ID: 2, Date: jourD, Produit: "Huile", Quantite: 1, PrixUnitaire: dec(100), Beneficiaire: PourMembre("Moussa")},
	}
	src.cotisations = []CotisationRecord{{ID: 9, DatePaiement: ptr(jourD), Periode: "2026-03", Montant: dec(100), Beneficiaire: PourMembre("Marchéba Sow")}}

	page, err := New(src).Journal(context.Background(), Filtres{Search: "MARCHÉ", DateFin: jourD})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 2 {
		t.Fatalf("expected 2 matches got %d", len(page.Entrees))
	}
	for _, e := range page.Entrees {
		l := strings.ToLower(e.Libelle)
		r := strings.ToLower(e.Reference)
		if !strings.Contains(l, "marché") && !strings.Contains(r, "marché") {
			t.Errorf("entry %s does not match search: %q / %q", e.ID, e.Libelle, e.Reference)
		}
	}

	// reference matches too
	page, err = New(src).Journal(context.Background(), Filtres{Search: "cot-00009", DateFin: jourD})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 1 || page.Entrees[0].Reference != "COT-00009" {
		t.Fatalf("reference search failed: %+v", page.Entrees)
	}
}

// Gating: only sources whose fixed type/category pass the filters are queried.
func TestGatingParFiltre(t *testing.T) {
	src := newFakeSource()
	_, err := New(src).Journal(context.Background(), Filtres{Type: TypeEncaissement})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if src.appels["ventes"] != 0 || src.appels["entreesStock"] != 0 || src.appels["cycles"] != 0 {
		t.Errorf("type filter did not skip non-encaissement sources: %v", src.appels)
	}
	if src.appels["cotisations"] != 1 || src.appels["cotTontines"] != 1 {
		t.Errorf("encaissement sources not queried exactly once: %v", src.appels)
	}
	if src.appels["transactions:"+CreditRemboursement] != 1 || src.appels["transactions:"+CreditDecaissement] != 0 {
		t.Errorf("credit transactions gating wrong: %v", src.appels)
	}

	src = newFakeSource()
	_, err = New(src).Journal(context.Background(), Filtres{Categorie: CategorieVente})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	for k, n := range src.appels {
		if k == "ventes" {
			if n != 1 {
				t.Errorf("ventes queried %d times", n)
			}
		} else if n != 0 {
			t.Errorf("source %s queried despite category filter", k)
		}
	}
}

// A single failing source fails the whole request, no partial results.
func TestEchecSource(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("db down")
	src.cotisations = []CotisationRecord{{ID: 1, DatePaiement: ptr(jourD), Periode: "2026-03", Montant: dec(100)}}
	page, err := New(src).Journal(context.Background(), Filtres{})
	if err == nil {
		t.Fatal("expected error")
	}
	if page != nil {
		t.Fatalf("expected no partial result, got %+v", page)
	}
	if !strings.Contains(err.Error(), "db down") {
		t.Errorf("error does not wrap cause: %v", err)
	}
}

func TestDefautsEtBornes(t *testing.T) {
	cases := []struct {
		nom       string
		f         Filtres
		wantPage  int
		wantLimit int
	}{
		{"defaults", Filtres{}, 1, 20},
		{"limit below floor", Filtres{Limit: 5}, 1, 10},
		{"limit above ceiling", Filtres{Limit: 500}, 1, 50},
		{"page zero", Filtres{Page: 0}, 1, 20},
		{"negative page", Filtres{Page: -3}, 1, 20},
	}
	agg := New(newFakeSource())
	for _, tc := range cases {
		page, err := agg.Journal(context.Background(), tc.f)
		if err != nil {
			t.Fatalf("%s: %v", tc.nom, err)
		}
		if page.Page != tc.wantPage || page.Limit != tc.wantLimit {
			t.Errorf("%s: got page=%d limit=%d, want %d/%d", tc.nom, page.Page, page.Limit, tc.wantPage, tc.wantLimit)
		}
	}

	// default window is 30 days ending now
	page, err := agg.Journal(context.Background(), Filtres{})
	if err != nil {
		t.Fatal(err)
	}
	if d := page.DateFin.Sub(page.DateDebut); d < 29*24*time.Hour || d > 31*24*time.Hour {
		t.Errorf("default window = %s, want ~30 days", d)
	}
}

// Rows that were never stamped with their payment/closure date are skipped,
// never surfaced as entries.
func TestDatesManquantesIgnorees(t *testing.T) {
	src := newFakeSource()
	src.cotisations = []CotisationRecord{
		{ID: 1, DatePaiement: nil, Periode: "2026-03", Montant: dec(100)},
		{ID: 2, DatePaiement: ptr(jourD), Periode: "2026-03", Montant: dec(200)},
	}
	src.cycles = []CycleTontineRecord{{ID: 5, DateCloture: nil, Tontine: "Ndeye", Numero: 1, MontantTotal: dec(900)}}

	page, err := New(src).Journal(context.Background(), Filtres{DateFin: jourD})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 1 || page.Entrees[0].ID != "COTISATION-2" {
		t.Fatalf("expected only COTISATION-2, got %+v", page.Entrees)
	}
	if !page.Totaux.Encaissements.Equal(dec(200)) {
		t.Errorf("skipped rows leaked into totals: %s", page.Totaux.Encaissements)
	}
}

// Pages past the end are empty but still carry the full meta.
func TestPageAuDela(t *testing.T) {
	src := newFakeSource()
	src.cotisations = []CotisationRecord{{ID: 1, DatePaiement: ptr(jourD), Periode: "2026-03", Montant: dec(100)}}
	page, err := New(src).Journal(context.Background(), Filtres{Page: 9, DateFin: jourD})
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(page.Entrees) != 0 {
		t.Errorf("expected empty page, got %d entries", len(page.Entrees))
	}
	if page.Total != 1 || page.TotalPages != 1 {
		t.Errorf("meta wrong on overflow page: total=%d totalPages=%d", page.Total, page.TotalPages)
	}
}
