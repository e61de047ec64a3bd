// Package journal builds the unified accounting view: it merges the six
// financial-event sources (ventes, cotisations, cotisations tontine,
// transactions credit, entrees stock, clotures tontine) into one filtered,
// sorted, paginated ledger with running totals.
package journal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Type classifies the cash direction of an entry.
type Type string

const (
	TypeTous         Type = "TOUS"
	TypeEncaissement Type = "ENCAISSEMENT"
	TypeDecaissement Type = "DECAISSEMENT"
	TypeActivite     Type = "ACTIVITE"
)

// Categorie tags the source of an entry. The set is closed.
type Categorie string

const (
	CategorieVente             Categorie = "VENTE"
	CategorieCotisation        Categorie = "COTISATION"
	CategorieCotisationTontine Categorie = "COTISATION_TONTINE"
	CategorieCreditRembourse   Categorie = "CREDIT_REMBOURSE"
	CategorieStockEntree       Categorie = "STOCK_ENTREE"
	CategorieCreditDecaisse    Categorie = "CREDIT_DECAISSE"
	CategorieTontineCloture    Categorie = "TONTINE_CLOTURE"
)

// Entree is one synthesized ledger line. Montant is always non-negative;
// direction is carried by Type alone. Entries are built per request and never
// persisted.
type Entree struct {
	ID        string
	SourceID  uint
	Date      time.Time
	Type      Type
	Categorie Categorie
	Libelle   string
	Montant   decimal.Decimal
	Reference string
}

// Totaux are computed over the whole filtered set, not just the current page.
// Net excludes activite: a vente only consumes an already-recognized inflow.
type Totaux struct {
	Encaissements decimal.Decimal
	Decaissements decimal.Decimal
	Activite      decimal.Decimal
	Net           decimal.Decimal
}

// Filtres are the caller-supplied query parameters. Zero values mean defaults:
// page 1, limit 20, type TOUS, all categories, a 30-day window ending now.
type Filtres struct {
	Page      int
	Limit     int
	Type      Type
	Categorie Categorie
	Search    string
	DateDebut time.Time
	DateFin   time.Time
}

// Page is the result of one Journal call.
type Page struct {
	Entrees    []Entree
	Totaux     Totaux
	Total      int
	Page       int
	Limit      int
	TotalPages int
	DateDebut  time.Time
	DateFin    time.Time
}

// Aggregateur merges the six sources. Stateless; safe for concurrent use.
type Aggregateur struct {
	src Source
}

// New builds an Aggregateur over the given source.
func New(src Source) *Aggregateur {
	return &Aggregateur{src: src}
}

// categorieSpec is one row of the static gating table: a category's fixed
// type, its reference prefix and how to fetch+map its raw records.
type categorieSpec struct {
	categorie Categorie
	typ       Type
	prefixe   string
	fetch     func(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error)
}

// The closed category table. Concatenation order here is also the tie-break
// order for equal dates (the sort is stable).
var categories = []categorieSpec{
	{CategorieVente, TypeActivite, "VTE", fetchVentes},
	{CategorieCotisation, TypeEncaissement, "COT", fetchCotisations},
	{CategorieCotisationTontine, TypeEncaissement, "CTN", fetchCotisationsTontine},
	{CategorieCreditRembourse, TypeEncaissement, "CRB", fetchRemboursements},
	{CategorieStockEntree, TypeDecaissement, "STE", fetchEntreesStock},
	{CategorieCreditDecaisse, TypeDecaissement, "CRD", fetchDecaissements},
	{CategorieTontineCloture, TypeDecaissement, "TCL", fetchClotures},
}

// TypePourCategorie returns the fixed type of a category and whether the
// category is known.
func TypePourCategorie(c Categorie) (Type, bool) {
	for _, cs := range categories {
		if cs.categorie == c {
			return cs.typ, true
		}
	}
	return "", false
}

// Journal runs the aggregation: gate, fetch concurrently, map, search-filter,
// sort by date descending, total, paginate. Any source failure fails the
// whole call.
func (a *Aggregateur) Journal(ctx context.Context, f Filtres) (*Page, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit == 0 {
		limit = 20
	}
	if limit < 10 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	typ := f.Type
	if typ == "" {
		typ = TypeTous
	}

	fin := f.DateFin
	if fin.IsZero() {
		fin = time.Now()
	}
	// dateFin is inclusive: force end-of-day.
	fin = time.Date(fin.Year(), fin.Month(), fin.Day(), 23, 59, 59, 999_000_000, fin.Location())
	debut := f.DateDebut
	if debut.IsZero() {
		debut = fin.AddDate(0, 0, -30)
	}

	// Fetch the gated categories concurrently; first failure cancels the rest.
	slots := make([][]Entree, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cs := range categories {
		if typ != TypeTous && cs.typ != typ {
			continue
		}
		if f.Categorie != "" && cs.categorie != f.Categorie {
			continue
		}
		i, cs := i, cs
		g.Go(func() error {
			entrees, err := cs.fetch(gctx, a.src, debut, fin, cs)
			if err != nil {
				return fmt.Errorf("journal %s: %w", cs.categorie, err)
			}
			slots[i] = entrees
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entrees []Entree
	for _, slot := range slots {
		entrees = append(entrees, slot...)
	}

	if f.Search != "" {
		motif := strings.ToLower(f.Search)
		filtrees := entrees[:0]
		for _, e := range entrees {
			if strings.Contains(strings.ToLower(e.Libelle), motif) ||
				strings.Contains(strings.ToLower(e.Reference), motif) {
				filtrees = append(filtrees, e)
			}
		}
		entrees = filtrees
	}

	// Stable: equal dates keep the category-table concatenation order.
	sort.SliceStable(entrees, func(i, j int) bool {
		return entrees[i].Date.After(entrees[j].Date)
	})

	var totaux Totaux
	for _, e := range entrees {
		switch e.Type {
		case TypeEncaissement:
			totaux.Encaissements = totaux.Encaissements.Add(e.Montant)
		case TypeDecaissement:
			totaux.Decaissements = totaux.Decaissements.Add(e.Montant)
		case TypeActivite:
			totaux.Activite = totaux.Activite.Add(e.Montant)
		}
	}
	totaux.Net = totaux.Encaissements.Sub(totaux.Decaissements)

	total := len(entrees)
	totalPages := (total + limit - 1) / limit
	deb := (page - 1) * limit
	if deb > total {
		deb = total
	}
	finIdx := deb + limit
	if finIdx > total {
		finIdx = total
	}

	return &Page{
		Entrees:    entrees[deb:finIdx],
		Totaux:     totaux,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		DateDebut:  debut,
		DateFin:    fin,
	}, nil
}

// entree assembles one ledger line. Montant is forced non-negative.
func entree(cs categorieSpec, sourceID uint, date time.Time, libelle string, montant decimal.Decimal) Entree {
	return Entree{
		ID:        fmt.Sprintf("%s-%d", cs.categorie, sourceID),
		SourceID:  sourceID,
		Date:      date,
		Type:      cs.typ,
		Categorie: cs.categorie,
		Libelle:   libelle,
		Montant:   montant.Abs(),
		Reference: fmt.Sprintf("%s-%05d", cs.prefixe, sourceID),
	}
}

func fetchVentes(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error) {
	ventes, err := s.VentesCredit(ctx, du, au)
	if err != nil {
		return nil, err
	}
	out := make([]Entree, 0, len(ventes))
	for _, v := range ventes {
		montant := v.PrixUnitaire.Mul(decimal.NewFromInt(int64(v.Quantite)))
		libelle := fmt.Sprintf("Vente %dx %s - %s", v.Quantite, v.Produit, v.Beneficiaire.Libelle())
		out = append(out, entree(cs, v.ID, v.Date, libelle, montant))
	}
	return out, nil
}

func fetchCotisations(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error) {
	cots, err := s.CotisationsPayees(ctx, du, au)
	if err != nil {
		return nil, err
	}
	out := make([]Entree, 0, len(cots))
	for _, c := range cots {
		if c.DatePaiement == nil {
			continue // never marked paid
		}
		libelle := fmt.Sprintf("Cotisation %s - %s", c.Periode, c.Beneficiaire.Libelle())
		out = append(out, entree(cs, c.ID, *c.DatePaiement, libelle, c.Montant))
	}
	return out, nil
}

func fetchCotisationsTontine(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error) {
	cots, err := s.CotisationsTontinePayees(ctx, du, au)
	if err != nil {
		return nil, err
	}
	out := make([]Entree, 0, len(cots))
	for _, c := range cots {
		if c.DatePaiement == nil {
			continue
		}
		libelle := fmt.Sprintf("Cotisation tontine %s - %s", c.Tontine, c.Membre)
		out = append(out, entree(cs, c.ID, *c.DatePaiement, libelle, c.Montant))
	}
	return out, nil
}

func fetchRemboursements(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error) {
	txs, err := s.TransactionsCredit(ctx, du, au, CreditRemboursement)
	if err != nil {
		return nil, err
	}
	out := make([]Entree, 0, len(txs))
	for _, tx := range txs {
		libelle := fmt.Sprintf("Remboursement crédit - %s", tx.Beneficiaire.Libelle())
		out = append(out, entree(cs, tx.ID, tx.Date, libelle, tx.Montant))
	}
	return out, nil
}

func fetchEntreesStock(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error) {
	mvs, err := s.EntreesStock(ctx, du, au)
	if err != nil {
		return nil, err
	}
	out := make([]Entree, 0, len(mvs))
	for _, m := range mvs {
		montant := m.PrixUnitaire.Mul(decimal.NewFromInt(int64(m.Quantite)))
		libelle := fmt.Sprintf("Approvisionnement %dx %s", m.Quantite, m.Produit)
		out = append(out, entree(cs, m.ID, m.Date, libelle, montant))
	}
	return out, nil
}

func fetchDecaissements(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error) {
	txs, err := s.TransactionsCredit(ctx, du, au, CreditDecaissement)
	if err != nil {
		return nil, err
	}
	out := make([]Entree, 0, len(txs))
	for _, tx := range txs {
		libelle := fmt.Sprintf("Décaissement crédit - %s", tx.Beneficiaire.Libelle())
		out = append(out, entree(cs, tx.ID, tx.Date, libelle, tx.Montant))
	}
	return out, nil
}

func fetchClotures(ctx context.Context, s Source, du, au time.Time, cs categorieSpec) ([]Entree, error) {
	cycles, err := s.CyclesTermines(ctx, du, au)
	if err != nil {
		return nil, err
	}
	out := make([]Entree, 0, len(cycles))
	for _, cy := range cycles {
		if cy.DateCloture == nil {
			continue
		}
		libelle := fmt.Sprintf("Clôture tontine %s cycle %d - %s", cy.Tontine, cy.Numero, cy.Beneficiaire.Libelle())
		out = append(out, entree(cs, cy.ID, *cy.DateCloture, libelle, cy.MontantTotal))
	}
	return out, nil
}
