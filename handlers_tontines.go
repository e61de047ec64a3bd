package main

import (
	"errors"
	"net/http"
	"time"

	"musoba/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errCycleTermine = errors.New("cycle already closed")

func listTontinesHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.Tontine{})
	if v := c.Query("statut"); v != "" {
		q = q.Where("statut = ?", v)
	}
	var total int64
	q.Count(&total)
	var tontines []models.Tontine
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&tontines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tontines, "total": total, "page": page, "limit": limit})
}

func createTontineHandler(c *gin.Context) {
	var req struct {
		Nom               string          `json:"nom" binding:"required"`
		MontantCotisation decimal.Decimal `json:"montant_cotisation" binding:"required"`
		Frequence         string          `json:"frequence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Frequence == "" {
		req.Frequence = "MENSUELLE"
	}
	t := models.Tontine{Nom: req.Nom, MontantCotisation: req.MontantCotisation, Frequence: req.Frequence, Statut: models.TontineActive}
	if err := db.Create(&t).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": t.ID})
}

func getTontineHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var t models.Tontine
	if err := db.Preload("Membres.Membre").Preload("Cycles").First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tontine not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// addTontineMembreHandler gives a member a seat with a payout order.
func addTontineMembreHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		MembreID uint `json:"membre_id" binding:"required"`
		Ordre    int  `json:"ordre" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var t models.Tontine
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tontine not found"})
		return
	}
	var m models.Membre
	if err := db.First(&m, req.MembreID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "membre not found"})
		return
	}
	tm := models.TontineMembre{TontineID: t.ID, MembreID: m.ID, Ordre: req.Ordre}
	if err := db.Create(&tm).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "membre already in tontine"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": tm.ID})
}

// createCotisationTontineHandler records a member's contribution payment for a
// cycle. Montant defaults to the tontine's fixed contribution.
func createCotisationTontineHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		MembreID uint             `json:"membre_id" binding:"required"`
		Cycle    int              `json:"cycle" binding:"required"`
		Montant  *decimal.Decimal `json:"montant"`
		Date     string           `json:"date"` // optional ISO8601
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var t models.Tontine
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tontine not found"})
		return
	}
	var seat int64
	db.Model(&models.TontineMembre{}).Where("tontine_id = ? AND membre_id = ?", t.ID, req.MembreID).Count(&seat)
	if seat == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "membre has no seat in this tontine"})
		return
	}
	// one contribution per member per cycle
	var dup int64
	db.Model(&models.CotisationTontine{}).Where("tontine_id = ? AND membre_id = ? AND cycle = ?", t.ID, req.MembreID, req.Cycle).Count(&dup)
	if dup > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "contribution already recorded for this cycle"})
		return
	}
	montant := t.MontantCotisation
	if req.Montant != nil {
		montant = *req.Montant
	}
	when := time.Now()
	if req.Date != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Date); err == nil {
			when = parsed
		}
	}
	ct := models.CotisationTontine{
		TontineID:    t.ID,
		MembreID:     req.MembreID,
		Cycle:        req.Cycle,
		Montant:      montant,
		Statut:       models.CotisationPayee,
		DatePaiement: &when,
		NumeroRecu:   numeroRecu("CTN"),
	}
	if err := db.Create(&ct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": ct.ID, "numero_recu": ct.NumeroRecu})
}

func listCyclesHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cycles []models.CycleTontine
	if err := db.Preload("BeneficiaireMembre").Where("tontine_id = ?", id).Order("numero").Find(&cycles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, cycles)
}

func createCycleHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Numero               int   `json:"numero" binding:"required"`
		BeneficiaireMembreID *uint `json:"beneficiaire_membre_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var t models.Tontine
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tontine not found"})
		return
	}
	cy := models.CycleTontine{TontineID: t.ID, Numero: req.Numero, BeneficiaireMembreID: req.BeneficiaireMembreID, Statut: models.CycleEnCours}
	if err := db.Create(&cy).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "cycle already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cy.ID})
}

// cloturerCycleHandler closes a cycle: the pot (sum of paid contributions for
// that cycle) is paid out to the beneficiary. This is the tontine payout event
// the journal reports as a decaissement.
func cloturerCycleHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cy models.CycleTontine
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cy, id).Error; err != nil {
			return err
		}
		if cy.Statut == models.CycleTermine {
			return errCycleTermine
		}
		var pot decimal.Decimal
		row := tx.Model(&models.CotisationTontine{}).
			Where("tontine_id = ? AND cycle = ? AND statut = ?", cy.TontineID, cy.Numero, models.CotisationPayee).
			Select("COALESCE(SUM(montant), 0)").Row()
		if err := row.Scan(&pot); err != nil {
			return err
		}
		now := time.Now()
		cy.MontantTotal = pot
		cy.Statut = models.CycleTermine
		cy.DateCloture = &now
		return tx.Save(&cy).Error
	})
	switch {
	case errors.Is(err, errCycleTermine):
		c.JSON(http.StatusConflict, gin.H{"error": "cycle already closed"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cycle not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cloture failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"id": cy.ID, "montant_total": cy.MontantTotal, "statut": cy.Statut})
	}
}
