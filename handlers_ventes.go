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

var errSoldeInsuffisant = errors.New("insufficient credit solde")

func listVentesHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.Vente{}).Preload("Produit").Preload("Membre").Preload("Client")
	if v := c.Query("produit_id"); v != "" {
		q = q.Where("produit_id = ?", v)
	}
	if v := c.Query("credit_id"); v != "" {
		q = q.Where("credit_id = ?", v)
	}
	var total int64
	q.Count(&total)
	var ventes []models.Vente
	if err := q.Order("date desc").Limit(limit).Offset(offset).Find(&ventes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ventes, "total": total, "page": page, "limit": limit})
}

// createVenteHandler sells a product against a food credit: one transaction
// decrements the stock, writes the SORTIE movement and draws the credit solde
// down by quantite * prix_unitaire. No cash moves.
func createVenteHandler(c *gin.Context) {
	var req struct {
		ProduitID uint   `json:"produit_id" binding:"required"`
		CreditID  uint   `json:"credit_id" binding:"required"`
		Quantite  int    `json:"quantite" binding:"required"`
		Date      string `json:"date"` // optional ISO8601
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantite <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantite must be positive"})
		return
	}
	when := time.Now()
	if req.Date != "" {
		if t, err := time.Parse(time.RFC3339, req.Date); err == nil {
			when = t
		}
	}
	var vente models.Vente
	err := db.Transaction(func(tx *gorm.DB) error {
		var p models.Produit
		if err := tx.First(&p, req.ProduitID).Error; err != nil {
			return err
		}
		var cr models.CreditAlimentaire
		if err := tx.First(&cr, req.CreditID).Error; err != nil {
			return err
		}
		if cr.Statut != models.CreditActif {
			return errCreditSuspendu
		}
		if p.StockActuel < req.Quantite {
			return errStockInsuffisant
		}
		montant := p.PrixUnitaire.Mul(decimal.NewFromInt(int64(req.Quantite)))
		if cr.Solde.LessThan(montant) {
			return errSoldeInsuffisant
		}

		vente = models.Vente{
			ProduitID:    p.ID,
			CreditID:     cr.ID,
			MembreID:     cr.MembreID,
			ClientID:     cr.ClientID,
			Quantite:     req.Quantite,
			PrixUnitaire: p.PrixUnitaire,
			Date:         when,
		}
		if err := tx.Create(&vente).Error; err != nil {
			return err
		}
		mv := models.MouvementStock{ProduitID: p.ID, Type: models.MouvementSortie, Quantite: req.Quantite, PrixUnitaire: p.PrixUnitaire, Date: when, Motif: "vente"}
		if err := tx.Create(&mv).Error; err != nil {
			return err
		}
		p.StockActuel -= req.Quantite
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		cr.Solde = cr.Solde.Sub(montant)
		return tx.Save(&cr).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "produit or credit not found"})
	case errors.Is(err, errCreditSuspendu):
		c.JSON(http.StatusConflict, gin.H{"error": "credit is not active"})
	case errors.Is(err, errStockInsuffisant):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
	case errors.Is(err, errSoldeInsuffisant):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient credit solde"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vente failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"id": vente.ID})
	}
}
