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

var errStockInsuffisant = errors.New("insufficient stock")

func listProduitsHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.Produit{})
	if term := c.Query("q"); term != "" {
		q = q.Where("nom ILIKE ?", "%"+term+"%")
	}
	var total int64
	q.Count(&total)
	var produits []models.Produit
	if err := q.Order("nom").Limit(limit).Offset(offset).Find(&produits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": produits, "total": total, "page": page, "limit": limit})
}

func createProduitHandler(c *gin.Context) {
	var req struct {
		Nom          string          `json:"nom" binding:"required"`
		Unite        string          `json:"unite"`
		PrixUnitaire decimal.Decimal `json:"prix_unitaire" binding:"required"`
		SeuilAlerte  int             `json:"seuil_alerte"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := models.Produit{Nom: req.Nom, Unite: req.Unite, PrixUnitaire: req.PrixUnitaire, SeuilAlerte: req.SeuilAlerte}
	if err := db.Create(&p).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "produit already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.ID})
}

func updateProduitHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var p models.Produit
	if err := db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "produit not found"})
		return
	}
	var req struct {
		Nom          *string          `json:"nom"`
		Unite        *string          `json:"unite"`
		PrixUnitaire *decimal.Decimal `json:"prix_unitaire"`
		SeuilAlerte  *int             `json:"seuil_alerte"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Nom != nil {
		p.Nom = *req.Nom
	}
	if req.Unite != nil {
		p.Unite = *req.Unite
	}
	if req.PrixUnitaire != nil {
		p.PrixUnitaire = *req.PrixUnitaire
	}
	if req.SeuilAlerte != nil {
		p.SeuilAlerte = *req.SeuilAlerte
	}
	if err := db.Save(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func listMouvementsHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.MouvementStock{}).Preload("Produit")
	if v := c.Query("type"); v != "" {
		q = q.Where("type = ?", v)
	}
	if v := c.Query("produit_id"); v != "" {
		q = q.Where("produit_id = ?", v)
	}
	var total int64
	q.Count(&total)
	var mvs []models.MouvementStock
	if err := q.Order("date desc").Limit(limit).Offset(offset).Find(&mvs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": mvs, "total": total, "page": page, "limit": limit})
}

// createMouvementHandler records a stock change and keeps Produit.StockActuel
// in step. ENTREE is a replenishment purchase; SORTIE removes stock (losses,
// adjustments; sales write their own SORTIE rows).
func createMouvementHandler(c *gin.Context) {
	var req struct {
		ProduitID    uint             `json:"produit_id" binding:"required"`
		Type         string           `json:"type" binding:"required"`
		Quantite     int              `json:"quantite" binding:"required"`
		PrixUnitaire *decimal.Decimal `json:"prix_unitaire"`
		Motif        string           `json:"motif"`
		Date         string           `json:"date"` // optional ISO8601
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != models.MouvementEntree && req.Type != models.MouvementSortie {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be ENTREE or SORTIE"})
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
	var mv models.MouvementStock
	err := db.Transaction(func(tx *gorm.DB) error {
		var p models.Produit
		if err := tx.First(&p, req.ProduitID).Error; err != nil {
			return err
		}
		prix := p.PrixUnitaire
		if req.PrixUnitaire != nil {
			prix = *req.PrixUnitaire
		}
		if req.Type == models.MouvementSortie {
			if p.StockActuel < req.Quantite {
				return errStockInsuffisant
			}
			p.StockActuel -= req.Quantite
		} else {
			p.StockActuel += req.Quantite
		}
		mv = models.MouvementStock{ProduitID: p.ID, Type: req.Type, Quantite: req.Quantite, PrixUnitaire: prix, Date: when, Motif: req.Motif}
		if err := tx.Create(&mv).Error; err != nil {
			return err
		}
		return tx.Save(&p).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "produit not found"})
	case errors.Is(err, errStockInsuffisant):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mouvement failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"id": mv.ID})
	}
}
