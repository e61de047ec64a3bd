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

var (
	errCreditSuspendu = errors.New("credit suspended")
	errPlafondDepasse = errors.New("plafond exceeded")
)

func listCreditsHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.CreditAlimentaire{}).Preload("Membre").Preload("Client")
	if v := c.Query("statut"); v != "" {
		q = q.Where("statut = ?", v)
	}
	if v := c.Query("membre_id"); v != "" {
		q = q.Where("membre_id = ?", v)
	}
	if v := c.Query("client_id"); v != "" {
		q = q.Where("client_id = ?", v)
	}
	var total int64
	q.Count(&total)
	var credits []models.CreditAlimentaire
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&credits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": credits, "total": total, "page": page, "limit": limit})
}

func createCreditHandler(c *gin.Context) {
	var req struct {
		MembreID *uint           `json:"membre_id"`
		ClientID *uint           `json:"client_id"`
		Plafond  decimal.Decimal `json:"plafond" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.MembreID == nil) == (req.ClientID == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of membre_id or client_id required"})
		return
	}
	if req.Plafond.IsNegative() || req.Plafond.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plafond must be positive"})
		return
	}
	cr := models.CreditAlimentaire{
		MembreID: req.MembreID,
		ClientID: req.ClientID,
		Plafond:  req.Plafond,
		Solde:    decimal.Zero,
		Statut:   models.CreditActif,
	}
	if err := db.Create(&cr).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cr.ID})
}

func getCreditHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cr models.CreditAlimentaire
	if err := db.Preload("Membre").Preload("Client").Preload("Transactions").First(&cr, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "credit not found"})
		return
	}
	c.JSON(http.StatusOK, cr)
}

// createTransactionCreditHandler records a cash movement on a credit.
// DECAISSEMENT funds the allowance (solde up, cash out); REMBOURSEMENT is the
// beneficiary paying back consumed allowance (solde up, cash in). Ventes are
// what draw the solde down.
func createTransactionCreditHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Type    string          `json:"type" binding:"required"`
		Montant decimal.Decimal `json:"montant" binding:"required"`
		Date    string          `json:"date"` // optional ISO8601
		Motif   string          `json:"motif"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != models.TransactionDecaissement && req.Type != models.TransactionRemboursement {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be DECAISSEMENT or REMBOURSEMENT"})
		return
	}
	if req.Montant.IsNegative() || req.Montant.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "montant must be positive"})
		return
	}
	when := time.Now()
	if req.Date != "" {
		if t, err := time.Parse(time.RFC3339, req.Date); err == nil {
			when = t
		}
	}
	var txc models.TransactionCredit
	err := db.Transaction(func(tx *gorm.DB) error {
		var cr models.CreditAlimentaire
		if err := tx.First(&cr, id).Error; err != nil {
			return err
		}
		if cr.Statut == models.CreditSuspendu {
			return errCreditSuspendu
		}
		nouveauSolde := cr.Solde.Add(req.Montant)
		if req.Type == models.TransactionDecaissement && nouveauSolde.GreaterThan(cr.Plafond) {
			return errPlafondDepasse
		}
		txc = models.TransactionCredit{CreditID: cr.ID, Type: req.Type, Montant: req.Montant, Date: when, Motif: req.Motif}
		if err := tx.Create(&txc).Error; err != nil {
			return err
		}
		cr.Solde = nouveauSolde
		return tx.Save(&cr).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "credit not found"})
	case errors.Is(err, errCreditSuspendu):
		c.JSON(http.StatusConflict, gin.H{"error": "credit is suspended"})
	case errors.Is(err, errPlafondDepasse):
		c.JSON(http.StatusBadRequest, gin.H{"error": "decaissement would exceed plafond"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"id": txc.ID})
	}
}
