package main

import (
	"net/http"
	"strings"
	"time"

	"musoba/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// numeroRecu builds a short receipt number like "COT-3F2A91BC".
func numeroRecu(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// listCotisationsHandler filters by statut, periode and beneficiary.
func listCotisationsHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.Cotisation{}).Preload("Membre").Preload("Client")
	if v := c.Query("statut"); v != "" {
		q = q.Where("statut = ?", v)
	}
	if v := c.Query("periode"); v != "" {
		q = q.Where("periode = ?", v)
	}
	if v := c.Query("membre_id"); v != "" {
		q = q.Where("membre_id = ?", v)
	}
	if v := c.Query("client_id"); v != "" {
		q = q.Where("client_id = ?", v)
	}
	var total int64
	q.Count(&total)
	var cots []models.Cotisation
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&cots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cots, "total": total, "page": page, "limit": limit})
}

func createCotisationHandler(c *gin.Context) {
	var req struct {
		MembreID *uint           `json:"membre_id"`
		ClientID *uint           `json:"client_id"`
		Periode  string          `json:"periode" binding:"required"`
		Montant  decimal.Decimal `json:"montant" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// exactly one beneficiary: membre OR client
	if (req.MembreID == nil) == (req.ClientID == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of membre_id or client_id required"})
		return
	}
	if req.Montant.IsNegative() || req.Montant.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "montant must be positive"})
		return
	}
	// prevent a duplicate obligation for the same beneficiary and period
	dup := db.Model(&models.Cotisation{}).Where("periode = ?", req.Periode)
	if req.MembreID != nil {
		dup = dup.Where("membre_id = ?", *req.MembreID)
	} else {
		dup = dup.Where("client_id = ?", *req.ClientID)
	}
	var cnt int64
	dup.Count(&cnt)
	if cnt > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "cotisation already recorded for this periode"})
		return
	}
	cot := models.Cotisation{
		MembreID: req.MembreID,
		ClientID: req.ClientID,
		Periode:  req.Periode,
		Montant:  req.Montant,
		Statut:   models.CotisationEnAttente,
	}
	if err := db.Create(&cot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cot.ID})
}

// payerCotisationHandler marks a cotisation PAYEE, stamping the payment date
// and a receipt number. Paying twice is a conflict.
func payerCotisationHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date"` // optional ISO8601, defaults to now
	}
	_ = c.ShouldBindJSON(&req)
	var cot models.Cotisation
	if err := db.First(&cot, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cotisation not found"})
		return
	}
	if cot.Statut == models.CotisationPayee {
		c.JSON(http.StatusConflict, gin.H{"error": "cotisation already paid"})
		return
	}
	when := time.Now()
	if req.Date != "" {
		if t, err := time.Parse(time.RFC3339, req.Date); err == nil {
			when = t
		}
	}
	cot.Statut = models.CotisationPayee
	cot.DatePaiement = &when
	cot.NumeroRecu = numeroRecu("COT")
	if err := db.Save(&cot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cot.ID, "statut": cot.Statut, "numero_recu": cot.NumeroRecu})
}

func deleteCotisationHandler(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cot models.Cotisation
	if err := db.First(&cot, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cotisation not found"})
		return
	}
	// paid dues are part of the ledger; cancel instead of deleting
	if cot.Statut == models.CotisationPayee {
		c.JSON(http.StatusConflict, gin.H{"error": "cotisation is paid; cancel not supported via delete"})
		return
	}
	if err := db.Delete(&cot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cotisation deleted"})
}
