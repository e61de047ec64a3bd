package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"musoba/pkg/journal"

	"github.com/gin-gonic/gin"
)

// parseDateParam accepts plain dates ("2006-01-02") or full RFC3339 stamps.
func parseDateParam(v string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// journalHandler serves the unified accounting view. All parameters are
// optional; any aggregation failure collapses to a generic 500.
func journalHandler(c *gin.Context) {
	var f journal.Filtres
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	f.Type = journal.Type(c.DefaultQuery("type", "TOUS"))
	f.Categorie = journal.Categorie(c.Query("categorie"))
	f.Search = c.Query("search")
	if v := c.Query("dateDebut"); v != "" {
		if t, ok := parseDateParam(v); ok {
			f.DateDebut = t
		}
	}
	if v := c.Query("dateFin"); v != "" {
		if t, ok := parseDateParam(v); ok {
			f.DateFin = t
		}
	}

	page, err := journalAgg.Journal(c.Request.Context(), f)
	if err != nil {
		log.Printf("journal aggregation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur serveur"})
		return
	}

	data := make([]gin.H, 0, len(page.Entrees))
	for _, e := range page.Entrees {
		data = append(data, gin.H{
			"id":        e.ID,
			"sourceId":  e.SourceID,
			"date":      e.Date.Format(time.RFC3339),
			"type":      e.Type,
			"categorie": e.Categorie,
			"libelle":   e.Libelle,
			"montant":   e.Montant.InexactFloat64(),
			"reference": e.Reference,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"totaux": gin.H{
			"encaissements": page.Totaux.Encaissements.InexactFloat64(),
			"decaissements": page.Totaux.Decaissements.InexactFloat64(),
			"activite":      page.Totaux.Activite.InexactFloat64(),
			"net":           page.Totaux.Net.InexactFloat64(),
		},
		"meta": gin.H{
			"total":      page.Total,
			"page":       page.Page,
			"limit":      page.Limit,
			"totalPages": page.TotalPages,
			"dateDebut":  page.DateDebut.Format(time.RFC3339),
			"dateFin":    page.DateFin.Format(time.RFC3339),
		},
	})
}
