package main

import (
	"net/http"

	"musoba/models"

	"github.com/gin-gonic/gin"
)

// listMembresHandler returns a paginated member list, optionally filtered by a
// name fragment (?q=) and active state (?actif=true|false).
func listMembresHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.Membre{})
	if term := c.Query("q"); term != "" {
		like := "%" + term + "%"
		q = q.Where("nom ILIKE ? OR prenom ILIKE ? OR telephone ILIKE ?", like, like, like)
	}
	if v := c.Query("actif"); v != "" {
		q = q.Where("actif = ?", v == "true")
	}
	var total int64
	q.Count(&total)
	var membres []models.Membre
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&membres).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": membres, "total": total, "page": page, "limit": limit})
}

func createMembreHandler(c *gin.Context) {
	var req struct {
		Nom       string `json:"nom" binding:"required"`
		Prenom    string `json:"prenom"`
		Telephone string `json:"telephone"`
		Email     string `json:"email"`
		Adresse   string `json:"adresse"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := models.Membre{Nom: req.Nom, Prenom: req.Prenom, Telephone: req.Telephone, Email: req.Email, Adresse: req.Adresse, Actif: true}
	if err := db.Create(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": m.ID})
}

func getMembreHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var m models.Membre
	if err := db.First(&m, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "membre not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func updateMembreHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var m models.Membre
	if err := db.First(&m, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "membre not found"})
		return
	}
	var req struct {
		Nom       *string `json:"nom"`
		Prenom    *string `json:"prenom"`
		Telephone *string `json:"telephone"`
		Email     *string `json:"email"`
		Adresse   *string `json:"adresse"`
		Actif     *bool   `json:"actif"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Nom != nil {
		m.Nom = *req.Nom
	}
	if req.Prenom != nil {
		m.Prenom = *req.Prenom
	}
	if req.Telephone != nil {
		m.Telephone = *req.Telephone
	}
	if req.Email != nil {
		m.Email = *req.Email
	}
	if req.Adresse != nil {
		m.Adresse = *req.Adresse
	}
	if req.Actif != nil {
		m.Actif = *req.Actif
	}
	if err := db.Save(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// deleteMembreHandler soft-deletes; admin only.
func deleteMembreHandler(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := db.Delete(&models.Membre{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "membre deleted"})
}
