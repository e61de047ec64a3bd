package main

import (
	"net/http"

	"musoba/models"

	"github.com/gin-gonic/gin"
)

func listClientsHandler(c *gin.Context) {
	page, limit, offset := pageParams(c)
	q := db.Model(&models.Client{})
	if term := c.Query("q"); term != "" {
		like := "%" + term + "%"
		q = q.Where("nom ILIKE ? OR prenom ILIKE ? OR telephone ILIKE ?", like, like, like)
	}
	var total int64
	q.Count(&total)
	var clients []models.Client
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": clients, "total": total, "page": page, "limit": limit})
}

func createClientHandler(c *gin.Context) {
	var req struct {
		Nom       string `json:"nom" binding:"required"`
		Prenom    string `json:"prenom"`
		Telephone string `json:"telephone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cl := models.Client{Nom: req.Nom, Prenom: req.Prenom, Telephone: req.Telephone, Actif: true}
	if err := db.Create(&cl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cl.ID})
}

func getClientHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cl models.Client
	if err := db.First(&cl, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	c.JSON(http.StatusOK, cl)
}

func updateClientHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var cl models.Client
	if err := db.First(&cl, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	var req struct {
		Nom       *string `json:"nom"`
		Prenom    *string `json:"prenom"`
		Telephone *string `json:"telephone"`
		Actif     *bool   `json:"actif"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Nom != nil {
		cl.Nom = *req.Nom
	}
	if req.Prenom != nil {
		cl.Prenom = *req.Prenom
	}
	if req.Telephone != nil {
		cl.Telephone = *req.Telephone
	}
	if req.Actif != nil {
		cl.Actif = *req.Actif
	}
	if err := db.Save(&cl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, cl)
}

func deleteClientHandler(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := db.Delete(&models.Client{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}
