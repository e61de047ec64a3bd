package models

import "time"

// Client is a non-member beneficiary (buys on credit, pays dues, but holds no tontine seat).
type Client struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
	Nom       string     `gorm:"size:255;not null"`
	Prenom    string     `gorm:"size:255"`
	Telephone string     `gorm:"size:64"`
	Actif     bool       `gorm:"default:true;not null"`
}

// NomComplet returns "Prenom Nom" for display labels.
func (c Client) NomComplet() string {
	if c.Prenom == "" {
		return c.Nom
	}
	return c.Prenom + " " + c.Nom
}
