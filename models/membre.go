package models

import "time"

// Membre is a registered member of the mutuelle.
type Membre struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
	Nom       string     `gorm:"size:255;not null"`
	Prenom    string     `gorm:"size:255"`
	Telephone string     `gorm:"size:64"`
	Email     string     `gorm:"size:255"`
	Adresse   string     `gorm:"size:512"`
	// Actif marks soft-state instead of physically deleting the record.
	Actif bool `gorm:"default:true;not null"`
}

// NomComplet returns "Prenom Nom" for display labels.
func (m Membre) NomComplet() string {
	if m.Prenom == "" {
		return m.Nom
	}
	return m.Prenom + " " + m.Nom
}
