package models

import "time"

// Noms des rôles connus, créés au démarrage par le seed.
const (
	RoleAdministrateur = "administrateur"
	RoleAgent          = "agent"
)

// Role represents an access level assigned to back-office users.
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}
