package main

import (
	"log"
	"os"
	"strings"

	"musoba/models"
	"musoba/pkg/journal"
	"musoba/pkg/journal/gormsource"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// journalAgg serves GET /journal; wired to the live DB in initDB, replaced by
// a fake source in tests.
var journalAgg *journal.Aggregateur

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	// Migrate models individually so a failure on one doesn't block others
	if shouldMigrate {
		for _, m := range []struct {
			name  string
			model any
		}{
			{"users", &models.User{}},
			{"refresh_tokens", &models.RefreshToken{}},
			{"membres", &models.Membre{}},
			{"clients", &models.Client{}},
			{"cotisations", &models.Cotisation{}},
			{"tontines", &models.Tontine{}},
			{"tontine_membres", &models.TontineMembre{}},
			{"cotisation_tontines", &models.CotisationTontine{}},
			{"cycle_tontines", &models.CycleTontine{}},
			{"credit_alimentaires", &models.CreditAlimentaire{}},
			{"transaction_credits", &models.TransactionCredit{}},
			{"produits", &models.Produit{}},
			{"mouvement_stocks", &models.MouvementStock{}},
			{"ventes", &models.Vente{}},
		} {
			if err := db.AutoMigrate(m.model); err != nil {
				log.Printf("migration warning (%s): %v", m.name, err)
			}
		}
	}

	seedDB()

	journalAgg = journal.New(gormsource.New(db))
}

func seedRoles() {
	roles := []models.Role{{Name: models.RoleAdministrateur, Description: "accès complet"}, {Name: models.RoleAgent, Description: "agent de guichet"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

func seedDB() {
	seedRoles()

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// find administrateur role id
		var role models.Role
		if err := db.Where("name = ?", models.RoleAdministrateur).First(&role).Error; err != nil {
			log.Printf("failed to find administrateur role: %v", err)
		}
		// Seed admin user
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
}
