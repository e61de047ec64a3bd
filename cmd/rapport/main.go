// Command rapport prints a month-bounded journal to stdout: every ledger line
// in the month plus the totals, straight from the live database.
//
// usage: go run ./cmd/rapport <YYYY-MM> [--list]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"musoba/pkg/journal"
	"musoba/pkg/journal/gormsource"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run ./cmd/rapport <YYYY-MM> [--list]")
		os.Exit(2)
	}
	month := os.Args[1]
	list := len(os.Args) > 2 && os.Args[2] == "--list"

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("invalid month format, expected YYYY-MM: %v", err)
	}
	debut := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	fin := debut.AddDate(0, 1, -1) // last day; the aggregator pushes it to end-of-day

	agg := journal.New(gormsource.New(mustDBFromEnv()))

	ctx := context.Background()
	var page *journal.Page
	for p := 1; ; p++ {
		page, err = agg.Journal(ctx, journal.Filtres{Page: p, Limit: 50, DateDebut: debut, DateFin: fin})
		if err != nil {
			log.Fatalf("journal failed: %v", err)
		}
		if list {
			for _, e := range page.Entrees {
				fmt.Printf("%s|%s|%s|%s|%s\n", e.Reference, e.Date.Format(time.RFC3339), e.Type, e.Montant.StringFixed(2), e.Libelle)
			}
		}
		if p >= page.TotalPages {
			break
		}
	}

	fmt.Printf("Rapport %s (UTC):\n", month)
	fmt.Printf("  lignes=%d encaissements=%s decaissements=%s activite=%s net=%s\n",
		page.Total,
		page.Totaux.Encaissements.StringFixed(2),
		page.Totaux.Decaissements.StringFixed(2),
		page.Totaux.Activite.StringFixed(2),
		page.Totaux.Net.StringFixed(2))
}
