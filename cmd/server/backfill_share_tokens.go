package main

// Helper: go run ./cmd/server -backfill-share-tokens
// Assigns share tokens to enquiries created before public quote links existed.

import (
	"flag"
	"log"

	"github.com/google/uuid"

	"github.com/diewo77/catering-app/internal/db"
	"github.com/diewo77/catering-app/internal/models"
)

func runBackfillShareTokens() {
	conn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	var enquiries []models.Enquiry
	if err := conn.Where("share_token = '' OR share_token IS NULL").Find(&enquiries).Error; err != nil {
		log.Fatalf("list enquiries: %v", err)
	}
	updated := 0
	for _, e := range enquiries {
		if err := conn.Model(&models.Enquiry{}).Where("id = ?", e.ID).Update("share_token", uuid.NewString()).Error; err == nil {
			updated++
		}
	}
	log.Printf("Backfill done: %d updated", updated)
}

var backfillFlag = flag.Bool("backfill-share-tokens", false, "Backfill missing enquiry share tokens and exit")
