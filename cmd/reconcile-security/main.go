package main

import (
	"context"
	"log"

	"dwellport-backend/auth-service/security"
	"dwellport-backend/shared/config"
	"dwellport-backend/shared/database"
)

func main() {
	log.Println("🔄 Starting security record reconciliation...")

	config.LoadConfig()
	cfg := config.GetConfig()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	guard := security.NewGuard(
		security.NewGormStore(db),
		security.NewGormUserDirectory(db),
		security.Policy{
			MaxFailedAttempts:  cfg.LockoutMaxFailedAttempts,
			FailedCountCeiling: cfg.LockoutFailedCountCeil,
		},
	)

	report, err := guard.ReconcileLegacyIdentities(context.Background())
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	log.Printf("✅ Reconciliation completed: %d scanned, %d rewritten", report.Scanned, report.Rewritten)
	for _, id := range report.Orphaned {
		log.Printf("   ⚠️ Orphaned record (no matching user): %s", id)
	}
	for _, id := range report.Flagged {
		log.Printf("   ⚠️ Flagged for manual review: %s", id)
	}
}
