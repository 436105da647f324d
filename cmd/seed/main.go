package main

import (
	"log"

	"dwellport-backend/shared/config"
	"dwellport-backend/shared/database"
)

func main() {
	log.Println("🌱 Starting database seeding...")

	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	// Create super admin
	if err := database.CreateSuperAdmin(db, cfg.SuperAdminEmail, cfg.SuperAdminPassword, "Super", "Admin"); err != nil {
		log.Fatalf("Failed to create super admin: %v", err)
	}

	// Run seeding
	if err := database.SeedDatabase(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}
