package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"dwellport-backend/shared/database/models"
	"dwellport-backend/shared/roles"
	utils "dwellport-backend/shared/utils/auth"
)

// CreateSuperAdmin ensures an admin account exists with the given
// credentials. Existing accounts are left untouched.
func CreateSuperAdmin(db *gorm.DB, email, password, firstName, lastName string) error {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Printf("✅ Super admin already exists: %s", email)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Email:         email,
		Password:      hashedPassword,
		FirstName:     firstName,
		LastName:      lastName,
		Status:        models.UserStatusActive,
		EmailVerified: true,
		Role:          string(roles.Admin),
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	log.Printf("✅ Super admin created: %s", email)
	return nil
}

// SeedDatabase loads demo portal data: a property with units, a tenant
// living in one of them and a published announcement. Safe to run twice.
func SeedDatabase(db *gorm.DB) error {
	var propertyCount int64
	if err := db.Model(&models.Property{}).Count(&propertyCount).Error; err != nil {
		return err
	}
	if propertyCount > 0 {
		log.Println("✅ Demo data already present - skipping seed")
		return nil
	}

	property := models.Property{
		Name:    "Maple Court",
		Address: "12 Maple Court",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "62704",
	}
	if err := db.Create(&property).Error; err != nil {
		return fmt.Errorf("failed to seed property: %w", err)
	}

	units := []models.Unit{
		{PropertyID: property.ID, Number: "101", Bedrooms: 1, Bathrooms: 1, RentCents: 95000},
		{PropertyID: property.ID, Number: "102", Bedrooms: 2, Bathrooms: 1, RentCents: 125000, Occupied: true},
		{PropertyID: property.ID, Number: "201", Bedrooms: 2, Bathrooms: 2, RentCents: 140000},
	}
	if err := db.Create(&units).Error; err != nil {
		return fmt.Errorf("failed to seed units: %w", err)
	}

	tenantPassword, err := utils.HashPassword("tenant123")
	if err != nil {
		return err
	}
	tenant := models.User{
		Email:         "tenant@dwellport.com",
		Password:      tenantPassword,
		FirstName:     "Taylor",
		LastName:      "Reed",
		Status:        models.UserStatusActive,
		EmailVerified: true,
		Role:          string(roles.Tenant),
		UnitID:        &units[1].ID,
	}
	if err := db.Create(&tenant).Error; err != nil {
		return fmt.Errorf("failed to seed tenant: %w", err)
	}

	now := time.Now()
	announcement := models.Announcement{
		Title:       "Welcome to the resident portal",
		Body:        "Rent payments, maintenance requests and community updates all live here now.",
		Audience:    models.AnnouncementAudienceAll,
		Published:   true,
		PublishedAt: &now,
	}
	if err := db.Create(&announcement).Error; err != nil {
		return fmt.Errorf("failed to seed announcement: %w", err)
	}

	log.Println("✅ Demo portal data seeded")
	return nil
}
