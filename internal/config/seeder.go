package config

import (
	"log"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedSampleData(); err != nil {
		log.Printf("⚠️ Sample data seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if an admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:    "admin@dormdesk.local",
		Password: hashedPassword,
		FullName: "Desk Administrator",
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedSampleData seeds a few items and students for development
func (s *Seeder) seedSampleData() error {
	var count int64
	s.db.Model(&models.Item{}).Count(&count)
	if count > 0 {
		return nil
	}

	tag := func(v string) *string { return &v }
	items := []models.Item{
		{Name: "Vacuum cleaner", Category: "cleaning", AssetTag: tag("VC-001"), IsActive: true},
		{Name: "Iron", Category: "laundry", AssetTag: tag("IR-001"), IsActive: true},
		{Name: "Table-tennis paddle set", Category: "sports", AssetTag: tag("TT-001"), IsActive: true},
		{Name: "Projector", Category: "media", AssetTag: tag("PJ-001"), IsActive: true},
	}
	if err := s.db.Create(&items).Error; err != nil {
		return err
	}

	students := []models.Student{
		{StudentNo: "S2024001", FirstName: "Mira", LastName: "Sommer", Room: "A-112"},
		{StudentNo: "S2024002", FirstName: "Jonas", LastName: "Keller", Room: "B-207"},
	}
	if err := s.db.Create(&students).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d items and %d students", len(items), len(students))
	return nil
}
