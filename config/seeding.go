package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"jahit.id/workshop/models"
)

// SeedDefaultAdmin creates the first admin account so a fresh install
// can log in. Skips when any user already exists.
func SeedDefaultAdmin() {
	var count int64
	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Println("Seeding: could not count users:", err)
		return
	}
	if count > 0 {
		return
	}

	phone := os.Getenv("ADMIN_PHONE")
	if phone == "" {
		phone = "0800000000"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Seeding: could not hash admin password:", err)
		return
	}

	admin := models.User{
		Name:         "Workshop Admin",
		Email:        "admin@workshop.local",
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Println("Seeding: could not create admin user:", err)
		return
	}
	log.Println("Seeded default admin user", phone)
}
