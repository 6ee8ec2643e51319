package handlers

import (
	"fmt"
	"math/rand"
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// setupTestDB opens the database named by TEST_DB_DSN inside a
// throwaway schema so tests can run in parallel against one server.
// Tests that need it are skipped when the variable is unset.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping database test")
	}

	schema := fmt.Sprintf("handlers_test_%d", rand.Int63())

	admin, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn+" search_path="+schema), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("connect to schema: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Contact{},
		&models.ContactNote{},
		&models.Material{},
		&models.MaterialMovement{},
		&models.Product{},
		&models.ProductVariation{},
		&models.Order{},
		&models.OrderProduct{},
		&models.ProgressReport{},
		&models.OrderLink{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		admin.Exec("DROP SCHEMA " + schema + " CASCADE")
	})
	return db
}

// orderFixture is one seeded order reachable through an active link.
type orderFixture struct {
	Order    models.Order
	Product  models.Product
	Material models.Material
	Line     models.OrderProduct
	Link     models.OrderLink
}

// seedOrderWithLink creates a worker, a material-backed product, an
// order with one line (quantity 100, 40 already done) and an active
// order link.
func seedOrderWithLink(t *testing.T, db *gorm.DB) orderFixture {
	t.Helper()

	worker := models.Contact{Name: "Bu Siti", Phone: "0811111111", ContactType: models.ContactWorker, IsActive: true}
	if err := db.Create(&worker).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}

	material := models.Material{Name: "Katun Primisima", Code: "MAT-001", Unit: "meter", StockQty: 500, IsActive: true}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("seed material: %v", err)
	}

	product := models.Product{Name: "Kemeja Batik", Code: "PRD-001", Price: 150000, Unit: "pcs", IsActive: true, MaterialID: &material.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	order := models.Order{
		OrderNumber:  "ORD-TEST-001",
		Status:       models.OrderConfirmed,
		TargetPcs:    100,
		CompletedPcs: 40,
		WorkerID:     &worker.ID,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	line := models.OrderProduct{OrderID: order.ID, ProductID: product.ID, Quantity: 100, CompletedQty: 40, UnitPrice: 150000}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed order product: %v", err)
	}

	link := models.OrderLink{Token: fmt.Sprintf("tok-%d", rand.Int63()), OrderID: order.ID, IsActive: true}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}

	return orderFixture{Order: order, Product: product, Material: material, Line: line, Link: link}
}
