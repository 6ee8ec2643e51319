package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"jahit.id/workshop/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "01032026_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Contact{}, &models.ContactNote{},
					&models.Material{}, &models.Product{}, &models.ProductVariation{})
			},
		},
		{
			ID: "01032026_create_order_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Order{}, &models.OrderProduct{},
					&models.ProgressReport{}, &models.MaterialMovement{}, &models.OrderLink{})
			},
		},
		{
			ID: "08032026_backfill_order_completed_pcs",
			Migrate: func(tx *gorm.DB) error {
				// Orders created before completed_pcs became derived may
				// disagree with their order products; recompute once.
				return tx.Exec(`
					UPDATE orders SET completed_pcs = COALESCE(sub.total, 0)
					FROM (
						SELECT order_id, SUM(completed_qty) AS total
						FROM order_products GROUP BY order_id
					) sub
					WHERE orders.id = sub.order_id`).Error
			},
		},
		{
			ID: "15032026_index_progress_reports_created_at",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_progress_reports_order_created
					ON progress_reports (order_id, created_at DESC)`).Error
			},
		},
	})

	return m.Migrate()
}
