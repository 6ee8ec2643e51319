package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"jahit.id/workshop/models"
)

func materialRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/materials", CreateMaterial).Methods("POST")
	r.HandleFunc("/api/materials/{id}", UpdateMaterial).Methods("PUT")
	return r
}

// ledgerBalance sums a material's movements (MASUK minus KELUAR).
func ledgerBalance(t *testing.T, movements []models.MaterialMovement) float64 {
	t.Helper()
	balance := 0.0
	for _, m := range movements {
		switch m.MovementType {
		case models.MovementIn:
			balance += m.Quantity
		case models.MovementOut:
			balance -= m.Quantity
		default:
			t.Fatalf("unexpected movement type %q", m.MovementType)
		}
	}
	return balance
}

func TestCreateMaterialRecordsOpeningStock(t *testing.T) {
	db := setupTestDB(t)

	rec := doJSON(t, materialRouter(), "POST", "/api/materials", map[string]any{
		"name":     "Drill Hitam",
		"code":     "MAT-OPEN",
		"stockQty": 120,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var material models.Material
	if err := json.Unmarshal(rec.Body.Bytes(), &material); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var movements []models.MaterialMovement
	if err := db.Where("material_id = ?", material.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("got %d movements, expected 1 opening-stock MASUK", len(movements))
	}
	if movements[0].MovementType != models.MovementIn || movements[0].Quantity != 120 {
		t.Errorf("movement = %s %.1f, expected MASUK 120", movements[0].MovementType, movements[0].Quantity)
	}
	if balance := ledgerBalance(t, movements); balance != material.StockQty {
		t.Errorf("ledger balance %.1f does not explain stockQty %.1f", balance, material.StockQty)
	}
}

func TestUpdateMaterialStockAdjustment(t *testing.T) {
	db := setupTestDB(t)
	router := materialRouter()

	rec := doJSON(t, router, "POST", "/api/materials", map[string]any{
		"name":     "Benang Poly",
		"code":     "MAT-ADJ",
		"stockQty": 80,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var material models.Material
	if err := json.Unmarshal(rec.Body.Bytes(), &material); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Lowering stock writes a compensating KELUAR movement in the same
	// transaction as the material row.
	rec = doJSON(t, router, "PUT", "/api/materials/"+material.ID.String(), map[string]any{
		"stockQty": 50,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rec.Code, rec.Body.String())
	}

	var stored models.Material
	if err := db.First(&stored, "id = ?", material.ID).Error; err != nil {
		t.Fatalf("reload material: %v", err)
	}
	if stored.StockQty != 50 {
		t.Errorf("stockQty = %.1f, expected 50", stored.StockQty)
	}

	var movements []models.MaterialMovement
	if err := db.Where("material_id = ?", material.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("got %d movements, expected opening MASUK plus adjustment KELUAR", len(movements))
	}
	if balance := ledgerBalance(t, movements); balance != stored.StockQty {
		t.Errorf("ledger balance %.1f does not explain stockQty %.1f", balance, stored.StockQty)
	}
}
