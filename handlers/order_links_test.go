package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"jahit.id/workshop/models"
)

func portalRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/order-links/{token}", GetOrderLinkByToken).Methods("GET")
	r.HandleFunc("/api/order-links/{token}/progress", SubmitProgress).Methods("POST")
	r.HandleFunc("/api/order-links/{token}/materials", SubmitMaterialUsage).Methods("POST")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetOrderLinkByToken(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)
	router := portalRouter()

	rec := doJSON(t, router, "GET", "/api/order-links/"+fix.Link.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OrderLink  models.OrderLink         `json:"orderLink"`
		Completion models.CompletionSummary `json:"completion"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderLink.Order == nil {
		t.Fatal("expected the order to be embedded")
	}
	if resp.Completion.CompletedPcs != 40 || resp.Completion.Percent != 40 {
		t.Errorf("completion = %d pcs / %d%%, expected 40 / 40", resp.Completion.CompletedPcs, resp.Completion.Percent)
	}
}

func TestGetOrderLinkByTokenUnknown(t *testing.T) {
	setupTestDB(t)
	rec := doJSON(t, portalRouter(), "GET", "/api/order-links/no-such-token", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
}

func TestGetOrderLinkByTokenExpired(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	past := time.Now().Add(-time.Hour)
	if err := db.Model(&models.OrderLink{}).Where("id = ?", fix.Link.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("expire link: %v", err)
	}

	rec := doJSON(t, portalRouter(), "GET", "/api/order-links/"+fix.Link.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 for an expired link", rec.Code)
	}
}

func TestGetOrderLinkByTokenDeactivated(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	if err := db.Model(&models.OrderLink{}).Where("id = ?", fix.Link.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate link: %v", err)
	}

	rec := doJSON(t, portalRouter(), "GET", "/api/order-links/"+fix.Link.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 for a deactivated link", rec.Code)
	}
}

func TestSubmitProgressPerProduct(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	body := map[string]any{
		"progressType": "per-product",
		"workerName":   "Bu Siti",
		"productProgressData": []map[string]any{
			{
				"productId":      fix.Product.ID,
				"orderProductId": fix.Line.ID,
				"pcsFinished":    25,
				"materialUsed":   12.5,
				"workHours":      6,
			},
		},
	}
	rec := doJSON(t, portalRouter(), "POST", "/api/order-links/"+fix.Link.Token+"/progress", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp progressResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Completion.CompletedPcs != 65 || resp.Completion.Percent != 65 {
		t.Errorf("completion = %d pcs / %d%%, expected 65 / 65", resp.Completion.CompletedPcs, resp.Completion.Percent)
	}
	if resp.OrderCompleted {
		t.Error("order must not be completed at 65/100")
	}
	if resp.ReportsCreated != 1 {
		t.Errorf("reportsCreated = %d, expected 1", resp.ReportsCreated)
	}

	var order models.Order
	if err := db.First(&order, "id = ?", fix.Order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.CompletedPcs != 65 {
		t.Errorf("order.CompletedPcs = %d, expected 65", order.CompletedPcs)
	}
	if order.Status != models.OrderProcessing {
		t.Errorf("order.Status = %q, expected %q", order.Status, models.OrderProcessing)
	}

	var report models.ProgressReport
	if err := db.First(&report, "order_id = ?", fix.Order.ID).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.PcsFinished != 25 || report.ReporterName != "Bu Siti" {
		t.Errorf("report = %d pcs by %q, expected 25 by Bu Siti", report.PcsFinished, report.ReporterName)
	}

	// Material consumption: a KELUAR movement plus a stock decrement.
	var movement models.MaterialMovement
	if err := db.First(&movement, "order_id = ?", fix.Order.ID).Error; err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if movement.MovementType != models.MovementOut || movement.Quantity != 12.5 {
		t.Errorf("movement = %s %.1f, expected KELUAR 12.5", movement.MovementType, movement.Quantity)
	}
	var material models.Material
	if err := db.First(&material, "id = ?", fix.Material.ID).Error; err != nil {
		t.Fatalf("reload material: %v", err)
	}
	if material.StockQty != 487.5 {
		t.Errorf("stockQty = %.1f, expected 487.5", material.StockQty)
	}
}

func TestSubmitProgressRequiresWorkerName(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	body := map[string]any{
		"progressType": "per-product",
		"productProgressData": []map[string]any{
			{"productId": fix.Product.ID, "orderProductId": fix.Line.ID, "pcsFinished": 5},
		},
	}
	rec := doJSON(t, portalRouter(), "POST", "/api/order-links/"+fix.Link.Token+"/progress", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 without workerName", rec.Code)
	}
}

func TestSubmitProgressOverflowLeavesNothingBehind(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	// 100 target, 40 done: 61 overflows by one piece.
	body := map[string]any{
		"progressType": "per-product",
		"workerName":   "Bu Siti",
		"productProgressData": []map[string]any{
			{"productId": fix.Product.ID, "orderProductId": fix.Line.ID, "pcsFinished": 61},
		},
	}
	rec := doJSON(t, portalRouter(), "POST", "/api/order-links/"+fix.Link.Token+"/progress", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400, body %s", rec.Code, rec.Body.String())
	}

	var line models.OrderProduct
	if err := db.First(&line, "id = ?", fix.Line.ID).Error; err != nil {
		t.Fatalf("reload line: %v", err)
	}
	if line.CompletedQty != 40 {
		t.Errorf("completedQty = %d after rejected submission, expected 40", line.CompletedQty)
	}
	var reports int64
	db.Model(&models.ProgressReport{}).Where("order_id = ?", fix.Order.ID).Count(&reports)
	if reports != 0 {
		t.Errorf("found %d progress reports after rejected submission, expected 0", reports)
	}
}

func TestSubmitProgressCompletesOrder(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	body := map[string]any{
		"progressType": "per-product",
		"workerName":   "Bu Siti",
		"isCompletingOrder": false, // server must ignore the client hint
		"productProgressData": []map[string]any{
			{"productId": fix.Product.ID, "orderProductId": fix.Line.ID, "pcsFinished": 60},
		},
	}
	rec := doJSON(t, portalRouter(), "POST", "/api/order-links/"+fix.Link.Token+"/progress", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp progressResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OrderCompleted {
		t.Error("expected orderCompleted once every line hit its target")
	}

	var order models.Order
	if err := db.First(&order, "id = ?", fix.Order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.Status != models.OrderCompleted {
		t.Errorf("order.Status = %q, expected %q", order.Status, models.OrderCompleted)
	}
	if order.CompletedPcs != 100 {
		t.Errorf("order.CompletedPcs = %d, expected 100", order.CompletedPcs)
	}
}

func TestSubmitProgressSimpleForm(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	body := map[string]any{
		"pcsFinished":    10,
		"resiPengiriman": "JNE123456",
		"note":           "Dikirim sebagian",
	}
	rec := doJSON(t, portalRouter(), "POST", "/api/order-links/"+fix.Link.Token+"/progress", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var line models.OrderProduct
	if err := db.First(&line, "id = ?", fix.Line.ID).Error; err != nil {
		t.Fatalf("reload line: %v", err)
	}
	if line.CompletedQty != 50 {
		t.Errorf("completedQty = %d, expected 50", line.CompletedQty)
	}

	var report models.ProgressReport
	if err := db.First(&report, "order_id = ?", fix.Order.ID).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.ResiPengiriman != "JNE123456" {
		t.Errorf("resiPengiriman = %q, expected JNE123456", report.ResiPengiriman)
	}
	// No workerName on the simple form: the reporter falls back to the
	// order's assigned tailor.
	if report.ReporterName != "Bu Siti" {
		t.Errorf("reporterName = %q, expected the assigned worker", report.ReporterName)
	}
}

func TestSubmitMaterialUsage(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	body := map[string]any{"materialId": fix.Material.ID, "quantity": 30, "notes": "Potong pola"}
	rec := doJSON(t, portalRouter(), "POST", "/api/order-links/"+fix.Link.Token+"/materials", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var material models.Material
	if err := db.First(&material, "id = ?", fix.Material.ID).Error; err != nil {
		t.Fatalf("reload material: %v", err)
	}
	if material.StockQty != 470 {
		t.Errorf("stockQty = %.1f, expected 470", material.StockQty)
	}
}

func TestSubmitMaterialUsageInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	fix := seedOrderWithLink(t, db)

	body := map[string]any{"materialId": fix.Material.ID, "quantity": 10000}
	rec := doJSON(t, portalRouter(), "POST", "/api/order-links/"+fix.Link.Token+"/materials", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 for insufficient stock", rec.Code)
	}

	var material models.Material
	if err := db.First(&material, "id = ?", fix.Material.ID).Error; err != nil {
		t.Fatalf("reload material: %v", err)
	}
	if material.StockQty != 500 {
		t.Errorf("stockQty = %.1f after rejected usage, expected 500", material.StockQty)
	}
}
