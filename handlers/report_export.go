package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// ExportOrderRecap downloads an order recap — one row per order product
// plus the progress ledger — as Excel or CSV:
// GET /api/orders/{id}/export?format=xlsx|csv
func ExportOrderRecap(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var order models.Order
	if err := config.DB.
		Preload("OrderProducts.Product").
		Preload("ProgressReports", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Worker").
		First(&order, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "csv" {
		exportOrderCSV(w, &order)
		return
	}
	exportOrderExcel(w, &order)
}

func exportOrderExcel(w http.ResponseWriter, order *models.Order) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Order"
	f.SetSheetName("Sheet1", sheet)

	rollup := models.RollupCompletion(order.TargetPcs, order.OrderProducts)
	f.SetCellValue(sheet, "A1", "Order")
	f.SetCellValue(sheet, "B1", order.OrderNumber)
	f.SetCellValue(sheet, "A2", "Status")
	f.SetCellValue(sheet, "B2", order.Status)
	f.SetCellValue(sheet, "A3", "Completion")
	f.SetCellValue(sheet, "B3", fmt.Sprintf("%d/%d pcs (%d%%)", rollup.CompletedPcs, order.TargetPcs, rollup.Percent))

	headers := []string{"Product", "Code", "Target", "Completed", "Remaining", "Unit Price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		f.SetCellValue(sheet, cell, h)
	}
	for i, op := range order.OrderProducts {
		row := 6 + i
		name, code := "", ""
		if op.Product != nil {
			name, code = op.Product.Name, op.Product.Code
		}
		values := []any{name, code, op.Quantity, op.CompletedQty, op.Remaining(), op.UnitPrice}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	const ledger = "Progress"
	f.NewSheet(ledger)
	ledgerHeaders := []string{"Date", "Reporter", "Pcs Finished", "Material Used", "Work Hours", "Quality", "Receipt No", "Note"}
	for i, h := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ledger, cell, h)
	}
	for i, report := range order.ProgressReports {
		row := 2 + i
		values := []any{
			report.CreatedAt.Format("2006-01-02 15:04"),
			report.ReporterName,
			report.PcsFinished,
			report.MaterialUsed,
			report.WorkHours,
			report.QualityScore,
			report.ResiPengiriman,
			report.Note,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(ledger, cell, v)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", sanitizeFilename(order.OrderNumber), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func exportOrderCSV(w http.ResponseWriter, order *models.Order) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	cw.Write([]string{"Product", "Code", "Target", "Completed", "Remaining"})
	for _, op := range order.OrderProducts {
		name, code := "", ""
		if op.Product != nil {
			name, code = op.Product.Name, op.Product.Code
		}
		cw.Write([]string{
			name, code,
			fmt.Sprintf("%d", op.Quantity),
			fmt.Sprintf("%d", op.CompletedQty),
			fmt.Sprintf("%d", op.Remaining()),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate CSV file")
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", sanitizeFilename(order.OrderNumber), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// sanitizeFilename strips characters that break Content-Disposition.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "\"", "", "'", "")
	return replacer.Replace(name)
}
