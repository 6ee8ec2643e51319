package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// progressPhoto mirrors the photo metadata the portal sends alongside a
// per-product entry. Stored as jsonb on the report.
type progressPhoto struct {
	URL              string `json:"url"`
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
	Caption          string `json:"caption,omitempty"`
	Type             string `json:"type,omitempty"`
	OriginalFileName string `json:"originalFileName,omitempty"`
	FileSize         int64  `json:"fileSize,omitempty"`
	MimeType         string `json:"mimeType,omitempty"`
}

// progressEntry is one product's slice of a progress submission.
type progressEntry struct {
	ProductID              uuid.UUID        `json:"productId"`
	OrderProductID         uuid.UUID        `json:"orderProductId"`
	PcsFinished            int              `json:"pcsFinished"`
	PcsTargetForThisReport int              `json:"pcsTargetForThisReport"`
	MaterialUsed           float64          `json:"materialUsed"`
	WorkHours              float64          `json:"workHours"`
	QualityScore           int              `json:"qualityScore"`
	QualityNotes           string           `json:"qualityNotes"`
	Challenges             string           `json:"challenges"`
	EstimatedCompletion    *models.JSONTime `json:"estimatedCompletion"`
	Photos                 []progressPhoto  `json:"photos"`
}

// progressSubmission accepts both portal forms: the per-product form
// (progressType == "per-product") and the simple single-count form the
// order-link page sends.
type progressSubmission struct {
	ProgressType        string          `json:"progressType"`
	ProductProgressData []progressEntry `json:"productProgressData"`
	OverallNote         string          `json:"overallNote"`
	OverallPhoto        string          `json:"overallPhoto"`
	WorkerName          string          `json:"workerName"`
	// Client-side completion hint. The server recomputes completion
	// itself and never trusts this value.
	IsCompletingOrder bool `json:"isCompletingOrder"`

	// Simple form fields.
	PcsFinished    int    `json:"pcsFinished"`
	PhotoURL       string `json:"photoUrl"`
	ResiPengiriman string `json:"resiPengiriman"`
	Note           string `json:"note"`
}

// Validation errors surfaced as 400s.
var (
	errNoProgress     = errors.New("please enter progress for at least one product")
	errNoReporter     = errors.New("reporter name is required")
	errUnknownLine    = errors.New("progress entry references an unknown order product")
	errNegativePieces = errors.New("completed pieces cannot be negative")
)

// validateProgressEntries checks a submission against the current
// order-product state. The server is authoritative here: the client's
// max-clamp on the input is advisory and can be bypassed.
func validateProgressEntries(entries []progressEntry, lines map[uuid.UUID]models.OrderProduct) error {
	hasProgress := false
	claimed := make(map[uuid.UUID]int)
	for _, e := range entries {
		if e.PcsFinished < 0 {
			return errNegativePieces
		}
		if e.PcsFinished == 0 {
			continue
		}
		hasProgress = true

		line, ok := lines[e.OrderProductID]
		if !ok {
			return errUnknownLine
		}
		if line.ProductID != e.ProductID {
			return errUnknownLine
		}
		// Entries for the same line are summed before the remaining
		// check; splitting one count across entries must not get past
		// the target.
		claimed[e.OrderProductID] += e.PcsFinished
		if total, remaining := claimed[e.OrderProductID], line.Remaining(); total > remaining {
			return fmt.Errorf("cannot report %d pcs for this product: only %d remaining", total, remaining)
		}
	}
	if !hasProgress {
		return errNoProgress
	}
	return nil
}

// distributeSimpleProgress converts the simple form's single piece
// count into per-line entries, filling incomplete lines in order.
func distributeSimpleProgress(pcs int, lines []models.OrderProduct) ([]progressEntry, error) {
	if pcs <= 0 {
		return nil, errNoProgress
	}
	remaining := pcs
	var entries []progressEntry
	for _, line := range lines {
		if remaining == 0 {
			break
		}
		open := line.Remaining()
		if open == 0 {
			continue
		}
		take := open
		if remaining < open {
			take = remaining
		}
		entries = append(entries, progressEntry{
			ProductID:      line.ProductID,
			OrderProductID: line.ID,
			PcsFinished:    take,
			QualityScore:   100,
		})
		remaining -= take
	}
	if remaining > 0 {
		return nil, fmt.Errorf("cannot report %d pcs: only %d remaining on this order", pcs, pcs-remaining)
	}
	return entries, nil
}

type progressResponse struct {
	Message          string                   `json:"message"`
	Order            *models.Order            `json:"order"`
	Completion       models.CompletionSummary `json:"completion"`
	ReportsCreated   int                      `json:"reportsCreated"`
	MovementsCreated int                      `json:"movementsCreated"`
	OrderCompleted   bool                     `json:"orderCompleted"`
}

// SubmitProgress is the portal's progress endpoint:
// POST /api/order-links/{token}/progress
//
// Everything the submission touches — order product increments,
// progress report inserts, material movements, the order rollup and
// status transition — commits in one transaction. A validation failure
// on any entry rejects the whole submission; there is no partial
// commit.
func SubmitProgress(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	link, err := resolveOrderLink(config.DB, token)
	if err != nil {
		writeLinkError(w, err)
		return
	}

	var sub progressSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	perProduct := sub.ProgressType == "per-product"
	reporter := sub.WorkerName
	if perProduct && reporter == "" {
		writeError(w, http.StatusBadRequest, errNoReporter.Error())
		return
	}

	var order models.Order
	reportsCreated := 0
	movementsCreated := 0

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", link.OrderID).Error; err != nil {
			return err
		}

		// Lock the lines for the duration of the transaction so two
		// concurrent submissions cannot both read the same
		// completed_qty (the lost-update hazard).
		var lines []models.OrderProduct
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", order.ID).
			Order("created_at asc").
			Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return errors.New("order has no products")
		}

		entries := sub.ProductProgressData
		if !perProduct {
			var derr error
			entries, derr = distributeSimpleProgress(sub.PcsFinished, lines)
			if derr != nil {
				return derr
			}
		}

		lineByID := make(map[uuid.UUID]models.OrderProduct, len(lines))
		for _, l := range lines {
			lineByID[l.ID] = l
		}
		if err := validateProgressEntries(entries, lineByID); err != nil {
			return err
		}

		if reporter == "" {
			reporter = portalReporterName(tx, link)
		}

		for _, e := range entries {
			if e.PcsFinished == 0 {
				continue
			}
			line := lineByID[e.OrderProductID]

			if err := tx.Model(&models.OrderProduct{}).
				Where("id = ?", line.ID).
				Update("completed_qty", gorm.Expr("completed_qty + ?", e.PcsFinished)).Error; err != nil {
				return err
			}

			report := models.ProgressReport{
				OrderID:             order.ID,
				OrderProductID:      &line.ID,
				ProductID:           &line.ProductID,
				PcsFinished:         e.PcsFinished,
				PhotoURL:            firstNonEmpty(sub.OverallPhoto, sub.PhotoURL),
				ResiPengiriman:      sub.ResiPengiriman,
				Note:                firstNonEmpty(sub.OverallNote, sub.Note),
				ReporterName:        reporter,
				MaterialUsed:        e.MaterialUsed,
				WorkHours:           e.WorkHours,
				QualityScore:        e.QualityScore,
				QualityNotes:        e.QualityNotes,
				Challenges:          e.Challenges,
				EstimatedCompletion: e.EstimatedCompletion,
			}
			if report.QualityScore == 0 {
				report.QualityScore = 100
			}
			if len(e.Photos) > 0 {
				for _, p := range e.Photos {
					report.PhotoURLs = append(report.PhotoURLs, p.URL)
				}
				if raw, merr := json.Marshal(e.Photos); merr == nil {
					report.Photos = raw
				}
			}
			if err := tx.Create(&report).Error; err != nil {
				return err
			}
			reportsCreated++

			// One KELUAR movement per entry that both finished pieces
			// and consumed material, provided the product is linked to
			// a base material.
			if e.MaterialUsed > 0 {
				var product models.Product
				if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
					return err
				}
				if product.MaterialID != nil {
					movement := models.MaterialMovement{
						MaterialID:   *product.MaterialID,
						OrderID:      &order.ID,
						ProductID:    &product.ID,
						Quantity:     e.MaterialUsed,
						Unit:         "meter",
						MovementType: models.MovementOut,
						Notes:        fmt.Sprintf("Used for %s (%s)", product.Name, order.OrderNumber),
						MovementDate: models.JSONTime(time.Now()),
					}
					var material models.Material
					if err := tx.First(&material, "id = ?", product.MaterialID).Error; err == nil {
						movement.Unit = material.Unit
					}
					if err := tx.Create(&movement).Error; err != nil {
						return err
					}
					if err := tx.Model(&models.Material{}).
						Where("id = ?", product.MaterialID).
						Update("stock_qty", gorm.Expr("stock_qty - ?", e.MaterialUsed)).Error; err != nil {
						return err
					}
					movementsCreated++
				}
			}
		}

		// Re-read the lines and derive the order rollup from them. The
		// client's isCompletingOrder flag plays no part here.
		var updated []models.OrderProduct
		if err := tx.Where("order_id = ?", order.ID).Find(&updated).Error; err != nil {
			return err
		}
		completedPcs := 0
		for _, l := range updated {
			completedPcs += l.CompletedQty
		}
		order.CompletedPcs = completedPcs
		switch {
		case models.AllProductsComplete(updated):
			order.Status = models.OrderCompleted
		case order.Status == models.OrderDraft || order.Status == models.OrderConfirmed:
			order.Status = models.OrderProcessing
		}
		order.OrderProducts = updated
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{"completed_pcs": order.CompletedPcs, "status": order.Status}).Error
	})
	if err != nil {
		if isProgressValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "failed to submit progress report")
		}
		return
	}

	completion := models.RollupCompletion(order.TargetPcs, order.OrderProducts)
	writeJSON(w, http.StatusCreated, progressResponse{
		Message:          "Progress report submitted successfully",
		Order:            &order,
		Completion:       completion,
		ReportsCreated:   reportsCreated,
		MovementsCreated: movementsCreated,
		OrderCompleted:   order.Status == models.OrderCompleted,
	})
}

// portalReporterName resolves a display name for simple-form
// submissions, which carry no workerName field.
func portalReporterName(tx *gorm.DB, link *models.OrderLink) string {
	if link.UserID != nil {
		var user models.User
		if err := tx.First(&user, "id = ?", link.UserID).Error; err == nil {
			return user.Name
		}
	}
	var order models.Order
	if err := tx.Preload("Worker").First(&order, "id = ?", link.OrderID).Error; err == nil && order.Worker != nil {
		return order.Worker.Name
	}
	return "Order link"
}

func isProgressValidationError(err error) bool {
	if errors.Is(err, errNoProgress) || errors.Is(err, errNoReporter) ||
		errors.Is(err, errUnknownLine) || errors.Is(err, errNegativePieces) {
		return true
	}
	msg := err.Error()
	return msg == "order has no products" || strings.HasPrefix(msg, "cannot")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
