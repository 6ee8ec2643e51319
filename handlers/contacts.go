package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"jahit.id/workshop/config"
	"jahit.id/workshop/models"
)

// GetAllContacts lists contacts with search, type/active filters and
// pagination: GET /api/contacts?search=&contactType=&isActive=&page=&limit=
func GetAllContacts(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := config.DB.Model(&models.Contact{})

	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR company ILIKE ? OR phone ILIKE ?", like, like, like)
	}
	if ct := r.URL.Query().Get("contactType"); ct != "" && ct != "all" {
		if !models.IsValidContactType(ct) {
			writeError(w, http.StatusBadRequest, "invalid contact type")
			return
		}
		q = q.Where("contact_type = ?", ct)
	}
	if active := r.URL.Query().Get("isActive"); active != "" {
		q = q.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count contacts")
		return
	}

	var contacts []models.Contact
	if err := q.Order("name asc").Offset((page - 1) * limit).Limit(limit).Find(&contacts).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch contacts")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: contacts, Page: page, Limit: limit, Total: total})
}

type contactReq struct {
	Name          string `json:"name"`
	ContactType   string `json:"contactType"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	WhatsappPhone string `json:"whatsappPhone"`
	Address       string `json:"address"`
	Company       string `json:"company"`
	IsActive      *bool  `json:"isActive"`
	Notes         string `json:"notes"`
}

func CreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ContactType == "" {
		req.ContactType = models.ContactSupplier
	}
	if !models.IsValidContactType(req.ContactType) {
		writeError(w, http.StatusBadRequest, "invalid contact type")
		return
	}

	contact := models.Contact{
		Name:          req.Name,
		ContactType:   req.ContactType,
		Email:         req.Email,
		Phone:         req.Phone,
		WhatsappPhone: req.WhatsappPhone,
		Address:       req.Address,
		Company:       req.Company,
		IsActive:      true,
		Notes:         req.Notes,
	}
	if req.IsActive != nil {
		contact.IsActive = *req.IsActive
	}
	// BeforeSave also enforces this; normalizing here keeps the
	// response body consistent with what is persisted.
	contact.NormalizeCompany()

	if err := config.DB.Create(&contact).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func GetContact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var contact models.Contact
	if err := config.DB.Preload("ContactNotes").First(&contact, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func UpdateContact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var contact models.Contact
	if err := config.DB.First(&contact, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name != "" {
		contact.Name = req.Name
	}
	if req.ContactType != "" {
		if !models.IsValidContactType(req.ContactType) {
			writeError(w, http.StatusBadRequest, "invalid contact type")
			return
		}
		contact.ContactType = req.ContactType
	}
	if req.Email != "" {
		contact.Email = req.Email
	}
	if req.Phone != "" {
		contact.Phone = req.Phone
	}
	if req.WhatsappPhone != "" {
		contact.WhatsappPhone = req.WhatsappPhone
	}
	if req.Address != "" {
		contact.Address = req.Address
	}
	if req.Company != "" {
		contact.Company = req.Company
	}
	if req.Notes != "" {
		contact.Notes = req.Notes
	}
	if req.IsActive != nil {
		contact.IsActive = *req.IsActive
	}
	contact.NormalizeCompany()

	if err := config.DB.Save(&contact).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update contact")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func DeleteContact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var contact models.Contact
	if err := config.DB.First(&contact, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	if err := config.DB.Delete(&contact).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	writeMessage(w, http.StatusOK, "contact deleted")
}

// GetContactNotes lists the notes for one contact, newest first.
func GetContactNotes(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := config.DB.First(&models.Contact{}, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "contact not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to fetch contact")
		}
		return
	}

	var notes []models.ContactNote
	if err := config.DB.Where("contact_id = ?", id).Order("created_at desc").Find(&notes).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch contact notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

type contactNoteReq struct {
	NoteType      string           `json:"noteType"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	Priority      string           `json:"priority"`
	NeedsFollowUp bool             `json:"needsFollowUp"`
	FollowUpDate  *models.JSONTime `json:"followUpDate"`
}

func CreateContactNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var contact models.Contact
	if err := config.DB.First(&contact, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	var req contactNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.NoteType == "" {
		req.NoteType = "GENERAL"
	}

	note := models.ContactNote{
		ContactID:     contact.ID,
		NoteType:      req.NoteType,
		Title:         req.Title,
		Content:       req.Content,
		Priority:      req.Priority,
		NeedsFollowUp: req.NeedsFollowUp,
		FollowUpDate:  req.FollowUpDate,
	}

	user := middlewareUser(r)
	if user != nil {
		note.CreatedBy = &user.ID
		note.CreatedByName = user.Name
	}

	if err := config.DB.Create(&note).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create contact note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
