package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/commodore-dev/commodore/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EventContactRequest struct {
	MemberID         uint   `json:"member_id" binding:"required"`
	IsPrimary        bool   `json:"is_primary"`
	Responsibilities string `json:"responsibilities"`
}

type EventRequest struct {
	Title                    string                `json:"title" binding:"required,max=200"`
	ShortDescription         string                `json:"short_description" binding:"required,max=500"`
	FormattedDescription     string                `json:"formatted_description"`
	CategoryID               *uint                 `json:"category_id"`
	StartsAt                 time.Time             `json:"starts_at" binding:"required"`
	EndsAt                   time.Time             `json:"ends_at" binding:"required"`
	RegistrationStatus       string                `json:"registration_status"`
	RegistrationOpensAt      *time.Time            `json:"registration_opens_at"`
	RegistrantListVisibility string                `json:"registrant_list_visibility"`
	AllowedMemberTypeIDs     []uint                `json:"allowed_member_type_ids"`
	Contacts                 []EventContactRequest `json:"contacts"`
}

type EventResponse struct {
	ID                       uint                    `json:"id"`
	Title                    string                  `json:"title"`
	ShortDescription         string                  `json:"short_description"`
	FormattedDescription     string                  `json:"formatted_description,omitempty"`
	Category                 *types.CategoryResponse `json:"category,omitempty"`
	StartsAt                 time.Time               `json:"starts_at"`
	EndsAt                   time.Time               `json:"ends_at"`
	RegistrationStatus       string                  `json:"registration_status"`
	RegistrationOpensAt      *time.Time              `json:"registration_opens_at,omitempty"`
	RegistrantListVisibility string                  `json:"registrant_list_visibility"`
	AllowedMemberTypes       []string                `json:"allowed_member_types,omitempty"`
	Contacts                 []EventContactResponse  `json:"contacts,omitempty"`
}

type EventContactResponse struct {
	ID               uint                `json:"id"`
	Member           types.MemberSummary `json:"member"`
	IsPrimary        bool                `json:"is_primary"`
	Responsibilities string              `json:"responsibilities,omitempty"`
}

func (r *EventRequest) validate() error {
	if !r.EndsAt.After(r.StartsAt) {
		return errors.New("end date and time must be after start date and time")
	}
	if r.RegistrationStatus != "" && !types.ValidRegistrationStatus(r.RegistrationStatus) {
		return errors.New("invalid registration status")
	}
	if r.RegistrantListVisibility != "" && !types.ValidRegistrantListVisibility(r.RegistrantListVisibility) {
		return errors.New("invalid registrant list visibility")
	}

	primaries := 0
	for _, contact := range r.Contacts {
		if contact.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return errors.New("an event can only have one primary contact")
	}

	return nil
}

func eventResponse(event *models.Event) EventResponse {
	resp := EventResponse{
		ID:                       event.ID,
		Title:                    event.Title,
		ShortDescription:         event.ShortDescription,
		FormattedDescription:     event.FormattedDescription,
		StartsAt:                 event.StartsAt,
		EndsAt:                   event.EndsAt,
		RegistrationStatus:       event.RegistrationStatus,
		RegistrationOpensAt:      event.RegistrationOpensAt,
		RegistrantListVisibility: event.RegistrantListVisibility,
	}

	if event.Category != nil {
		resp.Category = &types.CategoryResponse{
			ID:          event.Category.ID,
			Name:        event.Category.Name,
			Description: event.Category.Description,
			Color:       event.Category.Color,
		}
	}

	for _, mt := range event.AllowedMemberTypes {
		resp.AllowedMemberTypes = append(resp.AllowedMemberTypes, mt.Name)
	}

	for i := range event.Contacts {
		contact := &event.Contacts[i]
		resp.Contacts = append(resp.Contacts, EventContactResponse{
			ID: contact.ID,
			Member: types.MemberSummary{
				ID:       contact.Member.ID,
				Name:     contact.Member.FullName(),
				Email:    contact.Member.Email,
				Nickname: contact.Member.Nickname,
			},
			IsPrimary:        contact.IsPrimary,
			Responsibilities: contact.Responsibilities,
		})
	}

	return resp
}

// logEventAction records who did what to an event, with the client address.
func logEventAction(ctx *gin.Context, eventID *uint, action, title string, snapshot interface{}) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return
	}

	entry := models.EventActionLog{
		EventID:    eventID,
		UserID:     &userID,
		Action:     action,
		EventTitle: title,
		IPAddress:  ctx.ClientIP(),
		UserAgent:  truncate(ctx.Request.UserAgent(), 255),
	}

	if snapshot != nil {
		data, err := json.Marshal(snapshot)
		if err == nil {
			entry.EventData = data
		}
	}

	if err := db.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to write event action log: %v", err)
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func eventIDParam(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("event_id"), 10, 32)
	return uint(id), err
}

func ListEvents(ctx *gin.Context) {
	query := db.DB.Preload("Category").Order("starts_at DESC")

	if categoryID := ctx.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if from := ctx.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("ends_at >= ?", t)
		}
	}
	if to := ctx.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			query = query.Where("starts_at <= ?", t)
		}
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		log.Printf("Failed to list events: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	response := make([]EventResponse, 0, len(events))
	for i := range events {
		response = append(response, eventResponse(&events[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetEvent(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	err = db.DB.Preload("Category").Preload("Contacts.Member").
		Preload("AllowedMemberTypes").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		}
		return
	}

	resp := gin.H{"event": eventResponse(&event)}

	if user, err := utils.GetCurrentUser(ctx); err == nil {
		decision := canRegisterNow(&event, user)
		registered, _ := activeRegistration(event.ID, user.ID)
		var count int64
		db.DB.Model(&models.EventRegistration{}).
			Where("event_id = ? AND cancelled = ?", event.ID, false).Count(&count)

		resp["can_register"] = decision.Allowed
		if !decision.Allowed {
			resp["cannot_register_reason"] = decision.Reason
		}
		resp["is_registered"] = registered != nil
		resp["registration_count"] = count
	}

	ctx.JSON(http.StatusOK, resp)
}

func CreateEvent(ctx *gin.Context) {
	var req EventRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := req.validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := models.Event{
		Title:                    req.Title,
		ShortDescription:         req.ShortDescription,
		FormattedDescription:     req.FormattedDescription,
		CategoryID:               req.CategoryID,
		StartsAt:                 req.StartsAt,
		EndsAt:                   req.EndsAt,
		RegistrationStatus:       req.RegistrationStatus,
		RegistrationOpensAt:      req.RegistrationOpensAt,
		RegistrantListVisibility: req.RegistrantListVisibility,
	}
	if event.RegistrationStatus == "" {
		event.RegistrationStatus = types.RegistrationNotRequired
	}
	if event.RegistrantListVisibility == "" {
		event.RegistrantListVisibility = types.RegistrantListNone
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		if err := applyAllowedMemberTypes(tx, &event, req.AllowedMemberTypeIDs); err != nil {
			return err
		}
		return applyContacts(tx, &event, req.Contacts)
	})
	if err != nil {
		log.Printf("Failed to create event: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	logEventAction(ctx, &event.ID, types.ActionCreated, event.Title, nil)

	loadEventAndRespond(ctx, event.ID, http.StatusCreated)
}

func UpdateEvent(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req EventRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := req.validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event models.Event
	if err := db.DB.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		}
		return
	}

	event.Title = req.Title
	event.ShortDescription = req.ShortDescription
	event.FormattedDescription = req.FormattedDescription
	event.CategoryID = req.CategoryID
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	if req.RegistrationStatus != "" {
		event.RegistrationStatus = req.RegistrationStatus
	}
	event.RegistrationOpensAt = req.RegistrationOpensAt
	if req.RegistrantListVisibility != "" {
		event.RegistrantListVisibility = req.RegistrantListVisibility
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		if err := applyAllowedMemberTypes(tx, &event, req.AllowedMemberTypeIDs); err != nil {
			return err
		}
		return applyContacts(tx, &event, req.Contacts)
	})
	if err != nil {
		log.Printf("Failed to update event: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	logEventAction(ctx, &event.ID, types.ActionUpdated, event.Title, nil)

	loadEventAndRespond(ctx, event.ID, http.StatusOK)
}

func DeleteEvent(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := db.DB.Preload("Category").First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		}
		return
	}

	snapshot := map[string]interface{}{
		"title":             event.Title,
		"short_description": event.ShortDescription,
		"starts_at":         event.StartsAt.Format(time.RFC3339),
		"ends_at":           event.EndsAt.Format(time.RFC3339),
	}
	if event.Category != nil {
		snapshot["category"] = event.Category.Name
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var registrationIDs []uint
		if err := tx.Model(&models.EventRegistration{}).Where("event_id = ?", event.ID).
			Pluck("id", &registrationIDs).Error; err != nil {
			return err
		}
		if len(registrationIDs) > 0 {
			if err := tx.Where("registration_id IN ?", registrationIDs).
				Unscoped().Delete(&models.EventGuest{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("event_id = ?", event.ID).
			Unscoped().Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).
			Unscoped().Delete(&models.EventRegistrationFee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).
			Unscoped().Delete(&models.EventContact{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&event).Error
	})
	if err != nil {
		log.Printf("Failed to delete event: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	logEventAction(ctx, nil, types.ActionDeleted, event.Title, snapshot)

	ctx.Status(http.StatusNoContent)
}

func calendarEntry(event *models.Event) types.CalendarEntry {
	category := "Uncategorized"
	if event.Category != nil {
		category = event.Category.Name
	}
	return types.CalendarEntry{
		ID:          event.ID,
		Title:       event.Title,
		Start:       event.StartsAt.Format(time.RFC3339),
		End:         event.EndsAt.Format(time.RFC3339),
		Description: event.ShortDescription,
		URL:         "/api/events/" + strconv.FormatUint(uint64(event.ID), 10),
		Color:       event.Color(),
		Category:    category,
	}
}

// CalendarJSON is the feed consumed by calendar widgets like FullCalendar.
func CalendarJSON(ctx *gin.Context) {
	var events []models.Event
	if err := db.DB.Preload("Category").Order("starts_at").Find(&events).Error; err != nil {
		log.Printf("Failed to load calendar feed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	entries := make([]types.CalendarEntry, 0, len(events))
	for i := range events {
		entries = append(entries, calendarEntry(&events[i]))
	}

	ctx.JSON(http.StatusOK, entries)
}

type ActionLogResponse struct {
	ID         uint      `json:"id"`
	EventID    *uint     `json:"event_id,omitempty"`
	EventTitle string    `json:"event_title"`
	Action     string    `json:"action"`
	User       string    `json:"user"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func ListEventActionLog(ctx *gin.Context) {
	limit := 50
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var entries []models.EventActionLog
	err := db.DB.Preload("User").Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		log.Printf("Failed to list action log: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve action log"})
		return
	}

	response := make([]ActionLogResponse, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		userName := "Unknown User"
		if entry.User != nil {
			userName = entry.User.FullName()
		}
		response = append(response, ActionLogResponse{
			ID:         entry.ID,
			EventID:    entry.EventID,
			EventTitle: entry.EventTitle,
			Action:     entry.Action,
			User:       userName,
			IPAddress:  entry.IPAddress,
			Timestamp:  entry.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func applyAllowedMemberTypes(tx *gorm.DB, event *models.Event, typeIDs []uint) error {
	var allowed []models.MemberType
	if len(typeIDs) > 0 {
		if err := tx.Where("id IN ?", typeIDs).Find(&allowed).Error; err != nil {
			return err
		}
	}
	return tx.Model(event).Association("AllowedMemberTypes").Replace(allowed)
}

// applyContacts reconciles the event's contact list with the request,
// preserving the one-primary invariant via EventContact.BeforeSave.
// The delete is unscoped: a soft-deleted row would still occupy the
// (event, member) unique index and block re-adding the same contact.
func applyContacts(tx *gorm.DB, event *models.Event, contacts []EventContactRequest) error {
	if err := tx.Where("event_id = ?", event.ID).Unscoped().Delete(&models.EventContact{}).Error; err != nil {
		return err
	}

	for _, contact := range contacts {
		row := models.EventContact{
			EventID:          event.ID,
			MemberID:         contact.MemberID,
			IsPrimary:        contact.IsPrimary,
			Responsibilities: contact.Responsibilities,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}

func loadEventAndRespond(ctx *gin.Context, eventID uint, status int) {
	var event models.Event
	err := db.DB.Preload("Category").Preload("Contacts.Member").
		Preload("AllowedMemberTypes").First(&event, eventID).Error
	if err != nil {
		log.Printf("Failed to reload event: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(status, eventResponse(&event))
}
