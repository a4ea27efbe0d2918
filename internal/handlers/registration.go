package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/membership"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/commodore-dev/commodore/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errAlreadyRegistered = errors.New("already registered")

func canRegisterNow(event *models.Event, user *models.ClubUser) membership.RegistrationDecision {
	return membership.CanRegister(event, user, time.Now())
}

// activeRegistration returns the member's non-cancelled registration for the
// event, or nil.
func activeRegistration(eventID, memberID uint) (*models.EventRegistration, error) {
	var registration models.EventRegistration
	err := db.DB.Where("event_id = ? AND member_id = ? AND cancelled = ?", eventID, memberID, false).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &registration, nil
}

// RegisterForEvent signs the current user up, recording the resolved fee.
func RegisterForEvent(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var event models.Event
	err = db.DB.Preload("Contacts").Preload("AllowedMemberTypes").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		}
		return
	}

	decision := canRegisterNow(&event, user)
	if !decision.Allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": decision.Reason})
		return
	}

	fee, err := membership.ResolveFee(db.DB, &event, user)
	if err != nil {
		log.Printf("Failed to resolve fee: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	registration := models.EventRegistration{
		EventID:    event.ID,
		MemberID:   user.ID,
		FeeCharged: fee,
	}

	// Check and insert in one transaction so two racing requests cannot
	// both pass the duplicate check.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.EventRegistration{}).
			Where("event_id = ? AND member_id = ? AND cancelled = ?", event.ID, user.ID, false).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyRegistered
		}
		return tx.Create(&registration).Error
	})
	if err != nil {
		if errors.Is(err, errAlreadyRegistered) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "You are already registered for this event"})
			return
		}
		log.Printf("Failed to create registration: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":      "Registered successfully",
		"registration": registrationResponse(&registration, user),
	})
}

// UnregisterFromEvent cancels the current user's active registration.
func UnregisterFromEvent(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	registration, err := activeRegistration(id, user.ID)
	if err != nil {
		log.Printf("Failed to check registration: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if registration == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "You are not registered for this event"})
		return
	}

	if err := registration.Cancel(db.DB); err != nil {
		log.Printf("Failed to cancel registration: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Unregistered successfully"})
}

func registrationResponse(registration *models.EventRegistration, member *models.ClubUser) types.RegistrationResponse {
	return types.RegistrationResponse{
		ID:      registration.ID,
		EventID: registration.EventID,
		Member: types.MemberSummary{
			ID:       member.ID,
			Name:     member.FullName(),
			Email:    member.Email,
			Nickname: member.Nickname,
		},
		Cancelled:   registration.Cancelled,
		CancelledAt: registration.CancelledAt,
		FeeCharged:  registration.FeeCharged,
		GuestCount:  len(registration.Guests),
	}
}

// canSeeRegistrants applies the event's registrant list visibility.
func canSeeRegistrants(event *models.Event, user *models.ClubUser) bool {
	if user.HasPermission(types.PermEditEvents) || event.IsContact(user.ID) {
		return true
	}

	switch event.RegistrantListVisibility {
	case types.RegistrantListViewerPublic:
		return true
	case types.RegistrantListMembers:
		return user.Role != nil && user.Role.Name != types.RoleViewer
	case types.RegistrantListRegisteredMembersOnly:
		registration, err := activeRegistration(event.ID, user.ID)
		return err == nil && registration != nil
	}

	return false
}

func ListRegistrants(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var event models.Event
	if err := db.DB.Preload("Contacts").First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		}
		return
	}

	if !canSeeRegistrants(&event, user) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	var registrations []models.EventRegistration
	err = db.DB.Preload("Member").Preload("Guests").
		Where("event_id = ? AND cancelled = ?", event.ID, false).
		Find(&registrations).Error
	if err != nil {
		log.Printf("Failed to list registrants: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve registrants"})
		return
	}

	response := make([]types.RegistrationResponse, 0, len(registrations))
	for i := range registrations {
		response = append(response, registrationResponse(&registrations[i], &registrations[i].Member))
	}

	ctx.JSON(http.StatusOK, response)
}

type GuestRequest struct {
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes"`
}

// AddGuest attaches a guest to a registration. Only the registrant or an
// event editor may add guests.
func AddGuest(ctx *gin.Context) {
	registrationID, err := strconv.ParseUint(ctx.Param("registration_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req GuestRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var registration models.EventRegistration
	if err := db.DB.First(&registration, uint(registrationID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve registration"})
		}
		return
	}

	if registration.MemberID != user.ID && !user.HasPermission(types.PermEditEvents) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	if registration.Cancelled {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cannot add guests to a cancelled registration"})
		return
	}

	guest := models.EventGuest{
		RegistrationID: registration.ID,
		Name:           req.Name,
		Notes:          req.Notes,
	}

	if err := db.DB.Create(&guest).Error; err != nil {
		log.Printf("Failed to add guest: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add guest"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":    guest.ID,
		"name":  guest.Name,
		"notes": guest.Notes,
	})
}

func DeleteGuest(ctx *gin.Context) {
	guestID, err := strconv.ParseUint(ctx.Param("guest_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest ID"})
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var guest models.EventGuest
	if err := db.DB.Preload("Registration").First(&guest, uint(guestID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve guest"})
		}
		return
	}

	if guest.Registration.MemberID != user.ID && !user.HasPermission(types.PermEditEvents) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	if err := db.DB.Unscoped().Delete(&guest).Error; err != nil {
		log.Printf("Failed to delete guest: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete guest"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

type FeeRequest struct {
	MemberTypeID uint    `json:"member_type_id" binding:"required"`
	Amount       float64 `json:"amount" binding:"min=0"`
}

type FeeResponse struct {
	ID           uint    `json:"id"`
	MemberTypeID uint    `json:"member_type_id"`
	MemberType   string  `json:"member_type"`
	Amount       float64 `json:"amount"`
}

func ListEventFees(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var fees []models.EventRegistrationFee
	err = db.DB.Preload("MemberType").Where("event_id = ?", id).Find(&fees).Error
	if err != nil {
		log.Printf("Failed to list fees: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve fees"})
		return
	}

	response := make([]FeeResponse, 0, len(fees))
	for i := range fees {
		response = append(response, FeeResponse{
			ID:           fees[i].ID,
			MemberTypeID: fees[i].MemberTypeID,
			MemberType:   fees[i].MemberType.Name,
			Amount:       fees[i].Amount,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// ReplaceEventFees swaps the event's fee schedule for the provided one.
func ReplaceEventFees(ctx *gin.Context) {
	id, err := eventIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req struct {
		Fees []FeeRequest `json:"fees" binding:"required"`
	}
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	seen := make(map[uint]bool)
	for _, fee := range req.Fees {
		if seen[fee.MemberTypeID] {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate member type in fee schedule"})
			return
		}
		seen[fee.MemberTypeID] = true
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

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).
			Unscoped().Delete(&models.EventRegistrationFee{}).Error; err != nil {
			return err
		}
		for _, fee := range req.Fees {
			row := models.EventRegistrationFee{
				EventID:      event.ID,
				MemberTypeID: fee.MemberTypeID,
				Amount:       fee.Amount,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to replace fees: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fees"})
		return
	}

	ListEventFees(ctx)
}
