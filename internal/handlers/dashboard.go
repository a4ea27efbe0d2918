package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/commodore-dev/commodore/internal/utils"
	"github.com/gin-gonic/gin"
)

// Dashboard returns headline counts and the next few events for the admin
// landing page.
func Dashboard(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var userCount, activeUserCount, eventCount, upcomingCount, categoryCount int64
	db.DB.Model(&models.ClubUser{}).Count(&userCount)
	db.DB.Model(&models.ClubUser{}).Where("is_active = ?", true).Count(&activeUserCount)
	db.DB.Model(&models.Event{}).Count(&eventCount)
	db.DB.Model(&models.Event{}).Where("starts_at >= ?", time.Now()).Count(&upcomingCount)
	db.DB.Model(&models.EventCategory{}).Count(&categoryCount)

	var upcoming []models.Event
	err = db.DB.Preload("Category").Where("starts_at >= ?", time.Now()).
		Order("starts_at").Limit(5).Find(&upcoming).Error
	if err != nil {
		log.Printf("Failed to load upcoming events: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	entries := make([]types.CalendarEntry, 0, len(upcoming))
	for i := range upcoming {
		entries = append(entries, calendarEntry(&upcoming[i]))
	}

	response := gin.H{
		"users":           userCount,
		"active_users":    activeUserCount,
		"events":          eventCount,
		"upcoming_events": upcomingCount,
		"categories":      categoryCount,
		"next_events":     entries,
	}

	if user.HasPermission(types.PermAccessAdmin) {
		var logCount int64
		db.DB.Model(&models.EventActionLog{}).Count(&logCount)
		response["action_log_entries"] = logCount
	}

	ctx.JSON(http.StatusOK, response)
}
