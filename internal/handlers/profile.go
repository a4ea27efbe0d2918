package handlers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var phoneRe = regexp.MustCompile(`^\+?1?\d{9,15}$`)

type UpdateProfileRequest struct {
	Email                   *string  `json:"email" binding:"omitempty,email"`
	FirstName               *string  `json:"first_name"`
	LastName                *string  `json:"last_name"`
	Salutation              *string  `json:"salutation"`
	MiddleInitial           *string  `json:"middle_initial"`
	ProfessionalDesignation *string  `json:"professional_designation"`
	Nickname                *string  `json:"nickname"`
	PrimaryPhone            *string  `json:"primary_phone"`
	SecondaryPhone          *string  `json:"secondary_phone"`
	WorkPhone               *string  `json:"work_phone"`
	SpouseFirstName         *string  `json:"spouse_first_name"`
	SpouseLastName          *string  `json:"spouse_last_name"`
	Country                 *string  `json:"country"`
	Address1                *string  `json:"address1"`
	Address2                *string  `json:"address2"`
	City                    *string  `json:"city"`
	State                   *string  `json:"state"`
	ZipCode                 *string  `json:"zip_code"`
	Timezone                *string  `json:"timezone"`
	Company                 *string  `json:"company"`
	OccupationTitle         *string  `json:"occupation_title"`
	VesselType              *string  `json:"vessel_type"`
	VesselName              *string  `json:"vessel_name"`
	VesselMoorageLocation   *string  `json:"vessel_moorage_location"`
	VesselManufacturer      *string  `json:"vessel_manufacturer"`
	VesselModel             *string  `json:"vessel_model"`
	VesselLOA               *float64 `json:"vessel_loa"`
	VesselBeam              *float64 `json:"vessel_beam"`
	VesselDraft             *float64 `json:"vessel_draft"`
	VesselCruisingSpeed     *float64 `json:"vessel_cruising_speed"`
	VesselPowerRequirement  *string  `json:"vessel_power_requirement"`
	VesselTiePreference     *string  `json:"vessel_tie_preference"`
	CurrentPassword         string   `json:"current_password"`
	NewPassword             string   `json:"new_password" binding:"omitempty,min=8"`
}

// profileUpdates collects the provided fields into a column/value map. Phone
// fields are validated against the club's accepted format.
func (r *UpdateProfileRequest) profileUpdates() (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	set := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setFloat := func(column string, value *float64) {
		if value != nil {
			updates[column] = *value
		}
	}

	for _, phone := range []*string{r.PrimaryPhone, r.SecondaryPhone, r.WorkPhone} {
		if phone != nil && *phone != "" && !phoneRe.MatchString(*phone) {
			return nil, errors.New("phone number must be entered in the format '+999999999', up to 15 digits")
		}
	}

	set("first_name", r.FirstName)
	set("last_name", r.LastName)
	set("salutation", r.Salutation)
	set("middle_initial", r.MiddleInitial)
	set("professional_designation", r.ProfessionalDesignation)
	set("nickname", r.Nickname)
	set("primary_phone", r.PrimaryPhone)
	set("secondary_phone", r.SecondaryPhone)
	set("work_phone", r.WorkPhone)
	set("spouse_first_name", r.SpouseFirstName)
	set("spouse_last_name", r.SpouseLastName)
	set("country", r.Country)
	set("address1", r.Address1)
	set("address2", r.Address2)
	set("city", r.City)
	set("state", r.State)
	set("zip_code", r.ZipCode)
	set("timezone", r.Timezone)
	set("company", r.Company)
	set("occupation_title", r.OccupationTitle)
	set("vessel_type", r.VesselType)
	set("vessel_name", r.VesselName)
	set("vessel_moorage_location", r.VesselMoorageLocation)
	set("vessel_manufacturer", r.VesselManufacturer)
	set("vessel_model", r.VesselModel)
	setFloat("vessel_loa", r.VesselLOA)
	setFloat("vessel_beam", r.VesselBeam)
	setFloat("vessel_draft", r.VesselDraft)
	setFloat("vessel_cruising_speed", r.VesselCruisingSpeed)
	set("vessel_power_requirement", r.VesselPowerRequirement)
	set("vessel_tie_preference", r.VesselTiePreference)

	return updates, nil
}

// UpdateProfile lets a user update their own record, including a password
// change gated on the current password.
func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var dbUser models.ClubUser
	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req UpdateProfileRequest
	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates, err := req.profileUpdates()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email != nil && *req.Email != "" {
		newEmail := strings.ToLower(strings.TrimSpace(*req.Email))

		if newEmail != dbUser.Email {
			var existing models.ClubUser
			err := db.DB.Where("email = ? AND id != ?", newEmail, dbUser.ID).First(&existing).Error
			if err == nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Database error when checking existing email: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
		}

		updates["email"] = newEmail
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Current password is required to change password"})
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(req.CurrentPassword))
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash new password: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&dbUser).Updates(updates).Error; err != nil {
		log.Printf("Failed to update user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Preload("Role").First(&dbUser, dbUser.ID).Error; err != nil {
		log.Printf("Failed to refresh user data: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    userResponse(&dbUser),
	})
}
