package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/membership"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/commodore-dev/commodore/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminUserRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"omitempty,min=8"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Nickname       string `json:"nickname"`
	RoleID         *uint  `json:"role_id"`
	MemberTypeIDs  []uint `json:"member_type_ids"`
	IsDependent    bool   `json:"is_dependent"`
	ParentMemberID *uint  `json:"parent_member_id"`
	IsActive       *bool  `json:"is_active"`
}

type AdminUserResponse struct {
	ID             uint     `json:"id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Nickname       string   `json:"nickname,omitempty"`
	Role           string   `json:"role,omitempty"`
	MemberTypes    []string `json:"member_types,omitempty"`
	ParentMemberID *uint    `json:"parent_member_id,omitempty"`
	IsActive       bool     `json:"is_active"`
}

func adminUserResponse(user *models.ClubUser) AdminUserResponse {
	resp := AdminUserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Nickname:       user.Nickname,
		ParentMemberID: user.ParentMemberID,
		IsActive:       user.IsActive,
	}
	if user.Role != nil {
		resp.Role = user.Role.Name
	}
	for _, mt := range user.MemberTypes {
		resp.MemberTypes = append(resp.MemberTypes, mt.Name)
	}
	return resp
}

// validateDependency applies the parent/dependent rules for create/update.
func (r *AdminUserRequest) validateDependency(userID uint) error {
	if !r.IsDependent {
		return nil
	}
	return membership.ValidateDependent(db.DB, userID, r.ParentMemberID, r.MemberTypeIDs)
}

func ListUsers(ctx *gin.Context) {
	var users []models.ClubUser
	err := db.DB.Preload("Role").Preload("MemberTypes").
		Order("last_name, first_name").Find(&users).Error
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]AdminUserResponse, 0, len(users))
	for i := range users {
		response = append(response, adminUserResponse(&users[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

// CreateClubUser is the admin path for creating members.
func CreateClubUser(ctx *gin.Context) {
	var req AdminUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Password == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.ClubUser
	err := db.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := req.validateDependency(0); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user := models.ClubUser{
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Nickname:     req.Nickname,
		RoleID:       req.RoleID,
		IsActive:     true,
	}
	if req.IsDependent {
		user.ParentMemberID = req.ParentMemberID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return applyMemberTypes(tx, &user, req.MemberTypeIDs)
	})
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	loadUserAndRespond(ctx, user.ID, http.StatusCreated)
}

func UpdateClubUser(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req AdminUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.ClubUser
	if err := db.DB.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email != user.Email {
		var existing models.ClubUser
		err := db.DB.Where("email = ? AND id != ?", req.Email, user.ID).First(&existing).Error
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

	if err := req.validateDependency(user.ID); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Nickname = req.Nickname
	user.RoleID = req.RoleID
	if req.IsDependent {
		user.ParentMemberID = req.ParentMemberID
	} else {
		user.ParentMemberID = nil
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if req.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		user.PasswordHash = string(passwordHash)
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return applyMemberTypes(tx, &user, req.MemberTypeIDs)
	})
	if err != nil {
		log.Printf("Failed to update user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	loadUserAndRespond(ctx, user.ID, http.StatusOK)
}

func DeleteClubUser(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if currentUser.ID == uint(id) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account here"})
		return
	}

	var user models.ClubUser
	if err := db.DB.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClubUser{}).Where("parent_member_id = ?", user.ID).
			Update("parent_member_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("MemberTypes").Clear(); err != nil {
			return err
		}
		// Unscoped so the email can be registered again later.
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		log.Printf("Failed to delete user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// MembersDirectory lists active members. Viewer-role accounts are not
// entitled to the directory.
func MembersDirectory(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if !user.IsSuperuser && (user.Role == nil || user.Role.Name == types.RoleViewer) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	var members []models.ClubUser
	err = db.DB.Where("is_active = ?", true).Order("last_name, first_name").Find(&members).Error
	if err != nil {
		log.Printf("Failed to list members: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]types.MemberSummary, 0, len(members))
	for i := range members {
		response = append(response, types.MemberSummary{
			ID:       members[i].ID,
			Name:     members[i].FullName(),
			Email:    members[i].Email,
			Nickname: members[i].Nickname,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// MemberAutocomplete backs the member search box on event contact forms.
func MemberAutocomplete(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))

	if len(query) < 2 {
		ctx.JSON(http.StatusOK, gin.H{"results": []types.MemberSummary{}})
		return
	}

	pattern := "%" + strings.ToLower(query) + "%"

	var members []models.ClubUser
	err := db.DB.Where("is_active = ?", true).
		Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(nickname) LIKE ?",
			pattern, pattern, pattern, pattern,
		).
		Order("last_name, first_name").Limit(20).Find(&members).Error
	if err != nil {
		log.Printf("Failed to search members: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search members"})
		return
	}

	results := make([]types.MemberSummary, 0, len(members))
	for i := range members {
		results = append(results, types.MemberSummary{
			ID:       members[i].ID,
			Name:     members[i].FullName(),
			Email:    members[i].Email,
			Nickname: members[i].Nickname,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"results": results})
}

func applyMemberTypes(tx *gorm.DB, user *models.ClubUser, typeIDs []uint) error {
	var memberTypes []models.MemberType
	if len(typeIDs) > 0 {
		if err := tx.Where("id IN ?", typeIDs).Find(&memberTypes).Error; err != nil {
			return err
		}
	}
	return tx.Model(user).Association("MemberTypes").Replace(memberTypes)
}

func loadUserAndRespond(ctx *gin.Context, userID uint, status int) {
	var user models.ClubUser
	err := db.DB.Preload("Role").Preload("MemberTypes").First(&user, userID).Error
	if err != nil {
		log.Printf("Failed to reload user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(status, adminUserResponse(&user))
}
