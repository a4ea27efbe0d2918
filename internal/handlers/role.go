package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RoleRequest struct {
	Name                string `json:"name" binding:"required,max=50"`
	Description         string `json:"description"`
	CanViewEvents       bool   `json:"can_view_events"`
	CanCreateEvents     bool   `json:"can_create_events"`
	CanEditEvents       bool   `json:"can_edit_events"`
	CanDeleteEvents     bool   `json:"can_delete_events"`
	CanManageCategories bool   `json:"can_manage_categories"`
	CanManageUsers      bool   `json:"can_manage_users"`
	CanAccessAdmin      bool   `json:"can_access_admin"`
}

type RoleResponse struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	CanViewEvents       bool   `json:"can_view_events"`
	CanCreateEvents     bool   `json:"can_create_events"`
	CanEditEvents       bool   `json:"can_edit_events"`
	CanDeleteEvents     bool   `json:"can_delete_events"`
	CanManageCategories bool   `json:"can_manage_categories"`
	CanManageUsers      bool   `json:"can_manage_users"`
	CanAccessAdmin      bool   `json:"can_access_admin"`
}

func roleResponse(role *models.Role) RoleResponse {
	return RoleResponse{
		ID:                  role.ID,
		Name:                role.Name,
		Description:         role.Description,
		CanViewEvents:       role.CanViewEvents,
		CanCreateEvents:     role.CanCreateEvents,
		CanEditEvents:       role.CanEditEvents,
		CanDeleteEvents:     role.CanDeleteEvents,
		CanManageCategories: role.CanManageCategories,
		CanManageUsers:      role.CanManageUsers,
		CanAccessAdmin:      role.CanAccessAdmin,
	}
}

func isDefaultRole(name string) bool {
	switch name {
	case types.RoleViewer, types.RoleMember, types.RoleEditor, types.RoleAdmin:
		return true
	}
	return false
}

func ListRoles(ctx *gin.Context) {
	var roles []models.Role
	if err := db.DB.Order("name").Find(&roles).Error; err != nil {
		log.Printf("Failed to list roles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve roles"})
		return
	}

	response := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		response = append(response, roleResponse(&roles[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateRole(ctx *gin.Context) {
	var req RoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Name = strings.ToLower(strings.TrimSpace(req.Name))

	var existing models.Role
	err := db.DB.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Role already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	role := models.Role{
		Name:                req.Name,
		Description:         req.Description,
		CanViewEvents:       req.CanViewEvents,
		CanCreateEvents:     req.CanCreateEvents,
		CanEditEvents:       req.CanEditEvents,
		CanDeleteEvents:     req.CanDeleteEvents,
		CanManageCategories: req.CanManageCategories,
		CanManageUsers:      req.CanManageUsers,
		CanAccessAdmin:      req.CanAccessAdmin,
	}

	if err := db.DB.Create(&role).Error; err != nil {
		log.Printf("Failed to create role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		return
	}

	ctx.JSON(http.StatusCreated, roleResponse(&role))
}

func UpdateRole(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("role_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID"})
		return
	}

	var req RoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var role models.Role
	if err := db.DB.First(&role, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve role"})
		}
		return
	}

	req.Name = strings.ToLower(strings.TrimSpace(req.Name))

	// Default roles keep their names so permission checks stay coherent.
	if isDefaultRole(role.Name) && req.Name != role.Name {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Default roles cannot be renamed"})
		return
	}

	role.Name = req.Name
	role.Description = req.Description
	role.CanViewEvents = req.CanViewEvents
	role.CanCreateEvents = req.CanCreateEvents
	role.CanEditEvents = req.CanEditEvents
	role.CanDeleteEvents = req.CanDeleteEvents
	role.CanManageCategories = req.CanManageCategories
	role.CanManageUsers = req.CanManageUsers
	role.CanAccessAdmin = req.CanAccessAdmin

	if err := db.DB.Save(&role).Error; err != nil {
		log.Printf("Failed to update role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	ctx.JSON(http.StatusOK, roleResponse(&role))
}

func DeleteRole(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("role_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID"})
		return
	}

	var role models.Role
	if err := db.DB.First(&role, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve role"})
		}
		return
	}

	if isDefaultRole(role.Name) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Default roles cannot be deleted"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClubUser{}).Where("role_id = ?", role.ID).
			Update("role_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&role).Error
	})
	if err != nil {
		log.Printf("Failed to delete role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete role"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
