package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FolderPermissionRequest struct {
	RoleID    uint `json:"role_id" binding:"required"`
	CanView   bool `json:"can_view"`
	CanAdd    bool `json:"can_add"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type FolderPermissionResponse struct {
	ID        uint   `json:"id"`
	FolderID  uint   `json:"folder_id"`
	RoleID    uint   `json:"role_id"`
	RoleName  string `json:"role_name"`
	CanView   bool   `json:"can_view"`
	CanAdd    bool   `json:"can_add"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
}

func folderPermissionResponse(permission *models.FolderPermission) FolderPermissionResponse {
	return FolderPermissionResponse{
		ID:        permission.ID,
		FolderID:  permission.FolderID,
		RoleID:    permission.RoleID,
		RoleName:  permission.Role.Name,
		CanView:   permission.CanView,
		CanAdd:    permission.CanAdd,
		CanEdit:   permission.CanEdit,
		CanDelete: permission.CanDelete,
	}
}

// ListFolderPermissions returns the permission rows granted directly on a
// folder. Inherited grants live on the ancestors.
func ListFolderPermissions(ctx *gin.Context) {
	folderID, ok := folderIDParam(ctx)
	if !ok {
		return
	}

	var folder models.DocumentFolder
	if err := db.DB.First(&folder, folderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		}
		return
	}

	var permissions []models.FolderPermission
	err := db.DB.Preload("Role").Where("folder_id = ?", folder.ID).Find(&permissions).Error
	if err != nil {
		log.Printf("Failed to list folder permissions: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve permissions"})
		return
	}

	response := make([]FolderPermissionResponse, 0, len(permissions))
	for i := range permissions {
		response = append(response, folderPermissionResponse(&permissions[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

// SetFolderPermission creates or replaces the permission row for a role on a
// folder. One row per (folder, role) pair.
func SetFolderPermission(ctx *gin.Context) {
	folderID, ok := folderIDParam(ctx)
	if !ok {
		return
	}

	var req FolderPermissionRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var folder models.DocumentFolder
	if err := db.DB.First(&folder, folderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		}
		return
	}

	var role models.Role
	if err := db.DB.First(&role, req.RoleID).Error; err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role not found"})
		return
	}

	var permission models.FolderPermission
	err := db.DB.Where("folder_id = ? AND role_id = ?", folder.ID, role.ID).First(&permission).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		log.Printf("Database error when checking permission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	permission.FolderID = folder.ID
	permission.RoleID = role.ID
	permission.CanView = req.CanView
	permission.CanAdd = req.CanAdd
	permission.CanEdit = req.CanEdit
	permission.CanDelete = req.CanDelete

	if err := db.DB.Save(&permission).Error; err != nil {
		log.Printf("Failed to save folder permission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save permission"})
		return
	}

	permission.Role = role
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, folderPermissionResponse(&permission))
}

func DeleteFolderPermission(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("permission_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid permission ID"})
		return
	}

	result := db.DB.Unscoped().Delete(&models.FolderPermission{}, uint(id))
	if result.Error != nil {
		log.Printf("Failed to delete folder permission: %v", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete permission"})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
