package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/documents"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/commodore-dev/commodore/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FolderRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

type FolderSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

type FolderCapabilities struct {
	CanView   bool `json:"can_view"`
	CanAdd    bool `json:"can_add"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type FolderDetailResponse struct {
	ID           uint                       `json:"id"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description"`
	ParentID     *uint                      `json:"parent_id"`
	Path         string                     `json:"path"`
	Breadcrumbs  []FolderSummary            `json:"breadcrumbs"`
	Subfolders   []FolderSummary            `json:"subfolders"`
	Files        []FileResponse             `json:"files"`
	Permissions  []FolderPermissionResponse `json:"permissions,omitempty"`
	Capabilities FolderCapabilities         `json:"capabilities"`
}

func folderSummary(folder *models.DocumentFolder) FolderSummary {
	return FolderSummary{
		ID:          folder.ID,
		Name:        folder.Name,
		Description: folder.Description,
		ParentID:    folder.ParentID,
	}
}

func folderIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("folder_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder ID"})
		return 0, false
	}
	return uint(id), true
}

func folderCapabilities(tx *gorm.DB, user *models.ClubUser, folder *models.DocumentFolder) (FolderCapabilities, error) {
	var caps FolderCapabilities
	var err error

	if caps.CanView, err = documents.HasFolderPermission(tx, user, folder, types.FolderPermView); err != nil {
		return caps, err
	}
	if caps.CanAdd, err = documents.HasFolderPermission(tx, user, folder, types.FolderPermAdd); err != nil {
		return caps, err
	}
	if caps.CanEdit, err = documents.HasFolderPermission(tx, user, folder, types.FolderPermEdit); err != nil {
		return caps, err
	}
	caps.CanDelete, err = documents.HasFolderPermission(tx, user, folder, types.FolderPermDelete)
	return caps, err
}

// ListFolders returns the root folders the current user can view.
func ListFolders(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accessibleIDs, err := documents.AccessibleFolderIDs(db.DB, user, types.FolderPermView)
	if err != nil {
		log.Printf("Failed to resolve accessible folders: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folders"})
		return
	}

	response := make([]FolderSummary, 0)
	if len(accessibleIDs) > 0 {
		var folders []models.DocumentFolder
		err = db.DB.Where("parent_id IS NULL AND id IN ?", accessibleIDs).
			Order("name").Find(&folders).Error
		if err != nil {
			log.Printf("Failed to list folders: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folders"})
			return
		}
		for i := range folders {
			response = append(response, folderSummary(&folders[i]))
		}
	}

	ctx.JSON(http.StatusOK, response)
}

// GetFolder returns a folder with its visible subfolders, files, breadcrumbs
// and the caller's effective capabilities. Permission rows are included for
// admins only.
func GetFolder(ctx *gin.Context) {
	folderID, ok := folderIDParam(ctx)
	if !ok {
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var folder models.DocumentFolder
	err = db.DB.Preload("Files", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("name")
	}).Preload("Files.UploadedBy").First(&folder, folderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		}
		return
	}

	canView, err := documents.HasFolderPermission(db.DB, user, &folder, types.FolderPermView)
	if err != nil {
		log.Printf("Failed to check folder permission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		return
	}
	if !canView {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	caps, err := folderCapabilities(db.DB, user, &folder)
	if err != nil {
		log.Printf("Failed to resolve folder capabilities: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		return
	}

	path, err := documents.FullPath(db.DB, &folder)
	if err != nil {
		log.Printf("Failed to resolve folder path: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		return
	}

	ancestors, err := documents.Ancestors(db.DB, &folder)
	if err != nil {
		log.Printf("Failed to resolve folder ancestors: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		return
	}
	breadcrumbs := make([]FolderSummary, 0, len(ancestors))
	for i := range ancestors {
		breadcrumbs = append(breadcrumbs, folderSummary(&ancestors[i]))
	}

	// Subfolders are filtered to what the caller can see; a grant on this
	// folder cascades down, so children inherit visibility.
	var children []models.DocumentFolder
	if err := db.DB.Where("parent_id = ?", folder.ID).Order("name").Find(&children).Error; err != nil {
		log.Printf("Failed to list subfolders: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
		return
	}
	subfolders := make([]FolderSummary, 0, len(children))
	for i := range children {
		subfolders = append(subfolders, folderSummary(&children[i]))
	}

	files := make([]FileResponse, 0, len(folder.Files))
	for i := range folder.Files {
		files = append(files, fileResponse(&folder.Files[i]))
	}

	response := FolderDetailResponse{
		ID:           folder.ID,
		Name:         folder.Name,
		Description:  folder.Description,
		ParentID:     folder.ParentID,
		Path:         path,
		Breadcrumbs:  breadcrumbs,
		Subfolders:   subfolders,
		Files:        files,
		Capabilities: caps,
	}

	if user.IsAdmin() {
		var permissions []models.FolderPermission
		err = db.DB.Preload("Role").Where("folder_id = ?", folder.ID).Find(&permissions).Error
		if err != nil {
			log.Printf("Failed to list folder permissions: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve folder"})
			return
		}
		response.Permissions = make([]FolderPermissionResponse, 0, len(permissions))
		for i := range permissions {
			response.Permissions = append(response.Permissions, folderPermissionResponse(&permissions[i]))
		}
	}

	ctx.JSON(http.StatusOK, response)
}

// CreateFolder creates a folder. Root folders require admin; subfolders
// require the add capability on the parent.
func CreateFolder(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req FolderRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.ParentID == nil {
		if !user.IsAdmin() {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
	} else {
		var parent models.DocumentFolder
		if err := db.DB.First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Parent folder not found"})
			} else {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
			}
			return
		}

		canAdd, err := documents.HasFolderPermission(db.DB, user, &parent, types.FolderPermAdd)
		if err != nil {
			log.Printf("Failed to check folder permission: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
			return
		}
		if !canAdd {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
	}

	name := models.SanitizeFolderName(strings.TrimSpace(req.Name))

	var existing models.DocumentFolder
	query := db.DB.Where("name = ?", name)
	if req.ParentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *req.ParentID)
	}
	err = query.First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "A folder with that name already exists here"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking folder: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	folder := models.DocumentFolder{
		Name:        name,
		Description: req.Description,
		ParentID:    req.ParentID,
		CreatedByID: &user.ID,
	}

	if err := db.DB.Create(&folder).Error; err != nil {
		log.Printf("Failed to create folder: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}

	ctx.JSON(http.StatusCreated, folderSummary(&folder))
}

// UpdateFolder renames or moves a folder. Moves are validated against the
// hierarchy so a folder can never become its own descendant.
func UpdateFolder(ctx *gin.Context) {
	folderID, ok := folderIDParam(ctx)
	if !ok {
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req FolderRequest

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

	canEdit, err := documents.HasFolderPermission(db.DB, user, &folder, types.FolderPermEdit)
	if err != nil {
		log.Printf("Failed to check folder permission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}
	if !canEdit {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	// Moving a folder to the root is an admin operation.
	if req.ParentID == nil && folder.ParentID != nil && !user.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	if err := documents.ValidateParent(db.DB, folder.ID, req.ParentID); err != nil {
		if errors.Is(err, documents.ErrCircularFolder) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Folder cannot be moved under itself"})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Parent folder not found"})
			return
		}
		log.Printf("Failed to validate folder parent: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}

	folder.Name = models.SanitizeFolderName(strings.TrimSpace(req.Name))
	folder.Description = req.Description
	folder.ParentID = req.ParentID

	if err := db.DB.Save(&folder).Error; err != nil {
		log.Printf("Failed to update folder: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}

	ctx.JSON(http.StatusOK, folderSummary(&folder))
}

// DeleteFolder removes a folder and everything beneath it, including the
// stored files on disk.
func DeleteFolder(ctx *gin.Context) {
	folderID, ok := folderIDParam(ctx)
	if !ok {
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
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

	canDelete, err := documents.HasFolderPermission(db.DB, user, &folder, types.FolderPermDelete)
	if err != nil {
		log.Printf("Failed to check folder permission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}
	if !canDelete {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	descendants, err := documents.Descendants(db.DB, folder.ID)
	if err != nil {
		log.Printf("Failed to resolve folder descendants: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	folderIDs := make([]uint, 0, len(descendants)+1)
	folderIDs = append(folderIDs, folder.ID)
	for _, descendant := range descendants {
		folderIDs = append(folderIDs, descendant.ID)
	}

	var files []models.DocumentFile
	if err := db.DB.Where("folder_id IN ?", folderIDs).Find(&files).Error; err != nil {
		log.Printf("Failed to list folder files: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id IN ?", folderIDs).Unscoped().Delete(&models.DocumentFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id IN ?", folderIDs).Unscoped().Delete(&models.FolderPermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", folderIDs).Unscoped().Delete(&models.DocumentFolder{}).Error
	})
	if err != nil {
		log.Printf("Failed to delete folder: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	if DocumentStore != nil {
		for i := range files {
			if err := DocumentStore.Remove(files[i].StoredName); err != nil {
				log.Printf("Failed to remove stored file %s: %v", files[i].StoredName, err)
			}
		}
	}

	ctx.Status(http.StatusNoContent)
}
