package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/documents"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/storage"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/commodore-dev/commodore/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DocumentStore holds the on-disk document storage. Wired up at startup.
var DocumentStore *storage.Store

const maxUploadSize = 50 << 20 // 50 MB

type FileResponse struct {
	ID          uint      `json:"id"`
	FolderID    uint      `json:"folder_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Size        int64     `json:"size"`
	SizeDisplay string    `json:"size_display"`
	MimeType    string    `json:"mime_type"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func fileResponse(file *models.DocumentFile) FileResponse {
	response := FileResponse{
		ID:          file.ID,
		FolderID:    file.FolderID,
		Name:        file.Name,
		Description: file.Description,
		Size:        file.Size,
		SizeDisplay: file.SizeDisplay(),
		MimeType:    file.MimeType,
		UploadedAt:  file.CreatedAt,
	}
	if file.UploadedBy != nil {
		response.UploadedBy = file.UploadedBy.DisplayName()
	}
	return response
}

func fileIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("file_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return 0, false
	}
	return uint(id), true
}

// loadFileWithPermission fetches the file and checks the capability against
// its folder. Writes the error response itself when it returns nil.
func loadFileWithPermission(ctx *gin.Context, capability string) *models.DocumentFile {
	fileID, ok := fileIDParam(ctx)
	if !ok {
		return nil
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}

	var file models.DocumentFile
	err = db.DB.Preload("Folder").Preload("UploadedBy").First(&file, fileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve file"})
		}
		return nil
	}

	allowed, err := documents.HasFolderPermission(db.DB, user, &file.Folder, capability)
	if err != nil {
		log.Printf("Failed to check folder permission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve file"})
		return nil
	}
	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return nil
	}

	return &file
}

// UploadFile accepts a multipart upload into a folder the caller can add to.
func UploadFile(ctx *gin.Context) {
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

	canAdd, err := documents.HasFolderPermission(db.DB, user, &folder, types.FolderPermAdd)
	if err != nil {
		log.Printf("Failed to check folder permission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}
	if !canAdd {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	upload, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if upload.Size > maxUploadSize {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	name := strings.TrimSpace(ctx.PostForm("name"))
	if name == "" {
		name = upload.Filename
	}

	var existing models.DocumentFile
	err = db.DB.Where("folder_id = ? AND name = ?", folder.ID, name).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "A file with that name already exists in this folder"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	storedName, err := DocumentStore.Save(upload)
	if err != nil {
		log.Printf("Failed to store upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	file := models.DocumentFile{
		FolderID:     folder.ID,
		Name:         name,
		StoredName:   storedName,
		Description:  ctx.PostForm("description"),
		Size:         upload.Size,
		MimeType:     upload.Header.Get("Content-Type"),
		UploadedByID: &user.ID,
	}

	if err := db.DB.Create(&file).Error; err != nil {
		if removeErr := DocumentStore.Remove(storedName); removeErr != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", storedName, removeErr)
		}
		log.Printf("Failed to create file record: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	file.UploadedBy = user
	ctx.JSON(http.StatusCreated, fileResponse(&file))
}

func GetFile(ctx *gin.Context) {
	file := loadFileWithPermission(ctx, types.FolderPermView)
	if file == nil {
		return
	}

	ctx.JSON(http.StatusOK, fileResponse(file))
}

// DownloadFile streams the stored file as an attachment.
func DownloadFile(ctx *gin.Context) {
	file := loadFileWithPermission(ctx, types.FolderPermView)
	if file == nil {
		return
	}

	ctx.FileAttachment(DocumentStore.Path(file.StoredName), file.Name)
}

type FileUpdateRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

func UpdateFile(ctx *gin.Context) {
	file := loadFileWithPermission(ctx, types.FolderPermEdit)
	if file == nil {
		return
	}

	var req FileUpdateRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name != file.Name {
		var existing models.DocumentFile
		err := db.DB.Where("folder_id = ? AND name = ? AND id != ?", file.FolderID, name, file.ID).
			First(&existing).Error
		if err == nil {
			ctx.JSON(http.StatusConflict, gin.H{"error": "A file with that name already exists in this folder"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Database error when checking file: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	file.Name = name
	file.Description = req.Description

	if err := db.DB.Save(file).Error; err != nil {
		log.Printf("Failed to update file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update file"})
		return
	}

	ctx.JSON(http.StatusOK, fileResponse(file))
}

func DeleteFile(ctx *gin.Context) {
	file := loadFileWithPermission(ctx, types.FolderPermDelete)
	if file == nil {
		return
	}

	if err := db.DB.Unscoped().Delete(file).Error; err != nil {
		log.Printf("Failed to delete file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	if err := DocumentStore.Remove(file.StoredName); err != nil {
		log.Printf("Failed to remove stored file %s: %v", file.StoredName, err)
	}

	ctx.Status(http.StatusNoContent)
}
