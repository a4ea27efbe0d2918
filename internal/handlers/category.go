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

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

func categoryResponse(category *models.EventCategory) types.CategoryResponse {
	return types.CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
	}
}

func ListCategories(ctx *gin.Context) {
	var categories []models.EventCategory
	if err := db.DB.Order("name").Find(&categories).Error; err != nil {
		log.Printf("Failed to list categories: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve categories"})
		return
	}

	response := make([]types.CategoryResponse, 0, len(categories))
	for i := range categories {
		response = append(response, categoryResponse(&categories[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateCategory(ctx *gin.Context) {
	var req CategoryRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	category := models.EventCategory{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Color:       req.Color,
	}
	if category.Color == "" {
		category.Color = types.DefaultCategoryColor
	}

	var existing models.EventCategory
	err := db.DB.Where("name = ?", category.Name).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking category: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Create(&category).Error; err != nil {
		log.Printf("Failed to create category: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	ctx.JSON(http.StatusCreated, categoryResponse(&category))
}

func UpdateCategory(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("category_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var req CategoryRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var category models.EventCategory
	if err := db.DB.First(&category, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve category"})
		}
		return
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	if req.Color != "" {
		category.Color = req.Color
	}

	if err := db.DB.Save(&category).Error; err != nil {
		log.Printf("Failed to update category: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	ctx.JSON(http.StatusOK, categoryResponse(&category))
}

// DeleteCategory removes a category; events that used it become
// uncategorized via the SET NULL constraint.
func DeleteCategory(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("category_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var category models.EventCategory
	if err := db.DB.First(&category, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve category"})
		}
		return
	}

	var eventCount int64
	db.DB.Model(&models.Event{}).Where("category_id = ?", category.ID).Count(&eventCount)

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Event{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		// Unscoped so the name can be reused; a soft-deleted row would
		// still hold the unique index.
		return tx.Unscoped().Delete(&category).Error
	})
	if err != nil {
		log.Printf("Failed to delete category: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":       "Category deleted",
		"uncategorized": eventCount,
	})
}
