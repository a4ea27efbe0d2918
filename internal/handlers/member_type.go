package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MemberTypeRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"is_active"`
	CanBeParent  bool   `json:"can_be_parent"`
	CanBeChild   bool   `json:"can_be_child"`
	DisplayOrder int    `json:"display_order"`
}

type MemberTypeResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
	CanBeParent  bool   `json:"can_be_parent"`
	CanBeChild   bool   `json:"can_be_child"`
	DisplayOrder int    `json:"display_order"`
	MemberCount  int64  `json:"member_count"`
}

func memberTypeResponse(memberType *models.MemberType, memberCount int64) MemberTypeResponse {
	return MemberTypeResponse{
		ID:           memberType.ID,
		Name:         memberType.Name,
		Description:  memberType.Description,
		IsActive:     memberType.IsActive,
		CanBeParent:  memberType.CanBeParent,
		CanBeChild:   memberType.CanBeChild,
		DisplayOrder: memberType.DisplayOrder,
		MemberCount:  memberCount,
	}
}

func memberTypeCount(typeID uint) int64 {
	var count int64
	db.DB.Table("club_user_member_types").Where("member_type_id = ?", typeID).Count(&count)
	return count
}

func ListMemberTypes(ctx *gin.Context) {
	query := db.DB.Order("display_order, name")
	if ctx.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var memberTypes []models.MemberType
	if err := query.Find(&memberTypes).Error; err != nil {
		log.Printf("Failed to list member types: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve member types"})
		return
	}

	response := make([]MemberTypeResponse, 0, len(memberTypes))
	for i := range memberTypes {
		response = append(response, memberTypeResponse(&memberTypes[i], memberTypeCount(memberTypes[i].ID)))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateMemberType(ctx *gin.Context) {
	var req MemberTypeRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	name := strings.TrimSpace(req.Name)

	var existing models.MemberType
	err := db.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Member type already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking member type: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	memberType := models.MemberType{
		Name:         name,
		Description:  req.Description,
		IsActive:     true,
		CanBeParent:  req.CanBeParent,
		CanBeChild:   req.CanBeChild,
		DisplayOrder: req.DisplayOrder,
	}
	if req.IsActive != nil {
		memberType.IsActive = *req.IsActive
	}

	if err := db.DB.Create(&memberType).Error; err != nil {
		log.Printf("Failed to create member type: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create member type"})
		return
	}

	ctx.JSON(http.StatusCreated, memberTypeResponse(&memberType, 0))
}

func UpdateMemberType(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("member_type_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member type ID"})
		return
	}

	var req MemberTypeRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var memberType models.MemberType
	if err := db.DB.First(&memberType, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Member type not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve member type"})
		}
		return
	}

	memberType.Name = strings.TrimSpace(req.Name)
	memberType.Description = req.Description
	memberType.CanBeParent = req.CanBeParent
	memberType.CanBeChild = req.CanBeChild
	memberType.DisplayOrder = req.DisplayOrder
	if req.IsActive != nil {
		memberType.IsActive = *req.IsActive
	}

	if err := db.DB.Save(&memberType).Error; err != nil {
		log.Printf("Failed to update member type: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member type"})
		return
	}

	ctx.JSON(http.StatusOK, memberTypeResponse(&memberType, memberTypeCount(memberType.ID)))
}

func DeleteMemberType(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("member_type_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member type ID"})
		return
	}

	var memberType models.MemberType
	if err := db.DB.First(&memberType, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Member type not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve member type"})
		}
		return
	}

	if count := memberTypeCount(memberType.ID); count > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Member type is assigned to members"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_type_id = ? OR child_type_id = ?", memberType.ID, memberType.ID).
			Unscoped().Delete(&models.MemberTypeRelationship{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&memberType).Error
	})
	if err != nil {
		log.Printf("Failed to delete member type: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete member type"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

type ReorderMemberTypesRequest struct {
	OrderedIDs []uint `json:"ordered_ids" binding:"required,min=1"`
}

// ReorderMemberTypes rewrites display_order to match the given ID sequence.
func ReorderMemberTypes(ctx *gin.Context) {
	var req ReorderMemberTypesRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for position, typeID := range req.OrderedIDs {
			result := tx.Model(&models.MemberType{}).Where("id = ?", typeID).
				Update("display_order", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Member type not found"})
			return
		}
		log.Printf("Failed to reorder member types: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder member types"})
		return
	}

	ListMemberTypes(ctx)
}

type RelationshipRequest struct {
	ParentTypeID     uint   `json:"parent_type_id" binding:"required"`
	ChildTypeID      uint   `json:"child_type_id" binding:"required"`
	RelationshipName string `json:"relationship_name" binding:"omitempty,max=100"`
	MaxChildren      *int   `json:"max_children" binding:"omitempty,min=1"`
	IsActive         *bool  `json:"is_active"`
}

type RelationshipResponse struct {
	ID               uint   `json:"id"`
	ParentTypeID     uint   `json:"parent_type_id"`
	ParentTypeName   string `json:"parent_type_name"`
	ChildTypeID      uint   `json:"child_type_id"`
	ChildTypeName    string `json:"child_type_name"`
	RelationshipName string `json:"relationship_name"`
	MaxChildren      *int   `json:"max_children"`
	IsActive         bool   `json:"is_active"`
}

func relationshipResponse(rel *models.MemberTypeRelationship) RelationshipResponse {
	return RelationshipResponse{
		ID:               rel.ID,
		ParentTypeID:     rel.ParentTypeID,
		ParentTypeName:   rel.ParentType.Name,
		ChildTypeID:      rel.ChildTypeID,
		ChildTypeName:    rel.ChildType.Name,
		RelationshipName: rel.RelationshipName,
		MaxChildren:      rel.MaxChildren,
		IsActive:         rel.IsActive,
	}
}

func ListMemberTypeRelationships(ctx *gin.Context) {
	var relationships []models.MemberTypeRelationship
	err := db.DB.Preload("ParentType").Preload("ChildType").
		Order("parent_type_id, child_type_id").Find(&relationships).Error
	if err != nil {
		log.Printf("Failed to list member type relationships: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve relationships"})
		return
	}

	response := make([]RelationshipResponse, 0, len(relationships))
	for i := range relationships {
		response = append(response, relationshipResponse(&relationships[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateMemberTypeRelationship(ctx *gin.Context) {
	var req RelationshipRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.ParentTypeID == req.ChildTypeID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "A member type cannot be its own parent type"})
		return
	}

	var parentType, childType models.MemberType
	if err := db.DB.First(&parentType, req.ParentTypeID).Error; err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Parent type not found"})
		return
	}
	if err := db.DB.First(&childType, req.ChildTypeID).Error; err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Child type not found"})
		return
	}

	if !parentType.CanBeParent {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Parent type cannot hold dependents"})
		return
	}
	if !childType.CanBeChild {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Child type cannot be a dependent type"})
		return
	}

	var existing models.MemberTypeRelationship
	err := db.DB.Where("parent_type_id = ? AND child_type_id = ?", req.ParentTypeID, req.ChildTypeID).
		First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Relationship already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking relationship: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	name := strings.TrimSpace(req.RelationshipName)
	if name == "" {
		name = "Dependent"
	}

	relationship := models.MemberTypeRelationship{
		ParentTypeID:     req.ParentTypeID,
		ChildTypeID:      req.ChildTypeID,
		RelationshipName: name,
		MaxChildren:      req.MaxChildren,
		IsActive:         true,
	}
	if req.IsActive != nil {
		relationship.IsActive = *req.IsActive
	}

	if err := db.DB.Create(&relationship).Error; err != nil {
		log.Printf("Failed to create relationship: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create relationship"})
		return
	}

	relationship.ParentType = parentType
	relationship.ChildType = childType
	ctx.JSON(http.StatusCreated, relationshipResponse(&relationship))
}

func UpdateMemberTypeRelationship(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("relationship_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	var req RelationshipRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var relationship models.MemberTypeRelationship
	err = db.DB.Preload("ParentType").Preload("ChildType").First(&relationship, uint(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Relationship not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve relationship"})
		}
		return
	}

	// The type pair is immutable; only the label, limits and activation change.
	if name := strings.TrimSpace(req.RelationshipName); name != "" {
		relationship.RelationshipName = name
	}
	relationship.MaxChildren = req.MaxChildren
	if req.IsActive != nil {
		relationship.IsActive = *req.IsActive
	}

	if err := db.DB.Save(&relationship).Error; err != nil {
		log.Printf("Failed to update relationship: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update relationship"})
		return
	}

	ctx.JSON(http.StatusOK, relationshipResponse(&relationship))
}

func DeleteMemberTypeRelationship(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("relationship_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	result := db.DB.Unscoped().Delete(&models.MemberTypeRelationship{}, uint(id))
	if result.Error != nil {
		log.Printf("Failed to delete relationship: %v", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete relationship"})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Relationship not found"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
