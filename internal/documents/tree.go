package documents

import (
	"errors"
	"strings"

	"github.com/commodore-dev/commodore/internal/models"
	"gorm.io/gorm"
)

var ErrCircularFolder = errors.New("circular reference detected in folder hierarchy")

// Ancestors returns the folder's ancestor chain ordered root first. Returns
// ErrCircularFolder if a cycle is encountered while walking up.
func Ancestors(tx *gorm.DB, folder *models.DocumentFolder) ([]models.DocumentFolder, error) {
	var ancestors []models.DocumentFolder
	seen := map[uint]bool{folder.ID: true}

	parentID := folder.ParentID
	for parentID != nil {
		if seen[*parentID] {
			return nil, ErrCircularFolder
		}

		var parent models.DocumentFolder
		if err := tx.First(&parent, *parentID).Error; err != nil {
			return nil, err
		}

		seen[parent.ID] = true
		ancestors = append([]models.DocumentFolder{parent}, ancestors...)
		parentID = parent.ParentID
	}

	return ancestors, nil
}

// Descendants returns every folder below the given one, breadth first.
func Descendants(tx *gorm.DB, folderID uint) ([]models.DocumentFolder, error) {
	var descendants []models.DocumentFolder
	frontier := []uint{folderID}

	for len(frontier) > 0 {
		var children []models.DocumentFolder
		if err := tx.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}

		frontier = frontier[:0]
		for _, child := range children {
			descendants = append(descendants, child)
			frontier = append(frontier, child.ID)
		}
	}

	return descendants, nil
}

// FullPath returns the folder's path from the root, e.g. "Racing/2026/Results".
func FullPath(tx *gorm.DB, folder *models.DocumentFolder) (string, error) {
	ancestors, err := Ancestors(tx, folder)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(ancestors)+1)
	for _, ancestor := range ancestors {
		parts = append(parts, ancestor.Name)
	}
	parts = append(parts, folder.Name)

	return strings.Join(parts, "/"), nil
}

// ValidateParent rejects parent assignments that would make the hierarchy
// cyclic: a folder cannot be its own parent or move under one of its own
// descendants.
func ValidateParent(tx *gorm.DB, folderID uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if folderID != 0 && *parentID == folderID {
		return ErrCircularFolder
	}

	current := parentID
	for current != nil {
		if folderID != 0 && *current == folderID {
			return ErrCircularFolder
		}

		var parent models.DocumentFolder
		if err := tx.First(&parent, *current).Error; err != nil {
			return err
		}
		current = parent.ParentID
	}

	return nil
}
