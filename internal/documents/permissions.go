package documents

import (
	"github.com/commodore-dev/commodore/internal/models"
	"gorm.io/gorm"
)

// HasFolderPermission reports whether the user holds the capability ("view",
// "add", "edit", "delete") on the folder. Grants cascade down the tree, so
// the folder and each of its ancestors are checked against the user's role.
// Admins bypass the check entirely.
func HasFolderPermission(tx *gorm.DB, user *models.ClubUser, folder *models.DocumentFolder, capability string) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	if user.RoleID == nil {
		return false, nil
	}

	ancestors, err := Ancestors(tx, folder)
	if err != nil {
		return false, err
	}

	folderIDs := make([]uint, 0, len(ancestors)+1)
	for _, ancestor := range ancestors {
		folderIDs = append(folderIDs, ancestor.ID)
	}
	folderIDs = append(folderIDs, folder.ID)

	var permissions []models.FolderPermission
	err = tx.Where("folder_id IN ? AND role_id = ?", folderIDs, *user.RoleID).
		Find(&permissions).Error
	if err != nil {
		return false, err
	}

	for i := range permissions {
		if permissions[i].Grants(capability) {
			return true, nil
		}
	}

	return false, nil
}

// AccessibleFolderIDs returns the IDs of every folder the user can reach with
// the given capability, including descendants of granted folders.
func AccessibleFolderIDs(tx *gorm.DB, user *models.ClubUser, capability string) ([]uint, error) {
	if user == nil {
		return nil, nil
	}

	if user.IsAdmin() {
		var ids []uint
		if err := tx.Model(&models.DocumentFolder{}).Pluck("id", &ids).Error; err != nil {
			return nil, err
		}
		return ids, nil
	}

	if user.RoleID == nil {
		return nil, nil
	}

	var permissions []models.FolderPermission
	err := tx.Where("role_id = ?", *user.RoleID).Find(&permissions).Error
	if err != nil {
		return nil, err
	}

	idSet := make(map[uint]bool)
	for i := range permissions {
		if !permissions[i].Grants(capability) {
			continue
		}
		idSet[permissions[i].FolderID] = true

		descendants, err := Descendants(tx, permissions[i].FolderID)
		if err != nil {
			return nil, err
		}
		for _, descendant := range descendants {
			idSet[descendant.ID] = true
		}
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	return ids, nil
}
