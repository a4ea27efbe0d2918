package membership

import (
	"errors"
	"fmt"

	"github.com/commodore-dev/commodore/internal/models"
	"gorm.io/gorm"
)

var (
	ErrParentRequired   = errors.New("parent member is required for dependent members")
	ErrOwnParent        = errors.New("a member cannot be their own parent")
	ErrCircularParent   = errors.New("circular parent relationship detected")
	ErrParentIneligible = errors.New("selected parent member cannot have dependents")
)

// ValidateDependent checks the parent/dependent rules before a user is saved:
// the parent must hold an active parent-capable type, an active
// MemberTypeRelationship must link one of the parent's types to one of the
// dependent's types, and the relationship's MaxChildren cap must not be
// exceeded. userID is zero for a user being created.
func ValidateDependent(tx *gorm.DB, userID uint, parentID *uint, memberTypeIDs []uint) error {
	if parentID == nil {
		return ErrParentRequired
	}
	if userID != 0 && *parentID == userID {
		return ErrOwnParent
	}

	var parent models.ClubUser
	err := tx.Preload("MemberTypes").First(&parent, *parentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("parent member not found")
		}
		return err
	}

	// Walking up from the parent must never reach the user being saved.
	if userID != 0 {
		current := parent.ParentMemberID
		for current != nil {
			if *current == userID {
				return ErrCircularParent
			}
			var link models.ClubUser
			if err := tx.Select("id", "parent_member_id").First(&link, *current).Error; err != nil {
				return err
			}
			current = link.ParentMemberID
		}
	}

	parentTypeIDs := make([]uint, 0, len(parent.MemberTypes))
	for _, mt := range parent.MemberTypes {
		if mt.IsActive && mt.CanBeParent {
			parentTypeIDs = append(parentTypeIDs, mt.ID)
		}
	}
	if len(parentTypeIDs) == 0 {
		return ErrParentIneligible
	}

	if len(memberTypeIDs) == 0 {
		return fmt.Errorf("dependent members need at least one member type")
	}

	var relationships []models.MemberTypeRelationship
	err = tx.Where(
		"parent_type_id IN ? AND child_type_id IN ? AND is_active = ?",
		parentTypeIDs, memberTypeIDs, true,
	).Find(&relationships).Error
	if err != nil {
		return err
	}

	if len(relationships) == 0 {
		return fmt.Errorf("no valid relationship between the parent's member types and the dependent's member types")
	}

	for _, rel := range relationships {
		if err := checkMaxChildren(tx, &rel, *parentID, userID); err == nil {
			return nil
		} else if !errors.Is(err, errMaxChildrenReached) {
			return err
		}
	}

	return fmt.Errorf("the parent member has reached the maximum number of dependents of this type")
}

var errMaxChildrenReached = errors.New("max children reached")

func checkMaxChildren(tx *gorm.DB, rel *models.MemberTypeRelationship, parentID, userID uint) error {
	if rel.MaxChildren == nil {
		return nil
	}

	query := tx.Model(&models.ClubUser{}).
		Joins("JOIN club_user_member_types cmt ON cmt.club_user_id = club_users.id").
		Where("club_users.parent_member_id = ? AND cmt.member_type_id = ?", parentID, rel.ChildTypeID)
	if userID != 0 {
		query = query.Where("club_users.id != ?", userID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}

	if count >= int64(*rel.MaxChildren) {
		return errMaxChildrenReached
	}

	return nil
}
