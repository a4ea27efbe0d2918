package membership

import (
	"time"

	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"gorm.io/gorm"
)

// RegistrationDecision explains why a member may or may not register.
type RegistrationDecision struct {
	Allowed bool
	Reason  string
}

func deny(reason string) RegistrationDecision {
	return RegistrationDecision{Allowed: false, Reason: reason}
}

// CanRegister evaluates the event's registration rules for the user.
// Event.Contacts and Event.AllowedMemberTypes and the user's MemberTypes must
// be preloaded.
func CanRegister(event *models.Event, user *models.ClubUser, now time.Time) RegistrationDecision {
	if user == nil || !user.IsActive {
		return deny("not an active member")
	}

	switch event.RegistrationStatus {
	case types.RegistrationNotRequired:
		return deny("this event does not take registrations")
	case types.RegistrationClosed:
		return deny("registration for this event is closed")
	case types.RegistrationExternal:
		return deny("registration for this event is handled externally")
	case types.RegistrationTemporarilyUnavailable:
		return deny("registration is temporarily unavailable")
	case types.RegistrationAdminsContactsOnly:
		if !user.IsAdmin() && !event.IsContact(user.ID) {
			return deny("registration is limited to admins and event contacts")
		}
	case types.RegistrationRecommended, types.RegistrationRequired, types.RegistrationRequiredByCloseDate:
		// open statuses, checked below
	default:
		return deny("unknown registration status")
	}

	if event.RegistrationOpensAt != nil && now.Before(*event.RegistrationOpensAt) {
		return deny("registration has not opened yet")
	}

	if now.After(event.EndsAt) {
		return deny("this event has already ended")
	}

	if !eligibleByMemberType(event, user) {
		return deny("your membership type is not eligible for this event")
	}

	return RegistrationDecision{Allowed: true}
}

// eligibleByMemberType checks the set intersection between the member's
// active types and the event's allowed types. An event with no allowed types
// is open to everyone.
func eligibleByMemberType(event *models.Event, user *models.ClubUser) bool {
	if len(event.AllowedMemberTypes) == 0 {
		return true
	}

	allowed := make(map[uint]bool, len(event.AllowedMemberTypes))
	for _, mt := range event.AllowedMemberTypes {
		allowed[mt.ID] = true
	}

	for _, id := range user.ActiveMemberTypeIDs() {
		if allowed[id] {
			return true
		}
	}

	return false
}

// ResolveFee returns the fee the member owes for the event: the lowest
// amount among fee rows matching any of the member's active types, zero when
// no row matches.
func ResolveFee(tx *gorm.DB, event *models.Event, user *models.ClubUser) (float64, error) {
	typeIDs := user.ActiveMemberTypeIDs()
	if len(typeIDs) == 0 {
		return 0, nil
	}

	var fees []models.EventRegistrationFee
	err := tx.Where("event_id = ? AND member_type_id IN ?", event.ID, typeIDs).
		Find(&fees).Error
	if err != nil {
		return 0, err
	}

	if len(fees) == 0 {
		return 0, nil
	}

	lowest := fees[0].Amount
	for _, fee := range fees[1:] {
		if fee.Amount < lowest {
			lowest = fee.Amount
		}
	}

	return lowest, nil
}
