package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

// Role names. The four defaults are seeded at startup and cannot be renamed.
const (
	RoleViewer = "viewer"
	RoleMember = "member"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// Permission names checked by the role middleware.
const (
	PermViewEvents       = "view_events"
	PermCreateEvents     = "create_events"
	PermEditEvents       = "edit_events"
	PermDeleteEvents     = "delete_events"
	PermManageCategories = "manage_categories"
	PermManageUsers      = "manage_users"
	PermAccessAdmin      = "access_admin"
)

// Event registration statuses.
const (
	RegistrationNotRequired            = "not_required"
	RegistrationRecommended            = "recommended"
	RegistrationRequired               = "required"
	RegistrationRequiredByCloseDate    = "required_by_close_date"
	RegistrationAdminsContactsOnly     = "admins_contacts_only"
	RegistrationTemporarilyUnavailable = "temporarily_unavailable"
	RegistrationClosed                 = "closed"
	RegistrationExternal               = "external"
)

// Who may see the registrant list of an event.
const (
	RegistrantListNone                  = "none"
	RegistrantListViewerPublic          = "viewer_public"
	RegistrantListMembers               = "members"
	RegistrantListRegisteredMembersOnly = "registered_members_only"
)

// Event action log actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Folder permission capabilities.
const (
	FolderPermView   = "view"
	FolderPermAdd    = "add"
	FolderPermEdit   = "edit"
	FolderPermDelete = "delete"
)

var RegistrationStatuses = []string{
	RegistrationNotRequired,
	RegistrationRecommended,
	RegistrationRequired,
	RegistrationRequiredByCloseDate,
	RegistrationAdminsContactsOnly,
	RegistrationTemporarilyUnavailable,
	RegistrationClosed,
	RegistrationExternal,
}

var RegistrantListVisibilities = []string{
	RegistrantListNone,
	RegistrantListViewerPublic,
	RegistrantListMembers,
	RegistrantListRegisteredMembersOnly,
}

const DefaultCategoryColor = "#007bff"

func ValidRegistrationStatus(s string) bool {
	for _, v := range RegistrationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func ValidRegistrantListVisibility(s string) bool {
	for _, v := range RegistrantListVisibilities {
		if v == s {
			return true
		}
	}
	return false
}
