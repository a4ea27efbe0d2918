package types

import "time"

type UserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Nickname  string `json:"nickname,omitempty"`
	Role      string `json:"role,omitempty"`
}

type MemberSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
}

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type CalendarEntry struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Color       string `json:"color"`
	Category    string `json:"category"`
}

type RegistrationResponse struct {
	ID          uint          `json:"id"`
	EventID     uint          `json:"event_id"`
	Member      MemberSummary `json:"member"`
	Cancelled   bool          `json:"cancelled"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	FeeCharged  float64       `json:"fee_charged"`
	GuestCount  int           `json:"guest_count"`
}
