package domain

import "time"

// Project is a bidding project owned by a user. It is storage-agnostic and
// shared across repository and HTTP layers.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vendor is one bid card attached to a project. TotalCost is the canonical
// numeric value; display formatting happens at the edge.
type Vendor struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	VendorName  string     `json:"vendor_name"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	JobDuration string     `json:"job_duration,omitempty"`
	TotalCost   float64    `json:"total_cost"`
	IsFavorite  bool       `json:"is_favorite"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Share grants view access on a project to an invitee email.
type Share struct {
	ProjectID       string `json:"project_id"`
	OwnerID         string `json:"owner_id"`
	SharedWithEmail string `json:"shared_with_email"`
	PermissionLevel string `json:"permission_level"`
}

// Bundle is a project together with everything the edit screen needs.
type Bundle struct {
	Project Project  `json:"project"`
	Vendors []Vendor `json:"vendors"`
	Shares  []Share  `json:"shares"`
}

// FavoriteVendor is a favorites-screen row: a favorite vendor joined with
// the name of the project it belongs to.
type FavoriteVendor struct {
	ID          string    `json:"id"`
	VendorName  string    `json:"vendor_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	ProjectName string    `json:"project_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// PermissionView is the only permission level the app grants.
const PermissionView = "view"
