package models

import "time"

// College is the organization owned by a college account
type College struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"ownerId" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Location    *string   `json:"location,omitempty" db:"location"`
	Website     *string   `json:"website,omitempty" db:"website"`
	LogoURL     *string   `json:"logoUrl,omitempty" db:"logo_url"`
	IsVerified  bool      `json:"isVerified" db:"is_verified"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Company is the organization owned by a company account
type Company struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"ownerId" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Industry    *string   `json:"industry,omitempty" db:"industry"`
	Description *string   `json:"description,omitempty" db:"description"`
	Website     *string   `json:"website,omitempty" db:"website"`
	LogoURL     *string   `json:"logoUrl,omitempty" db:"logo_url"`
	IsVerified  bool      `json:"isVerified" db:"is_verified"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// OrganizationFlags is the admin-only patch of verification and activity
type OrganizationFlags struct {
	IsVerified *bool
	IsActive   *bool
}

// Empty reports whether the patch changes nothing
func (f OrganizationFlags) Empty() bool {
	return f.IsVerified == nil && f.IsActive == nil
}
