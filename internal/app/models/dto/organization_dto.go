package dto

// UpdateCollegeRequest edits the caller's college profile
type UpdateCollegeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// UpdateCompanyRequest edits the caller's company profile
type UpdateCompanyRequest struct {
	Name        string  `json:"name" binding:"required"`
	Industry    *string `json:"industry,omitempty"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// OrganizationFlagsRequest is the admin patch for colleges and companies
type OrganizationFlagsRequest struct {
	IsVerified *bool `json:"isVerified,omitempty"`
	IsActive   *bool `json:"isActive,omitempty"`
}
