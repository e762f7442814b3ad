package dto

import "github.com/yigit/campushub/internal/app/models"

// SignupExtra carries the role specific signup fields. Fields that do not
// apply to the chosen role are ignored.
type SignupExtra struct {
	// student
	CollegeID      *int64  `json:"collegeId,omitempty"`
	Major          *string `json:"major,omitempty"`
	GraduationYear *int    `json:"graduationYear,omitempty" binding:"omitempty,min=1950,max=2100"`

	// college
	CollegeName *string `json:"collegeName,omitempty"`
	Location    *string `json:"location,omitempty"`

	// company
	CompanyName *string `json:"companyName,omitempty"`
	Industry    *string `json:"industry,omitempty"`

	// college and company
	Website *string `json:"website,omitempty"`
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	FullName string      `json:"fullName" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
	Extra    SignupExtra `json:"extra"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	User  models.AuthUser `json:"user"`
	Token string          `json:"token"`
}

// SessionResponse is returned by GET /auth/user
type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *models.AuthUser `json:"user,omitempty"`
}

// UserWithRoleResponse is returned by GET /api/users/:id
type UserWithRoleResponse struct {
	Profile *models.Profile `json:"profile"`
	Role    models.Role     `json:"role"`
}
