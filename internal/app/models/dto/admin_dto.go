package dto

// AdminCreateUserRequest provisions an account of any role, admin included
type AdminCreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	FullName string      `json:"fullName" binding:"required"`
	Role     string      `json:"role" binding:"required,oneof=student college company admin"`
	Extra    SignupExtra `json:"extra"`
}

// UserStatusRequest activates or deactivates one profile
type UserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// BulkUserStatusRequest activates or deactivates many profiles
type BulkUserStatusRequest struct {
	IDs      []int64 `json:"ids" binding:"required,min=1,max=500,dive,min=1"`
	IsActive *bool   `json:"isActive" binding:"required"`
}

// UserRoleRequest reassigns an account's role
type UserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student college company admin"`
}

// BulkEventStatusRequest sets the status of many events
type BulkEventStatusRequest struct {
	IDs    []int64 `json:"ids" binding:"required,min=1,max=500,dive,min=1"`
	Status string  `json:"status" binding:"required,oneof=draft published cancelled completed"`
}

// BulkOpportunityStatusRequest activates or deactivates many opportunities
type BulkOpportunityStatusRequest struct {
	IDs      []int64 `json:"ids" binding:"required,min=1,max=500,dive,min=1"`
	IsActive *bool   `json:"isActive" binding:"required"`
}

// UserListQuery filters the admin user list. The active flag is read
// separately so an absent value stays distinguishable from false.
type UserListQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=student college company admin"`
	Q    string `form:"q"`
}
