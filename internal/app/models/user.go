package models

import (
	"time"
)

// Account is the credential record behind every user
type Account struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// Profile holds the public and editable data of a user. ID equals the account id.
type Profile struct {
	ID             int64     `json:"id" db:"id"`
	FullName       string    `json:"fullName" db:"full_name"`
	Email          string    `json:"email" db:"email"`
	Headline       *string   `json:"headline,omitempty" db:"headline"`
	Bio            *string   `json:"bio,omitempty" db:"bio"`
	Skills         []string  `json:"skills" db:"skills"`
	LinkedinURL    *string   `json:"linkedinUrl,omitempty" db:"linkedin_url"`
	GithubURL      *string   `json:"githubUrl,omitempty" db:"github_url"`
	WebsiteURL     *string   `json:"websiteUrl,omitempty" db:"website_url"`
	AvatarURL      *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	CollegeID      *int64    `json:"collegeId,omitempty" db:"college_id"`
	Major          *string   `json:"major,omitempty" db:"major"`
	GraduationYear *int      `json:"graduationYear,omitempty" db:"graduation_year"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// UserRole is the role assignment row, one per account
type UserRole struct {
	ID        int64     `json:"id" db:"id"`
	AccountID int64     `json:"accountId" db:"account_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AuthUser is the identity returned by signup, login and the session check
type AuthUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Credentials is what login needs to verify a password
type Credentials struct {
	AuthUser
	PasswordHash string
	IsActive     bool
}

// UserSummary is a row of the admin user list
type UserSummary struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthSession is a server-side record for one issued token (id = jti)
type AuthSession struct {
	ID        string     `json:"id" db:"id"`
	AccountID int64      `json:"accountId" db:"account_id"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	RevokedAt *time.Time `json:"revokedAt,omitempty" db:"revoked_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// Usable reports whether the session is unrevoked and unexpired at now
func (s *AuthSession) Usable(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
