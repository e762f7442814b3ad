package dto

// UpdateProfileRequest is the owner's profile patch. Nil fields are left
// unchanged; an empty string clears an optional field.
type UpdateProfileRequest struct {
	FullName       *string  `json:"fullName,omitempty"`
	Headline       *string  `json:"headline,omitempty" binding:"omitempty,max=160"`
	Bio            *string  `json:"bio,omitempty" binding:"omitempty,max=4000"`
	Skills         []string `json:"skills,omitempty" binding:"omitempty,max=50"`
	LinkedinURL    *string  `json:"linkedinUrl,omitempty"`
	GithubURL      *string  `json:"githubUrl,omitempty"`
	WebsiteURL     *string  `json:"websiteUrl,omitempty"`
	Major          *string  `json:"major,omitempty"`
	GraduationYear *int     `json:"graduationYear,omitempty" binding:"omitempty,min=1950,max=2100"`
}

// MediaResponse carries the public URL of an uploaded image
type MediaResponse struct {
	URL string `json:"url"`
}
