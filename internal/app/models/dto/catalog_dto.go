package dto

import "github.com/yigit/campushub/internal/app/models"

// EventQuery filters the public event catalog
type EventQuery struct {
	Q        string `form:"q"`
	Tag      string `form:"tag"`
	Category string `form:"category"`
}

// OpportunityQuery filters the public opportunity catalog
type OpportunityQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=job internship hackathon competition"`
	Q    string `form:"q"`
	Tag  string `form:"tag"`
}

// EventListResponse is a filtered catalog page. Sample marks built-in data
// shown because the live set was empty.
type EventListResponse struct {
	Items  []models.Event `json:"items"`
	Sample bool           `json:"sample"`
}

// OpportunityListResponse mirrors EventListResponse for opportunities
type OpportunityListResponse struct {
	Items  []models.Opportunity `json:"items"`
	Sample bool                 `json:"sample"`
}
