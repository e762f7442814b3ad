package models

// PlatformStats is the admin overview
type PlatformStats struct {
	UsersByRole         map[Role]int64            `json:"usersByRole"`
	EventsByStatus      map[EventStatus]int64     `json:"eventsByStatus"`
	OpportunitiesByType map[OpportunityType]int64 `json:"opportunitiesByType"`
	TotalRegistrations  int64                     `json:"totalRegistrations"`
	TotalApplications   int64                     `json:"totalApplications"`
	CompletedRevenue    map[string]int64          `json:"completedRevenueCents"`
}
