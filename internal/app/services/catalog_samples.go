package services

import (
	"time"

	"github.com/yigit/campushub/internal/app/models"
)

// Sample listings shown while the live catalog is empty. Negative ids keep
// them apart from stored rows; detail lookups never resolve them.

func strPtr(s string) *string { return &s }

func sampleEvents(now time.Time) []models.Event {
	start := now.Truncate(24*time.Hour).AddDate(0, 0, 14).Add(10 * time.Hour)
	price := int64(1500)
	currency := models.DefaultCurrency
	capacity := 120

	return []models.Event{
		{
			ID:          -1,
			CollegeName: "Northfield Institute of Technology",
			Title:       "Campus Cloud Workshop",
			Description: "Hands-on introduction to containers and managed databases.",
			Category:    strPtr("workshop"),
			Tags:        []string{"cloud", "devops", "beginner"},
			Venue:       strPtr("Engineering Hall 2"),
			StartsAt:    start,
			Capacity:    &capacity,
			IsFree:      true,
			Status:      models.EventStatusPublished,
		},
		{
			ID:          -2,
			CollegeName: "Lakeside University",
			Title:       "AI in Healthcare Summit",
			Description: "Talks and panels on applied machine learning in clinics.",
			Category:    strPtr("conference"),
			Tags:        []string{"ai", "healthcare"},
			IsOnline:    true,
			StartsAt:    start.AddDate(0, 0, 7),
			IsFree:      false,
			PriceCents:  &price,
			Currency:    &currency,
			Status:      models.EventStatusPublished,
		},
		{
			ID:          -3,
			CollegeName: "Lakeside University",
			Title:       "Spring Career Fair",
			Description: "Meet recruiters from local startups and enterprises.",
			Category:    strPtr("career"),
			Tags:        []string{"careers", "networking"},
			Venue:       strPtr("Main Quad"),
			StartsAt:    start.AddDate(0, 0, 21),
			IsFree:      true,
			Status:      models.EventStatusPublished,
		},
	}
}

func sampleOpportunities(now time.Time) []models.Opportunity {
	deadline := now.Truncate(24*time.Hour).AddDate(0, 1, 0)

	return []models.Opportunity{
		{
			ID:           -1,
			CompanyName:  "Brightwave Labs",
			Type:         models.OpportunityInternship,
			Title:        "Backend Engineering Intern",
			Description:  "Build APIs in Go and Postgres with a small platform team.",
			Location:     strPtr("Remote"),
			Tags:         []string{"go", "backend", "postgres"},
			Compensation: strPtr("Paid"),
			Deadline:     &deadline,
			IsActive:     true,
		},
		{
			ID:          -2,
			CompanyName: "Orbital Analytics",
			Type:        models.OpportunityJob,
			Title:       "Junior Data Analyst",
			Description: "Own dashboards and data quality checks for product teams.",
			Location:    strPtr("Berlin"),
			Tags:        []string{"sql", "analytics"},
			IsExternal:  true,
			ExternalURL: strPtr("https://careers.example.com/orbital/junior-data-analyst"),
			IsActive:    true,
		},
		{
			ID:          -3,
			Type:        models.OpportunityHackathon,
			Title:       "Open Campus Hackathon",
			Description: "48 hours to build tools that make student life easier.",
			Tags:        []string{"hackathon", "open-source"},
			Deadline:    &deadline,
			IsActive:    true,
		},
		{
			ID:          -4,
			CompanyName: "Brightwave Labs",
			Type:        models.OpportunityCompetition,
			Title:       "Secure Code Challenge",
			Description: "Find and fix vulnerabilities in a sample web service.",
			Tags:        []string{"security", "ctf"},
			IsActive:    true,
		},
	}
}
