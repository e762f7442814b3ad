package models

import (
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusDraft:     {EventStatusPublished, EventStatusCancelled},
	EventStatusPublished: {EventStatusCancelled, EventStatusCompleted},
}

// Valid reports whether s is a known status
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the college may move an event from s to next
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	for _, allowed := range eventTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DefaultCurrency is used when a paid event omits one
const DefaultCurrency = "USD"

// Event is a college-hosted event
type Event struct {
	ID                   int64       `json:"id" db:"id"`
	CollegeID            int64       `json:"collegeId" db:"college_id"`
	CollegeName          string      `json:"collegeName,omitempty" db:"-"`
	CreatedBy            int64       `json:"createdBy" db:"created_by"`
	Title                string      `json:"title" db:"title"`
	Description          string      `json:"description" db:"description"`
	Category             *string     `json:"category,omitempty" db:"category"`
	Tags                 []string    `json:"tags" db:"tags"`
	Venue                *string     `json:"venue,omitempty" db:"venue"`
	IsOnline             bool        `json:"isOnline" db:"is_online"`
	StartsAt             time.Time   `json:"startsAt" db:"starts_at"`
	EndsAt               *time.Time  `json:"endsAt,omitempty" db:"ends_at"`
	RegistrationDeadline *time.Time  `json:"registrationDeadline,omitempty" db:"registration_deadline"`
	Capacity             *int        `json:"capacity,omitempty" db:"capacity"`
	IsFree               bool        `json:"isFree" db:"is_free"`
	PriceCents           *int64      `json:"priceCents,omitempty" db:"price_cents"`
	Currency             *string     `json:"currency,omitempty" db:"currency"`
	Status               EventStatus `json:"status" db:"status"`
	BannerURL            *string     `json:"bannerUrl,omitempty" db:"banner_url"`
	SubEvents            []SubEvent  `json:"subEvents,omitempty" db:"-"`
	CreatedAt            time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time   `json:"updatedAt" db:"updated_at"`
	// CollegeInactive is set when an admin deactivated the hosting college
	CollegeInactive bool `json:"-" db:"-"`
}

// Listed reports whether students can see and act on the event
func (e *Event) Listed() bool {
	return e.Status == EventStatusPublished && !e.CollegeInactive
}

// NormalizePricing clears price fields on free events and defaults the
// currency on paid ones.
func (e *Event) NormalizePricing() {
	if e.IsFree {
		e.PriceCents = nil
		e.Currency = nil
		return
	}
	if e.Currency == nil || strings.TrimSpace(*e.Currency) == "" {
		c := DefaultCurrency
		e.Currency = &c
		return
	}
	c := strings.ToUpper(strings.TrimSpace(*e.Currency))
	e.Currency = &c
}

// Price returns the amount and currency to charge, zero for free events
func (e *Event) Price() (int64, string) {
	if e.IsFree || e.PriceCents == nil {
		return 0, ""
	}
	currency := DefaultCurrency
	if e.Currency != nil {
		currency = *e.Currency
	}
	return *e.PriceCents, currency
}

// RegistrationOpen reports whether students may still register at now
func (e *Event) RegistrationOpen(now time.Time) bool {
	if e.Status != EventStatusPublished {
		return false
	}
	if e.RegistrationDeadline != nil {
		return now.Before(*e.RegistrationDeadline)
	}
	return now.Before(e.StartsAt)
}

// SubEvent is a session or track inside an event
type SubEvent struct {
	ID          int64      `json:"id" db:"id"`
	EventID     int64      `json:"eventId" db:"event_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	StartsAt    *time.Time `json:"startsAt,omitempty" db:"starts_at"`
	Capacity    *int       `json:"capacity,omitempty" db:"capacity"`
}
