package dto

import "time"

// EventRequest creates or replaces an event's editable fields
type EventRequest struct {
	Title                string     `json:"title" binding:"required,max=200"`
	Description          string     `json:"description"`
	Category             *string    `json:"category,omitempty"`
	Tags                 []string   `json:"tags,omitempty" binding:"omitempty,max=20"`
	Venue                *string    `json:"venue,omitempty"`
	IsOnline             bool       `json:"isOnline"`
	StartsAt             time.Time  `json:"startsAt" binding:"required"`
	EndsAt               *time.Time `json:"endsAt,omitempty"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	Capacity             *int       `json:"capacity,omitempty" binding:"omitempty,min=1"`
	IsFree               bool       `json:"isFree"`
	PriceCents           *int64     `json:"priceCents,omitempty" binding:"omitempty,min=0"`
	Currency             *string    `json:"currency,omitempty" binding:"omitempty,len=3"`
}

// EventStatusRequest moves an event through its lifecycle
type EventStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published cancelled completed"`
}

// SubEventRequest adds a sub-event
type SubEventRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description *string    `json:"description,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	Capacity    *int       `json:"capacity,omitempty" binding:"omitempty,min=1"`
}

// RegisterEventRequest is the body of POST /api/events/:id/register
type RegisterEventRequest struct {
	SubEventID *int64 `json:"subEventId,omitempty" binding:"omitempty,min=1"`
}

// CompletePaymentRequest marks a pending payment as paid
type CompletePaymentRequest struct {
	ProviderRef string `json:"providerRef" binding:"max=200"`
}
