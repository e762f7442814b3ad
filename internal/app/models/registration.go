package models

import "time"

// RegistrationStatus is the state of an event registration
type RegistrationStatus string

const (
	RegistrationPendingPayment RegistrationStatus = "pending_payment"
	RegistrationConfirmed      RegistrationStatus = "confirmed"
	RegistrationCancelled      RegistrationStatus = "cancelled"
)

// Registration links a student to an event and optionally one sub-event
type Registration struct {
	ID            int64              `json:"id" db:"id"`
	EventID       int64              `json:"eventId" db:"event_id"`
	EventTitle    string             `json:"eventTitle,omitempty" db:"-"`
	EventStartsAt *time.Time         `json:"eventStartsAt,omitempty" db:"-"`
	SubEventID    *int64             `json:"subEventId,omitempty" db:"sub_event_id"`
	UserID        int64              `json:"userId" db:"user_id"`
	AttendeeName  string             `json:"attendeeName,omitempty" db:"-"`
	AttendeeEmail string             `json:"attendeeEmail,omitempty" db:"-"`
	Status        RegistrationStatus `json:"status" db:"status"`
	Payment       *Payment           `json:"payment,omitempty" db:"-"`
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" db:"updated_at"`
}

// PaymentStatus is the state of a payment record
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
}

// CanTransitionTo reports whether a payment may move from s to next
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Payment records the money side of a priced registration. No provider is
// called; the state is driven by the API.
type Payment struct {
	ID             int64         `json:"id" db:"id"`
	RegistrationID int64         `json:"registrationId" db:"registration_id"`
	UserID         int64         `json:"userId,omitempty" db:"-"`
	AmountCents    int64         `json:"amountCents" db:"amount_cents"`
	Currency       string        `json:"currency" db:"currency"`
	Status         PaymentStatus `json:"status" db:"status"`
	ProviderRef    *string       `json:"providerRef,omitempty" db:"provider_ref"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}
