package models

import "time"

// InquiryTarget is what an inquiry is about
type InquiryTarget string

const (
	InquiryTargetEvent       InquiryTarget = "event"
	InquiryTargetOpportunity InquiryTarget = "opportunity"
)

// Valid reports whether t is a known target type
func (t InquiryTarget) Valid() bool {
	return t == InquiryTargetEvent || t == InquiryTargetOpportunity
}

// Inquiry is a message from a user to the owner of an event or opportunity
type Inquiry struct {
	ID            int64         `json:"id" db:"id"`
	SenderID      int64         `json:"senderId" db:"sender_id"`
	SenderName    string        `json:"senderName,omitempty" db:"-"`
	RecipientID   int64         `json:"recipientId" db:"recipient_id"`
	RecipientName string        `json:"recipientName,omitempty" db:"-"`
	TargetType    InquiryTarget `json:"targetType" db:"target_type"`
	TargetID      int64         `json:"targetId" db:"target_id"`
	Subject       string        `json:"subject" db:"subject"`
	Message       string        `json:"message" db:"message"`
	IsRead        bool          `json:"isRead" db:"is_read"`
	RepliedAt     *time.Time    `json:"repliedAt,omitempty" db:"replied_at"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}
