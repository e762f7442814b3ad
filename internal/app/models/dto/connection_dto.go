package dto

// CreateConnectionRequest asks another user to connect
type CreateConnectionRequest struct {
	ReceiverID int64 `json:"receiverId" binding:"required,min=1"`
}

// UpdateConnectionRequest is the receiver's answer
type UpdateConnectionRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// CreateInquiryRequest sends a message to the owner of a listing
type CreateInquiryRequest struct {
	TargetType string `json:"targetType" binding:"required,oneof=event opportunity"`
	TargetID   int64  `json:"targetId" binding:"required,min=1"`
	Subject    string `json:"subject" binding:"required,max=200"`
	Message    string `json:"message" binding:"required,max=8000"`
}
