package models

import "time"

// ConnectionStatus is the state of a connection request
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Valid reports whether s is a known status
func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionRejected:
		return true
	}
	return false
}

// Connection is a request between two users; unique per unordered pair
type Connection struct {
	ID          int64            `json:"id" db:"id"`
	RequesterID int64            `json:"requesterId" db:"requester_id"`
	ReceiverID  int64            `json:"receiverId" db:"receiver_id"`
	Status      ConnectionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

// Involves reports whether userID is one of the two parties
func (c *Connection) Involves(userID int64) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// OtherParty returns the id of the party that is not userID
func (c *Connection) OtherParty(userID int64) int64 {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// ConnectionView is a connection seen from one party
type ConnectionView struct {
	Connection
	Direction      string `json:"direction"` // "outgoing" or "incoming"
	OtherUserID    int64  `json:"otherUserId"`
	OtherUserName  string `json:"otherUserName"`
	OtherUserEmail string `json:"otherUserEmail"`
}
