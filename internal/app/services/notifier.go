package services

// Notification types pushed to connected users
const (
	NotifyInquiryReceived     = "inquiry.received"
	NotifyConnectionRequested = "connection.requested"
	NotifyConnectionAnswered  = "connection.answered"
)

// Notifier pushes a best-effort event to a user. Delivery failures never
// affect the operation that triggered them.
type Notifier interface {
	Notify(userID int64, kind string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(int64, string, any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
