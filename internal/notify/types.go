package notify

// Notification is a user-facing message with a read flag.
type Notification struct {
	ID        string `json:"-"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	Timestamp int64  `json:"timestamp"` // milliseconds since epoch
}
