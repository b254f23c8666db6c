package device

// Status is a device's registration lifecycle state.
type Status string

const (
	// StatusActive marks a device that is expected to report.
	StatusActive Status = "active"

	// StatusInactive marks a device that has been parked without being
	// removed from the registry.
	StatusInactive Status = "inactive"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Device is one registered field device, keyed by its sanitized serial
// number.
type Device struct {
	Serial    string `json:"serial"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Status    Status `json:"status"`
	CreatedAt int64  `json:"createdAt"` // milliseconds since epoch
}

// Update carries optional fields for a partial device update. Nil
// fields are left unchanged.
type Update struct {
	Name     *string
	Location *string
	Status   *Status
}

// Fields returns the update as a store merge payload. Returns an empty
// map when no field is set.
func (u Update) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Location != nil {
		fields["location"] = *u.Location
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	return fields
}
