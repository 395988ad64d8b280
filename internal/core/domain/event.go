package domain

// Event is a game event counter.
type Event struct {
	ID          string `json:"eventId"`
	Name        string `json:"name"`
	Description string `json:"description" table:"wide"`
	Value       int64  `json:"value"`
	ImageURI    string `json:"imageUri,omitempty" table:"wide"`
	Visible     bool   `json:"isVisible"`
}

// ValidateEventIncrement rejects empty ids and non-positive steps.
func ValidateEventIncrement(id string, steps int) error {
	if id == "" {
		return ErrMissingArgument.WithDetails("event id is required")
	}
	if steps <= 0 {
		return ErrInvalidArgument.WithDetails("steps must be positive")
	}
	return nil
}
