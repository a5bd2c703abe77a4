package predict

import "math"

const (
	MinRooms = 1
	MaxRooms = 10
)

// Request is one estimate query.
type Request struct {
	Location string
	Sqft     float64
	BHK      int
	Bath     int
}

// ValidationError is returned for requests a client must correct.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

const MsgInvalidInput = "Invalid input parameters"

func (r Request) Validate() error {
	if math.IsNaN(r.Sqft) || math.IsInf(r.Sqft, 0) {
		return invalid(MsgInvalidInput)
	}
	if r.Sqft <= 0 {
		return invalid("Area must be positive")
	}
	if r.BHK < MinRooms || r.BHK > MaxRooms {
		return invalid("BHK must be between 1 and 10")
	}
	if r.Bath < MinRooms || r.Bath > MaxRooms {
		return invalid("Bathrooms must be between 1 and 10")
	}
	return nil
}
