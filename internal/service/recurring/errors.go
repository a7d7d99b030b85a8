package recurring

import "errors"

var (
	ErrInvalidRange  = errors.New("startDate and endDate must be dates in YYYY-MM-DD format")
	ErrOwnerRequired = errors.New("owner is required")
)
