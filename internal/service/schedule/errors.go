package schedule

import "errors"

var (
	ErrInvalidView   = errors.New("view must be week or month")
	ErrInvalidAnchor = errors.New("date must be in YYYY-MM-DD format")
)
