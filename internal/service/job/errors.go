package job

import "errors"

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrInvalidDate        = errors.New("date is required")
	ErrInvalidTime        = errors.New("time must be in HH:MM format")
	ErrInvalidRule        = errors.New("recurrence_rule must be weekly, biweekly or monthly")
	ErrInvalidEndDate     = errors.New("recurrence_end_date must not be before date")
	ErrInvalidStatus      = errors.New("invalid job status")
	ErrInvalidPayment     = errors.New("invalid payment status")
	ErrInvalidRateType    = errors.New("rate_type must be flat or hourly")
	ErrNegativeValue      = errors.New("amount and duration must not be negative")
	ErrInstanceRecurrence = errors.New("a generated occurrence cannot carry its own recurrence")
	ErrOccupiedDate       = errors.New("the series already has a job on that date")
	ErrNoClientEmail      = errors.New("job has no client email to invoice")
	ErrInvoicingDisabled  = errors.New("invoicing is not configured")
)
