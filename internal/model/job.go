package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusScheduled, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

type RateType string

const (
	RateFlat   RateType = "flat"
	RateHourly RateType = "hourly"
)

func (r RateType) Valid() bool {
	return r == RateFlat || r == RateHourly
}

// Rule is the cadence of a recurring series. The empty rule means "none".
type Rule string

const (
	RuleNone     Rule = ""
	RuleWeekly   Rule = "weekly"
	RuleBiweekly Rule = "biweekly"
	RuleMonthly  Rule = "monthly"
)

func (r Rule) Valid() bool {
	switch r {
	case RuleWeekly, RuleBiweekly, RuleMonthly:
		return true
	}
	return false
}

// Job is one scheduled service visit. A parent job carries the recurrence
// rule; instances point back to it through ParentJobID and share its SeriesID.
type Job struct {
	ID       uuid.UUID  `json:"id"`
	OwnerID  uuid.UUID  `json:"owner_id"`
	ClientID *uuid.UUID `json:"client_id,omitempty"`

	EmployeeIDs []uuid.UUID `json:"employee_ids"`

	Title         string    `json:"title"`
	Date          Date      `json:"date"`
	Time          string    `json:"time"` // HH:MM
	DurationHours float64   `json:"duration_hours"`
	Status        JobStatus `json:"status"`
	Notes         string    `json:"notes,omitempty"`

	// Amount is in minor currency units.
	Amount        int64         `json:"amount"`
	RateType      RateType      `json:"rate_type"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	InvoiceSentAt *time.Time    `json:"invoice_sent_at,omitempty"`

	IsRecurring       bool       `json:"is_recurring"`
	RecurrenceRule    Rule       `json:"recurrence_rule,omitempty"`
	RecurrenceEndDate *Date      `json:"recurrence_end_date,omitempty"`
	ParentJobID       *uuid.UUID `json:"parent_job_id,omitempty"`
	SeriesID          *uuid.UUID `json:"series_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsParent reports whether j is the template of a recurring series.
func (j *Job) IsParent() bool {
	return j.IsRecurring && j.ParentJobID == nil
}

// SeriesKey resolves the series a job belongs to; a parent without an explicit
// series id is its own series.
func (j *Job) SeriesKey() uuid.UUID {
	if j.SeriesID != nil && *j.SeriesID != uuid.Nil {
		return *j.SeriesID
	}
	if j.ParentJobID != nil {
		return *j.ParentJobID
	}
	return j.ID
}

// InstanceOn builds the occurrence of parent j on date d. The copy is taken at
// generation time; later edits to the parent do not reach it.
func (j *Job) InstanceOn(d Date) Job {
	parentID := j.ID
	seriesID := j.SeriesKey()

	var clientID *uuid.UUID
	if j.ClientID != nil {
		c := *j.ClientID
		clientID = &c
	}

	return Job{
		OwnerID:       j.OwnerID,
		ClientID:      clientID,
		EmployeeIDs:   append([]uuid.UUID(nil), j.EmployeeIDs...),
		Title:         j.Title,
		Date:          d,
		Time:          j.Time,
		DurationHours: j.DurationHours,
		Status:        JobStatusScheduled,
		Amount:        j.Amount,
		RateType:      j.RateType,
		PaymentStatus: PaymentPending,
		IsRecurring:   false,
		ParentJobID:   &parentID,
		SeriesID:      &seriesID,
	}
}

// Less orders jobs by date then time slot.
func (j *Job) Less(o *Job) bool {
	if !j.Date.Equal(o.Date) {
		return j.Date.Before(o.Date)
	}
	return j.Time < o.Time
}
