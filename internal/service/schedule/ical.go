package schedule

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
)

const productID = "-//serviceflow//schedule//EN"

// Calendar renders the owner's jobs in rng as an iCalendar document. It only
// reads; ranges are not expanded here.
func (s *scheduleService) Calendar(ctx context.Context, owner uuid.UUID, rng recurrence.Range) ([]byte, error) {
	jobs, err := s.store.ListJobs(ctx, store.JobFilter{Owner: owner, From: rng.Start, To: rng.End})
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	stamp := time.Now().UTC()
	for i := range jobs {
		cal.Children = append(cal.Children, jobEvent(&jobs[i], stamp).Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func jobEvent(j *model.Job, stamp time.Time) *ical.Event {
	start, end := jobWindow(j)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, j.ID.String())
	event.Props.SetText(ical.PropSummary, j.Title)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, end)
	if j.Notes != "" {
		event.Props.SetText(ical.PropDescription, j.Notes)
	}
	if j.Status == model.JobStatusCancelled {
		event.Props.SetText(ical.PropStatus, "CANCELLED")
	} else {
		event.Props.SetText(ical.PropStatus, "CONFIRMED")
	}
	if j.ParentJobID != nil {
		event.Props.SetText(ical.PropRelatedTo, j.ParentJobID.String())
	}
	return event
}

// jobWindow places the job on its day. Jobs without a usable time slot start
// at midnight; jobs without a duration last one hour.
func jobWindow(j *model.Job) (time.Time, time.Time) {
	day := j.Date.Time()
	start := day
	if hh, mm, ok := parseSlot(j.Time); ok {
		start = day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
	}
	dur := time.Duration(j.DurationHours * float64(time.Hour))
	if dur <= 0 {
		dur = time.Hour
	}
	return start, start.Add(dur)
}

func parseSlot(s string) (int, int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
