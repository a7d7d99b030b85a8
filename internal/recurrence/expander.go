// Package recurrence expands recurring parent jobs into concrete instances.
//
// The date walk is written once and runs against any backend through two
// small capabilities: Checker answers whether a (series, date) occurrence
// already exists, Writer persists a new one. Collection implements both in
// memory; the SQL store implements them with point queries.
package recurrence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

// Checker reports whether an occurrence of series already exists on date.
type Checker interface {
	HasInstance(ctx context.Context, seriesID uuid.UUID, date model.Date) (bool, error)
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start model.Date
	End   model.Date
}

func NewRange(start, end model.Date) Range {
	return Range{Start: start, End: end}
}

// ParseRange parses two ISO dates.
func ParseRange(start, end string) (Range, error) {
	s, err := model.ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	e, err := model.ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

// Empty is true when Start is after End.
func (r Range) Empty() bool {
	return r.Start.After(r.End)
}

func (r Range) Contains(d model.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Key identifies the range in seen-sets, e.g. "2024-01-07_2024-01-13".
func (r Range) Key() string {
	return r.Start.String() + "_" + r.End.String()
}

func (r Range) String() string {
	return r.Key()
}

type occurrence struct {
	series uuid.UUID
	date   string
}

// Expand computes the instances missing from rng for every recurring parent in
// parents. Nothing is persisted. Jobs that are not parents, or parents without
// a usable rule, are skipped. A checker failure aborts the whole call and no
// instances are returned.
func Expand(ctx context.Context, parents []model.Job, rng Range, checker Checker) ([]model.Job, error) {
	if rng.Empty() {
		return nil, nil
	}

	staged := make(map[occurrence]struct{})
	var out []model.Job

	for i := range parents {
		parent := &parents[i]
		if !parent.IsParent() || !parent.RecurrenceRule.Valid() || parent.Date.IsZero() {
			continue
		}

		seriesID := parent.SeriesKey()
		end := parent.RecurrenceEndDate

		cursor := parent.Date
		for cursor.Before(rng.Start) {
			cursor = Advance(cursor, parent.RecurrenceRule)
		}

		for ; !cursor.After(rng.End); cursor = Advance(cursor, parent.RecurrenceRule) {
			if end != nil && !end.IsZero() && cursor.After(*end) {
				break
			}
			if cursor.Equal(parent.Date) {
				continue
			}

			key := occurrence{series: seriesID, date: cursor.String()}
			if _, ok := staged[key]; ok {
				continue
			}

			exists, err := checker.HasInstance(ctx, seriesID, cursor)
			if err != nil {
				return nil, fmt.Errorf("check %s on %s: %w", seriesID, cursor, err)
			}
			if exists {
				continue
			}

			staged[key] = struct{}{}
			out = append(out, parent.InstanceOn(cursor))
		}
	}

	return out, nil
}
