// Package schedule serves the week and month calendar views. Opening a view
// fills in missing recurring instances for the visible range first, at most
// once per range per session.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
	"github.com/Alijeyrad/serviceflow_backend/pkg/observability"
)

type Mode string

const (
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

const sourceView = "view"

// ParseMode accepts "week" and "month"; empty means week.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeWeek:
		return ModeWeek, nil
	case ModeMonth:
		return ModeMonth, nil
	}
	return "", ErrInvalidView
}

// RangeFor returns the days a view anchored at anchor shows: Sunday through
// Saturday for a week, the whole calendar month for a month.
func RangeFor(mode Mode, anchor model.Date) recurrence.Range {
	if mode == ModeMonth {
		t := anchor.Time()
		first := model.NewDate(t.Year(), t.Month(), 1)
		return recurrence.NewRange(first, first.AddMonths(1).AddDays(-1))
	}
	start := anchor.AddDays(-int(anchor.Weekday()))
	return recurrence.NewRange(start, start.AddDays(6))
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ViewRequest struct {
	Owner   uuid.UUID
	Session string
	Mode    Mode
	Anchor  model.Date
}

type View struct {
	Mode      Mode        `json:"view"`
	Start     model.Date  `json:"start_date"`
	End       model.Date  `json:"end_date"`
	Jobs      []model.Job `json:"jobs"`
	Generated int         `json:"generated"`
}

// Store is the durable side of the view.
type Store interface {
	recurrence.Writer
	ListParents(ctx context.Context, owner uuid.UUID) ([]model.Job, error)
	ListJobs(ctx context.Context, f store.JobFilter) ([]model.Job, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	View(ctx context.Context, req ViewRequest) (*View, error)
	Calendar(ctx context.Context, owner uuid.UUID, rng recurrence.Range) ([]byte, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type scheduleService struct {
	store   Store
	seen    SeenSet
	metrics *observability.GenerationMetrics
	logger  *slog.Logger
}

// New builds the view service. seen defaults to a process-local set.
func New(st Store, seen SeenSet, metrics *observability.GenerationMetrics, logger *slog.Logger) Service {
	if seen == nil {
		seen = NewMemorySeenSet()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleService{store: st, seen: seen, metrics: metrics, logger: logger}
}

func (s *scheduleService) View(ctx context.Context, req ViewRequest) (*View, error) {
	if req.Anchor.IsZero() {
		req.Anchor = model.Today()
	}
	if req.Mode == "" {
		req.Mode = ModeWeek
	}
	rng := RangeFor(req.Mode, req.Anchor)

	parents, snap, err := s.snapshot(ctx, req.Owner, rng)
	if err != nil {
		return nil, err
	}

	view := &View{Mode: req.Mode, Start: rng.Start, End: rng.End}

	key := rangeKey(req.Owner, rng, parents)
	first, err := s.seen.Mark(ctx, req.Session, key)
	if err != nil {
		s.logger.Warn("schedule: seen-set unavailable, expanding anyway", "err", err)
		first = true
	}
	if !first {
		view.Jobs = snap.InRange(rng)
		return view, nil
	}

	generated, stale, err := s.expand(ctx, parents, snap, rng)
	if err != nil || stale {
		if ferr := s.seen.Forget(ctx, req.Session, key); ferr != nil {
			s.logger.Warn("schedule: forget seen range failed", "range", rng.Key(), "err", ferr)
		}
	}
	if err != nil {
		return nil, err
	}
	view.Generated = generated

	if stale {
		// Another writer got there first or a write failed; show what is durable.
		jobs, err := s.store.ListJobs(ctx, store.JobFilter{Owner: req.Owner, From: rng.Start, To: rng.End})
		if err != nil {
			return nil, fmt.Errorf("reload schedule: %w", err)
		}
		view.Jobs = jobs
		return view, nil
	}

	view.Jobs = snap.InRange(rng)
	return view, nil
}

// snapshot loads the owner's parents and the jobs already in rng into one
// in-memory collection.
func (s *scheduleService) snapshot(ctx context.Context, owner uuid.UUID, rng recurrence.Range) ([]model.Job, *recurrence.Collection, error) {
	parents, err := s.store.ListParents(ctx, owner)
	if err != nil {
		return nil, nil, fmt.Errorf("load parents: %w", err)
	}
	inRange, err := s.store.ListJobs(ctx, store.JobFilter{Owner: owner, From: rng.Start, To: rng.End})
	if err != nil {
		return nil, nil, fmt.Errorf("load schedule: %w", err)
	}

	ids := make(map[uuid.UUID]struct{}, len(inRange))
	jobs := make([]model.Job, 0, len(parents)+len(inRange))
	for _, j := range inRange {
		ids[j.ID] = struct{}{}
		jobs = append(jobs, j)
	}
	for _, p := range parents {
		if _, ok := ids[p.ID]; !ok {
			jobs = append(jobs, p)
		}
	}
	return parents, recurrence.NewCollection(jobs), nil
}

// expand stages missing instances into the snapshot and syncs them to the
// store. stale is true when the store did not accept every instance.
func (s *scheduleService) expand(ctx context.Context, parents []model.Job, snap *recurrence.Collection, rng recurrence.Range) (int, bool, error) {
	ctx, span := s.metrics.Start(ctx, sourceView)
	defer span.End()
	start := time.Now()

	specs, err := recurrence.Expand(ctx, parents, rng, snap)
	if err != nil {
		s.metrics.Record(ctx, sourceView, 0, 0, 0, time.Since(start), err)
		return 0, false, fmt.Errorf("expand schedule: %w", err)
	}
	if len(specs) == 0 {
		return 0, false, nil
	}

	staged := recurrence.Materialize(ctx, specs, snap, s.logger)
	if b, ok := s.store.(recurrence.SeriesBackfiller); ok {
		recurrence.BackfillSeries(ctx, b, parents, staged.Jobs, s.logger)
	}
	synced := recurrence.Materialize(ctx, staged.Jobs, s.store, s.logger)
	s.metrics.Record(ctx, sourceView, synced.Generated, synced.Skipped, synced.Failed, time.Since(start), nil)

	stale := synced.Generated != len(staged.Jobs)
	if stale {
		s.logger.Info("schedule: store rejected staged instances",
			"range", rng.Key(),
			"staged", len(staged.Jobs),
			"skipped", synced.Skipped,
			"failed", synced.Failed,
		)
	}
	return synced.Generated, stale, nil
}
