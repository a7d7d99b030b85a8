package recurrence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

// Collection is an in-memory job snapshot that satisfies Store. The schedule
// view expands against it so the visible calendar fills without waiting on
// per-date queries.
type Collection struct {
	mu    sync.RWMutex
	jobs  []model.Job
	index map[occurrence]struct{}
}

// NewCollection copies jobs into a new snapshot.
func NewCollection(jobs []model.Job) *Collection {
	c := &Collection{
		jobs:  make([]model.Job, 0, len(jobs)),
		index: make(map[occurrence]struct{}, len(jobs)),
	}
	for _, j := range jobs {
		c.appendLocked(j)
	}
	return c
}

func (c *Collection) appendLocked(j model.Job) {
	c.jobs = append(c.jobs, j)
	key := occurrence{series: j.SeriesKey(), date: j.Date.String()}
	c.index[key] = struct{}{}
}

func (c *Collection) HasInstance(ctx context.Context, seriesID uuid.UUID, date model.Date) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[occurrence{series: seriesID, date: date.String()}]
	return ok, nil
}

func (c *Collection) InsertInstance(ctx context.Context, job *model.Job) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[occurrence{series: job.SeriesKey(), date: job.Date.String()}]; ok {
		return false, nil
	}
	c.appendLocked(*job)
	return true, nil
}

func (c *Collection) ListParents(ctx context.Context, owner uuid.UUID) ([]model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []model.Job
	for _, j := range c.jobs {
		if !j.IsParent() {
			continue
		}
		if owner != uuid.Nil && j.OwnerID != owner {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

// EnsureSeries pins a parent's series id to its own id.
func (c *Collection) EnsureSeries(ctx context.Context, parentID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.jobs {
		if c.jobs[i].ID == parentID && c.jobs[i].SeriesID == nil {
			id := parentID
			c.jobs[i].SeriesID = &id
		}
	}
	return nil
}

// Jobs returns a copy of every job in the snapshot.
func (c *Collection) Jobs() []model.Job {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Job(nil), c.jobs...)
}

// InRange returns the jobs dated inside rng, ordered by date and time.
func (c *Collection) InRange(rng Range) []model.Job {
	c.mu.RLock()
	var out []model.Job
	for _, j := range c.jobs {
		if rng.Contains(j.Date) {
			out = append(out, j)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(a, b int) bool { return out[a].Less(&out[b]) })
	return out
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.jobs)
}
