package recurrence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

// Store is a backend the Generator can expand against.
type Store interface {
	Checker
	Writer

	// ListParents returns the recurring parents of owner, or of every owner
	// when owner is uuid.Nil.
	ListParents(ctx context.Context, owner uuid.UUID) ([]model.Job, error)
}

// SeriesBackfiller is implemented by stores that can persist the series id of
// a parent created before series ids were assigned.
type SeriesBackfiller interface {
	EnsureSeries(ctx context.Context, parentID uuid.UUID) error
}

// Generator runs expand then materialize against one Store.
type Generator struct {
	store  Store
	logger *slog.Logger
}

func NewGenerator(store Store, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{store: store, logger: logger}
}

// Generate fills rng for owner (uuid.Nil for all owners). Parents are
// re-read on every call. A read failure returns an error before anything is
// written; write failures only show up in the Result counts.
func (g *Generator) Generate(ctx context.Context, owner uuid.UUID, rng Range) (Result, error) {
	if rng.Empty() {
		return Result{}, nil
	}

	parents, err := g.store.ListParents(ctx, owner)
	if err != nil {
		return Result{}, fmt.Errorf("list parents: %w", err)
	}

	specs, err := Expand(ctx, parents, rng, g.store)
	if err != nil {
		return Result{}, err
	}
	if len(specs) == 0 {
		return Result{}, nil
	}

	if b, ok := g.store.(SeriesBackfiller); ok {
		BackfillSeries(ctx, b, parents, specs, g.logger)
	}

	res := Materialize(ctx, specs, g.store, g.logger)
	if res.Failed > 0 {
		g.logger.Warn("recurrence: generation finished with failures",
			"owner_id", owner,
			"range", rng.Key(),
			"generated", res.Generated,
			"failed", res.Failed,
		)
	}
	return res, nil
}

// BackfillSeries pins the series id of every legacy parent in parents that
// has at least one staged instance in specs. Failures are logged only.
func BackfillSeries(ctx context.Context, b SeriesBackfiller, parents, specs []model.Job, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	needed := make(map[uuid.UUID]struct{})
	for i := range specs {
		if specs[i].ParentJobID != nil {
			needed[*specs[i].ParentJobID] = struct{}{}
		}
	}

	for i := range parents {
		p := &parents[i]
		if p.SeriesID != nil {
			continue
		}
		if _, ok := needed[p.ID]; !ok {
			continue
		}
		if err := b.EnsureSeries(ctx, p.ID); err != nil {
			logger.Warn("recurrence: series backfill failed", "parent_id", p.ID, "err", err)
		}
	}
}
