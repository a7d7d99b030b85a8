package recurrence

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

// Writer persists one instance together with its employee assignments,
// atomically. It returns false without an error when an occurrence with the
// same (series, date) already exists.
type Writer interface {
	InsertInstance(ctx context.Context, job *model.Job) (bool, error)
}

// Result summarizes one materialization pass.
type Result struct {
	Generated int
	Skipped   int
	Failed    int

	// Jobs holds the instances that were written.
	Jobs []model.Job
}

func (r *Result) add(o Result) {
	r.Generated += o.Generated
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Jobs = append(r.Jobs, o.Jobs...)
}

// Materialize writes every pending instance through w. Each one gets a fresh id. A
// failed write is logged and counted; the remaining instances are still
// attempted, and a later pass over the same range picks the gap up.
func Materialize(ctx context.Context, specs []model.Job, w Writer, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	res := Result{}
	now := time.Now().UTC()

	for i := range specs {
		job := specs[i]
		if job.ID == uuid.Nil {
			job.ID = model.NewID()
		}
		if job.CreatedAt.IsZero() {
			job.CreatedAt = now
		}
		job.UpdatedAt = now

		if err := ctx.Err(); err != nil {
			res.Failed += len(specs) - i
			logger.Warn("recurrence: materialize cancelled",
				"remaining", len(specs)-i,
				"err", err,
			)
			break
		}

		written, err := w.InsertInstance(ctx, &job)
		switch {
		case err != nil:
			res.Failed++
			logger.Warn("recurrence: instance write failed",
				"series_id", job.SeriesKey(),
				"date", job.Date.String(),
				"err", err,
			)
		case !written:
			res.Skipped++
			logger.Debug("recurrence: instance already exists",
				"series_id", job.SeriesKey(),
				"date", job.Date.String(),
			)
		default:
			res.Generated++
			res.Jobs = append(res.Jobs, job)
		}
	}

	return res
}
