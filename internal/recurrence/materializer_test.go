package recurrence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

// flakyWriter fails writes for the listed dates and delegates the rest.
type flakyWriter struct {
	inner *Collection
	fail  map[string]bool
}

func (w *flakyWriter) InsertInstance(ctx context.Context, job *model.Job) (bool, error) {
	if w.fail[job.Date.String()] {
		return false, errors.New("disk full")
	}
	return w.inner.InsertInstance(ctx, job)
}

func TestMaterializeAssignsIdentity(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)
	specs, err := Expand(context.Background(), []model.Job{parent}, mustRange(t, "2024-01-02", "2024-01-31"), NewCollection(nil))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	coll := NewCollection(nil)
	res := Materialize(context.Background(), specs, coll, nil)
	if res.Generated != len(specs) || res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("result = %+v", res)
	}

	ids := make(map[uuid.UUID]bool)
	for _, j := range res.Jobs {
		if j.ID == uuid.Nil {
			t.Fatal("instance written without an id")
		}
		if ids[j.ID] {
			t.Fatalf("id %s reused", j.ID)
		}
		ids[j.ID] = true
		if j.CreatedAt.IsZero() || j.UpdatedAt.IsZero() {
			t.Errorf("%s: timestamps not set", j.Date)
		}
	}
}

func TestMaterializeContinuesPastFailures(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)
	rng := mustRange(t, "2024-01-08", "2024-01-29")
	coll := NewCollection([]model.Job{parent})

	specs, err := Expand(context.Background(), []model.Job{parent}, rng, coll)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	w := &flakyWriter{inner: coll, fail: map[string]bool{"2024-01-15": true}}
	res := Materialize(context.Background(), specs, w, nil)

	if res.Generated != 3 || res.Failed != 1 {
		t.Fatalf("result = generated %d failed %d, want 3 and 1", res.Generated, res.Failed)
	}

	// A later pass fills the gap left by the failed write.
	again, err := Expand(context.Background(), []model.Job{parent}, rng, coll)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got := dates(again); !equalStrings(got, []string{"2024-01-15"}) {
		t.Errorf("catch-up dates = %v, want [2024-01-15]", got)
	}
}

func TestMaterializeCountsConflictsAsSkipped(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)
	rng := mustRange(t, "2024-01-08", "2024-01-22")
	durable := NewCollection([]model.Job{parent})

	specs, err := Expand(context.Background(), []model.Job{parent}, rng, durable)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	first := Materialize(context.Background(), specs, durable, nil)
	second := Materialize(context.Background(), specs, durable, nil)

	if first.Generated != 3 {
		t.Errorf("first generated %d, want 3", first.Generated)
	}
	if second.Generated != 0 || second.Skipped != 3 || second.Failed != 0 {
		t.Errorf("second = %+v, want 3 skipped", second)
	}
}

func TestMaterializeStopsOnCancelledContext(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)
	specs, err := Expand(context.Background(), []model.Job{parent}, mustRange(t, "2024-01-02", "2024-01-31"), NewCollection(nil))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Materialize(ctx, specs, NewCollection(nil), nil)
	if res.Generated != 0 || res.Failed != len(specs) {
		t.Errorf("result = %+v, want every instance failed", res)
	}
}
