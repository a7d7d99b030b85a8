package recurrence

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

func TestGeneratorGenerate(t *testing.T) {
	ctx := context.Background()
	weekly := newParent("2024-01-01", model.RuleWeekly)
	monthly := newParent("2024-01-01", model.RuleMonthly)

	other := newParent("2024-01-01", model.RuleWeekly)
	other.OwnerID = model.NewID()

	coll := NewCollection([]model.Job{weekly, monthly, other})
	gen := NewGenerator(coll, nil)
	rng := mustRange(t, "2024-01-01", "2024-02-01")

	t.Run("scoped to owner", func(t *testing.T) {
		res, err := gen.Generate(ctx, testOwner, rng)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		// weekly: 01-08, 15, 22, 29; monthly: 02-01
		if res.Generated != 5 {
			t.Errorf("generated %d, want 5", res.Generated)
		}
		for _, j := range res.Jobs {
			if j.OwnerID != testOwner {
				t.Errorf("instance for owner %s generated", j.OwnerID)
			}
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		res, err := gen.Generate(ctx, testOwner, rng)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if res.Generated != 0 {
			t.Errorf("generated %d on re-run, want 0", res.Generated)
		}
	})

	t.Run("all owners", func(t *testing.T) {
		res, err := gen.Generate(ctx, uuid.Nil, rng)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if res.Generated != 4 {
			t.Errorf("generated %d, want 4 for the remaining owner", res.Generated)
		}
	})

	t.Run("overlapping window only adds the new tail", func(t *testing.T) {
		res, err := gen.Generate(ctx, testOwner, mustRange(t, "2024-01-15", "2024-02-12"))
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if got := dates(res.Jobs); !equalStrings(got, []string{"2024-02-05", "2024-02-12"}) {
			t.Errorf("dates = %v, want [2024-02-05 2024-02-12]", got)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		res, err := gen.Generate(ctx, testOwner, mustRange(t, "2024-03-01", "2024-02-01"))
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if res.Generated != 0 {
			t.Errorf("generated %d for inverted range", res.Generated)
		}
	})
}

func TestGeneratorBackfillsSeries(t *testing.T) {
	ctx := context.Background()
	legacy := newParent("2024-01-01", model.RuleWeekly)
	coll := NewCollection([]model.Job{legacy})

	if _, err := NewGenerator(coll, nil).Generate(ctx, testOwner, mustRange(t, "2024-01-01", "2024-01-14")); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	parents, _ := coll.ListParents(ctx, testOwner)
	if len(parents) != 1 || parents[0].SeriesID == nil || *parents[0].SeriesID != legacy.ID {
		t.Fatalf("parent series not pinned to its own id: %+v", parents)
	}
}

// Two callers holding the same stale snapshot both believe every date is
// missing. Only the shared backend's uniqueness check keeps the series clean.
func TestStaleSnapshotsDuplicateWithoutBackstop(t *testing.T) {
	ctx := context.Background()
	parent := newParent("2024-01-01", model.RuleWeekly)
	rng := mustRange(t, "2024-01-08", "2024-01-22")

	snapA := NewCollection([]model.Job{parent})
	snapB := NewCollection([]model.Job{parent})

	specsA, err := Expand(ctx, []model.Job{parent}, rng, snapA)
	if err != nil {
		t.Fatalf("Expand A: %v", err)
	}
	specsB, err := Expand(ctx, []model.Job{parent}, rng, snapB)
	if err != nil {
		t.Fatalf("Expand B: %v", err)
	}
	if len(specsA) != 3 || len(specsB) != 3 {
		t.Fatalf("stale snapshots staged %d and %d, want 3 each", len(specsA), len(specsB))
	}

	durable := NewCollection([]model.Job{parent})
	a := Materialize(ctx, specsA, durable, nil)
	b := Materialize(ctx, specsB, durable, nil)

	if a.Generated != 3 || b.Generated != 0 || b.Skipped != 3 {
		t.Fatalf("a = %+v, b = %+v", a, b)
	}

	seen := make(map[string]int)
	for _, j := range durable.Jobs() {
		if j.ParentJobID != nil {
			seen[j.Date.String()]++
		}
	}
	for d, n := range seen {
		if n != 1 {
			t.Errorf("%s has %d instances", d, n)
		}
	}
}

func TestCollectionInRange(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)
	late := parent.InstanceOn(model.MustParseDate("2024-01-08"))
	late.ID = model.NewID()
	late.Time = "15:00"
	early := parent.InstanceOn(model.MustParseDate("2024-01-08"))
	early.ID = model.NewID()
	early.Time = "07:00"
	outside := parent.InstanceOn(model.MustParseDate("2024-02-08"))
	outside.ID = model.NewID()

	coll := NewCollection([]model.Job{late, parent, outside, early})
	got := coll.InRange(mustRange(t, "2024-01-01", "2024-01-31"))

	if len(got) != 3 {
		t.Fatalf("got %d jobs, want 3", len(got))
	}
	if got[0].ID != parent.ID || got[1].ID != early.ID || got[2].ID != late.ID {
		t.Errorf("unexpected order: %s %s, %s %s, %s %s",
			got[0].Date, got[0].Time, got[1].Date, got[1].Time, got[2].Date, got[2].Time)
	}
}
