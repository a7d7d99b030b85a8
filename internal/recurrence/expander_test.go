package recurrence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

var (
	testOwner    = uuid.MustParse("0190a3c2-0000-7000-8000-000000000001")
	testClient   = uuid.MustParse("0190a3c2-0000-7000-8000-0000000000c1")
	testEmployee = uuid.MustParse("0190a3c2-0000-7000-8000-0000000000e1")
)

func newParent(date string, rule model.Rule) model.Job {
	client := testClient
	return model.Job{
		ID:             model.NewID(),
		OwnerID:        testOwner,
		ClientID:       &client,
		EmployeeIDs:    []uuid.UUID{testEmployee},
		Title:          "Pool cleaning",
		Date:           model.MustParseDate(date),
		Time:           "09:30",
		DurationHours:  1.5,
		Status:         model.JobStatusCompleted,
		Amount:         12500,
		RateType:       model.RateHourly,
		PaymentStatus:  model.PaymentPaid,
		IsRecurring:    true,
		RecurrenceRule: rule,
	}
}

func withEnd(j model.Job, end string) model.Job {
	d := model.MustParseDate(end)
	j.RecurrenceEndDate = &d
	return j
}

func dates(jobs []model.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Date.String())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustRange(t *testing.T, start, end string) Range {
	t.Helper()
	rng, err := ParseRange(start, end)
	if err != nil {
		t.Fatalf("ParseRange(%q, %q): %v", start, end, err)
	}
	return rng
}

func TestExpandScenarios(t *testing.T) {
	noRule := newParent("2024-01-01", model.RuleNone)

	tests := []struct {
		name   string
		parent model.Job
		start  string
		end    string
		want   []string
	}{
		{
			name:   "weekly inside range",
			parent: newParent("2024-01-01", model.RuleWeekly),
			start:  "2024-01-08",
			end:    "2024-01-22",
			want:   []string{"2024-01-08", "2024-01-15", "2024-01-22"},
		},
		{
			name:   "monthly excludes the parent's own date",
			parent: newParent("2024-01-01", model.RuleMonthly),
			start:  "2024-01-01",
			end:    "2024-04-01",
			want:   []string{"2024-02-01", "2024-03-01", "2024-04-01"},
		},
		{
			name:   "end date cuts the series",
			parent: withEnd(newParent("2024-01-01", model.RuleWeekly), "2024-01-20"),
			start:  "2024-01-01",
			end:    "2024-01-31",
			want:   []string{"2024-01-08", "2024-01-15"},
		},
		{
			name:   "recurring flag without rule is inert",
			parent: noRule,
			start:  "2024-01-01",
			end:    "2024-12-31",
			want:   []string{},
		},
		{
			name:   "biweekly",
			parent: newParent("2024-01-01", model.RuleBiweekly),
			start:  "2024-01-01",
			end:    "2024-02-12",
			want:   []string{"2024-01-15", "2024-01-29", "2024-02-12"},
		},
		{
			name:   "monthly rollover continues from the rolled date",
			parent: newParent("2024-01-31", model.RuleMonthly),
			start:  "2024-02-01",
			end:    "2024-05-31",
			want:   []string{"2024-03-02", "2024-04-02", "2024-05-02"},
		},
		{
			name:   "inverted range is empty",
			parent: newParent("2024-01-01", model.RuleWeekly),
			start:  "2024-02-01",
			end:    "2024-01-01",
			want:   []string{},
		},
		{
			name:   "series ended before range",
			parent: withEnd(newParent("2024-01-01", model.RuleWeekly), "2024-01-10"),
			start:  "2024-02-01",
			end:    "2024-02-29",
			want:   []string{},
		},
		{
			name:   "range before parent date",
			parent: newParent("2024-06-01", model.RuleWeekly),
			start:  "2024-01-01",
			end:    "2024-05-31",
			want:   []string{},
		},
		{
			name:   "single day range on an occurrence",
			parent: newParent("2024-01-01", model.RuleWeekly),
			start:  "2024-01-15",
			end:    "2024-01-15",
			want:   []string{"2024-01-15"},
		},
		{
			name:   "end date on an occurrence is inclusive",
			parent: withEnd(newParent("2024-01-01", model.RuleWeekly), "2024-01-15"),
			start:  "2024-01-01",
			end:    "2024-01-31",
			want:   []string{"2024-01-08", "2024-01-15"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(context.Background(), []model.Job{tt.parent}, mustRange(t, tt.start, tt.end), NewCollection(nil))
			if err != nil {
				t.Fatalf("Expand: %v", err)
			}
			if !equalStrings(dates(got), tt.want) {
				t.Errorf("dates = %v, want %v", dates(got), tt.want)
			}
		})
	}
}

func TestExpandIdempotentAfterPersist(t *testing.T) {
	ctx := context.Background()
	parent := newParent("2024-01-01", model.RuleWeekly)
	coll := NewCollection([]model.Job{parent})
	rng := mustRange(t, "2024-01-08", "2024-01-22")

	first, err := Expand(ctx, []model.Job{parent}, rng, coll)
	if err != nil {
		t.Fatalf("first Expand: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first Expand produced %d instances, want 3", len(first))
	}

	res := Materialize(ctx, first, coll, nil)
	if res.Generated != 3 {
		t.Fatalf("Materialize generated %d, want 3", res.Generated)
	}

	second, err := Expand(ctx, []model.Job{parent}, rng, coll)
	if err != nil {
		t.Fatalf("second Expand: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second Expand produced %v, want nothing", dates(second))
	}
}

func TestExpandFieldFidelity(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)
	parent.Notes = "gate code 1234"
	invoiced := parent.CreatedAt
	parent.InvoiceSentAt = &invoiced

	got, err := Expand(context.Background(), []model.Job{parent}, mustRange(t, "2024-01-01", "2024-01-31"), NewCollection(nil))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d instances, want 4", len(got))
	}

	for _, inst := range got {
		if inst.ClientID == nil || *inst.ClientID != *parent.ClientID {
			t.Errorf("%s: client = %v, want %v", inst.Date, inst.ClientID, *parent.ClientID)
		}
		if len(inst.EmployeeIDs) != 1 || inst.EmployeeIDs[0] != testEmployee {
			t.Errorf("%s: employees = %v", inst.Date, inst.EmployeeIDs)
		}
		if inst.Time != parent.Time || inst.DurationHours != parent.DurationHours {
			t.Errorf("%s: slot = %s/%v, want %s/%v", inst.Date, inst.Time, inst.DurationHours, parent.Time, parent.DurationHours)
		}
		if inst.Amount != parent.Amount || inst.RateType != parent.RateType {
			t.Errorf("%s: amount = %d %s, want %d %s", inst.Date, inst.Amount, inst.RateType, parent.Amount, parent.RateType)
		}
		if inst.Status != model.JobStatusScheduled {
			t.Errorf("%s: status = %s, want scheduled", inst.Date, inst.Status)
		}
		if inst.PaymentStatus != model.PaymentPending {
			t.Errorf("%s: payment = %s, want pending", inst.Date, inst.PaymentStatus)
		}
		if inst.IsRecurring || inst.RecurrenceRule != model.RuleNone {
			t.Errorf("%s: instance must not be recurring", inst.Date)
		}
		if inst.InvoiceSentAt != nil {
			t.Errorf("%s: invoice timestamp copied from parent", inst.Date)
		}
		if inst.ParentJobID == nil || *inst.ParentJobID != parent.ID {
			t.Errorf("%s: parent = %v, want %s", inst.Date, inst.ParentJobID, parent.ID)
		}
		if inst.SeriesID == nil || *inst.SeriesID != parent.ID {
			t.Errorf("%s: series = %v, want %s", inst.Date, inst.SeriesID, parent.ID)
		}
		if inst.Date.Equal(parent.Date) {
			t.Errorf("parent date generated as an instance")
		}
	}

	// The copy must not alias the parent's slice.
	got[0].EmployeeIDs[0] = uuid.Nil
	if parent.EmployeeIDs[0] != testEmployee {
		t.Error("instance shares employee slice with parent")
	}
}

func TestExpandUsesExplicitSeriesID(t *testing.T) {
	series := model.NewID()
	parent := newParent("2024-01-01", model.RuleWeekly)
	parent.SeriesID = &series

	got, err := Expand(context.Background(), []model.Job{parent}, mustRange(t, "2024-01-02", "2024-01-14"), NewCollection(nil))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 1 || *got[0].SeriesID != series {
		t.Fatalf("got %+v, want one instance in series %s", got, series)
	}
}

func TestExpandSkipsNonParents(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)

	instance := parent.InstanceOn(model.MustParseDate("2024-01-08"))
	instance.ID = model.NewID()
	instance.IsRecurring = true
	instance.RecurrenceRule = model.RuleWeekly

	single := newParent("2024-01-01", model.RuleWeekly)
	single.IsRecurring = false

	got, err := Expand(context.Background(), []model.Job{instance, single}, mustRange(t, "2024-01-01", "2024-03-01"), NewCollection(nil))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want nothing", dates(got))
	}
}

func TestExpandNoDuplicatesWithinCall(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)

	// The same parent listed twice must still produce one instance per date.
	got, err := Expand(context.Background(), []model.Job{parent, parent}, mustRange(t, "2024-01-01", "2024-02-29"), NewCollection(nil))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	seen := make(map[occurrence]bool)
	for _, j := range got {
		k := occurrence{series: j.SeriesKey(), date: j.Date.String()}
		if seen[k] {
			t.Fatalf("duplicate instance for %s on %s", k.series, k.date)
		}
		seen[k] = true
	}
	if len(got) != 8 {
		t.Errorf("got %d instances, want 8", len(got))
	}
}

func TestExpandRespectsExistingInstances(t *testing.T) {
	parent := newParent("2024-01-01", model.RuleWeekly)
	existing := parent.InstanceOn(model.MustParseDate("2024-01-15"))
	existing.ID = model.NewID()

	got, err := Expand(context.Background(), []model.Job{parent}, mustRange(t, "2024-01-08", "2024-01-22"), NewCollection([]model.Job{parent, existing}))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{"2024-01-08", "2024-01-22"}
	if !equalStrings(dates(got), want) {
		t.Errorf("dates = %v, want %v", dates(got), want)
	}
}

type failingChecker struct{ err error }

func (f failingChecker) HasInstance(context.Context, uuid.UUID, model.Date) (bool, error) {
	return false, f.err
}

func TestExpandAbortsOnCheckerError(t *testing.T) {
	boom := errors.New("connection reset")
	parents := []model.Job{
		newParent("2024-01-01", model.RuleWeekly),
		newParent("2024-01-02", model.RuleWeekly),
	}

	got, err := Expand(context.Background(), parents, mustRange(t, "2024-01-01", "2024-01-31"), failingChecker{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if got != nil {
		t.Errorf("got %d instances alongside an error", len(got))
	}
}

func TestRange(t *testing.T) {
	rng := NewRange(model.MustParseDate("2024-01-07"), model.MustParseDate("2024-01-13"))

	if rng.Key() != "2024-01-07_2024-01-13" {
		t.Errorf("Key() = %q", rng.Key())
	}
	if rng.Empty() {
		t.Error("range reported empty")
	}
	if !rng.Contains(model.MustParseDate("2024-01-13")) || rng.Contains(model.MustParseDate("2024-01-14")) {
		t.Error("Contains does not treat End as inclusive")
	}

	if _, err := ParseRange("2024-01-01", "nope"); err == nil {
		t.Error("ParseRange accepted an invalid end date")
	}
}
