package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	drv, err := entsql.Open(dialect.SQLite, dsn)
	require.NoError(t, err)

	st := New(drv)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

type fixture struct {
	owner    uuid.UUID
	client   model.Client
	employee model.Employee
}

func seed(t *testing.T, st *Store) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{owner: model.NewID()}

	f.client = model.Client{OwnerID: f.owner, Name: "Hill House", Email: "hill@example.com"}
	require.NoError(t, st.CreateClient(ctx, &f.client))

	f.employee = model.Employee{OwnerID: f.owner, Name: "Sam", HourlyRate: 2500, Active: true}
	require.NoError(t, st.CreateEmployee(ctx, &f.employee))
	return f
}

func (f fixture) parent(date string, rule model.Rule) model.Job {
	clientID := f.client.ID
	return model.Job{
		OwnerID:        f.owner,
		ClientID:       &clientID,
		EmployeeIDs:    []uuid.UUID{f.employee.ID},
		Title:          "Deep clean",
		Date:           model.MustParseDate(date),
		Time:           "09:30",
		DurationHours:  3,
		Status:         model.JobStatusScheduled,
		Amount:         15000,
		RateType:       model.RateFlat,
		PaymentStatus:  model.PaymentPending,
		IsRecurring:    true,
		RecurrenceRule: rule,
	}
}

func rangeOf(t *testing.T, start, end string) recurrence.Range {
	t.Helper()
	rng, err := recurrence.ParseRange(start, end)
	require.NoError(t, err)
	return rng
}

func TestCreateAndGetJob(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	end := model.MustParseDate("2024-06-30")
	job := f.parent("2024-01-01", model.RuleWeekly)
	job.RecurrenceEndDate = &end
	job.Notes = "gate code 1234"
	require.NoError(t, st.CreateJob(ctx, &job))

	require.NotEqual(t, uuid.Nil, job.ID)
	require.NotNil(t, job.SeriesID)
	assert.Equal(t, job.ID, *job.SeriesID)

	got, err := st.GetJob(ctx, f.owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.Date.String())
	assert.Equal(t, "09:30", got.Time)
	assert.Equal(t, 3.0, got.DurationHours)
	assert.Equal(t, int64(15000), got.Amount)
	assert.Equal(t, model.RuleWeekly, got.RecurrenceRule)
	assert.Equal(t, "2024-06-30", got.RecurrenceEndDate.String())
	assert.Equal(t, []uuid.UUID{f.employee.ID}, got.EmployeeIDs)
	assert.Equal(t, f.client.ID, *got.ClientID)
	assert.True(t, got.IsParent())
	assert.Nil(t, got.InvoiceSentAt)

	_, err = st.GetJob(ctx, model.NewID(), job.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertInstanceIgnoresDuplicateSeriesDate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	parent := f.parent("2024-01-01", model.RuleWeekly)
	require.NoError(t, st.CreateJob(ctx, &parent))

	first := parent.InstanceOn(model.MustParseDate("2024-01-08"))
	first.ID = model.NewID()
	ok, err := st.InsertInstance(ctx, &first)
	require.NoError(t, err)
	assert.True(t, ok)

	dup := parent.InstanceOn(model.MustParseDate("2024-01-08"))
	dup.ID = model.NewID()
	ok, err = st.InsertInstance(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, ok, "second write for the same series and date must be ignored")

	has, err := st.HasInstance(ctx, parent.ID, model.MustParseDate("2024-01-08"))
	require.NoError(t, err)
	assert.True(t, has)

	has, err = st.HasInstance(ctx, parent.ID, model.MustParseDate("2024-01-15"))
	require.NoError(t, err)
	assert.False(t, has)

	jobs, err := st.ListJobs(ctx, JobFilter{Owner: f.owner})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = st.GetJob(ctx, f.owner, dup.ID)
	assert.ErrorIs(t, err, ErrNotFound, "the ignored write must not leave crew rows behind")
}

func TestGeneratorAgainstStore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	weekly := f.parent("2024-01-01", model.RuleWeekly)
	require.NoError(t, st.CreateJob(ctx, &weekly))
	monthly := f.parent("2024-01-15", model.RuleMonthly)
	require.NoError(t, st.CreateJob(ctx, &monthly))

	gen := recurrence.NewGenerator(st, nil)
	rng := rangeOf(t, "2024-01-01", "2024-02-29")

	res, err := gen.Generate(ctx, f.owner, rng)
	require.NoError(t, err)
	// weekly: 8 Mondays after Jan 1 through Feb 26; monthly: Feb 15
	assert.Equal(t, 9, res.Generated)
	assert.Zero(t, res.Failed)

	again, err := gen.Generate(ctx, f.owner, rng)
	require.NoError(t, err)
	assert.Zero(t, again.Generated)

	jobs, err := st.ListJobs(ctx, JobFilter{Owner: f.owner, From: rng.Start, To: rng.End})
	require.NoError(t, err)
	assert.Len(t, jobs, 11)

	for _, j := range jobs {
		if j.IsParent() {
			continue
		}
		assert.Equal(t, model.JobStatusScheduled, j.Status)
		assert.Equal(t, model.PaymentPending, j.PaymentStatus)
		assert.False(t, j.IsRecurring)
		assert.Equal(t, []uuid.UUID{f.employee.ID}, j.EmployeeIDs)
		assert.Equal(t, *j.ParentJobID, *j.SeriesID)
	}
}

// Two generators with equally stale snapshots both stage the same dates. The
// unique index keeps the durable series at one job per day.
func TestStaleSnapshotRejectedByStore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	parent := f.parent("2024-01-01", model.RuleWeekly)
	require.NoError(t, st.CreateJob(ctx, &parent))
	rng := rangeOf(t, "2024-01-02", "2024-01-31")

	specsA, err := recurrence.Expand(ctx, []model.Job{parent}, rng, recurrence.NewCollection([]model.Job{parent}))
	require.NoError(t, err)
	specsB, err := recurrence.Expand(ctx, []model.Job{parent}, rng, recurrence.NewCollection([]model.Job{parent}))
	require.NoError(t, err)
	require.Len(t, specsA, 4)
	require.Len(t, specsB, 4)

	a := recurrence.Materialize(ctx, specsA, st, nil)
	b := recurrence.Materialize(ctx, specsB, st, nil)
	assert.Equal(t, 4, a.Generated)
	assert.Equal(t, 0, b.Generated)
	assert.Equal(t, 4, b.Skipped)
	assert.Zero(t, b.Failed)

	jobs, err := st.ListJobs(ctx, JobFilter{Owner: f.owner, From: rng.Start, To: rng.End})
	require.NoError(t, err)
	assert.Len(t, jobs, 4)
}

func TestEnsureSeriesBackfillsLegacyParent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	parent := f.parent("2024-01-01", model.RuleBiweekly)
	require.NoError(t, st.CreateJob(ctx, &parent))

	// Rows written before series ids existed carry none.
	upd := st.builder().Update(jobsTable).Set("series_id", nil).Where(entsql.EQ("id", parent.ID))
	stmt, args := upd.Query()
	_, err := execStmt(ctx, st.drv, stmt, args)
	require.NoError(t, err)

	parents, err := st.ListParents(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	require.Nil(t, parents[0].SeriesID)

	res, err := recurrence.NewGenerator(st, nil).Generate(ctx, f.owner, rangeOf(t, "2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Generated)

	parents, err = st.ListParents(ctx, f.owner)
	require.NoError(t, err)
	require.NotNil(t, parents[0].SeriesID)
	assert.Equal(t, parent.ID, *parents[0].SeriesID)

	// A second backfill is a no-op.
	require.NoError(t, st.EnsureSeries(ctx, parent.ID))
}

func TestListParentsScopesOwner(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	a := seed(t, st)
	b := seed(t, st)

	pa := a.parent("2024-01-01", model.RuleWeekly)
	require.NoError(t, st.CreateJob(ctx, &pa))
	pb := b.parent("2024-01-01", model.RuleMonthly)
	require.NoError(t, st.CreateJob(ctx, &pb))

	oneOff := a.parent("2024-01-03", model.RuleNone)
	oneOff.IsRecurring = false
	require.NoError(t, st.CreateJob(ctx, &oneOff))

	got, err := st.ListParents(ctx, a.owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pa.ID, got[0].ID)

	all, err := st.ListParents(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateJobTouchesOnlyThatRow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	parent := f.parent("2024-01-01", model.RuleWeekly)
	require.NoError(t, st.CreateJob(ctx, &parent))
	_, err := recurrence.NewGenerator(st, nil).Generate(ctx, f.owner, rangeOf(t, "2024-01-01", "2024-01-14"))
	require.NoError(t, err)

	parent.Title = "Move-out clean"
	parent.Amount = 30000
	parent.EmployeeIDs = nil
	require.NoError(t, st.UpdateJob(ctx, &parent))

	got, err := st.GetJob(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Move-out clean", got.Title)
	assert.Empty(t, got.EmployeeIDs)

	jobs, err := st.ListJobs(ctx, JobFilter{Owner: f.owner, From: model.MustParseDate("2024-01-08"), To: model.MustParseDate("2024-01-08")})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Deep clean", jobs[0].Title)
	assert.Equal(t, int64(15000), jobs[0].Amount)

	other := parent
	other.OwnerID = model.NewID()
	assert.ErrorIs(t, st.UpdateJob(ctx, &other), ErrNotFound)
}

func TestJobStatusPaymentAndInvoice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	job := f.parent("2024-03-04", model.RuleNone)
	job.IsRecurring = false
	require.NoError(t, st.CreateJob(ctx, &job))

	require.NoError(t, st.SetJobStatus(ctx, f.owner, job.ID, model.JobStatusCompleted))
	require.NoError(t, st.SetPaymentStatus(ctx, f.owner, job.ID, model.PaymentPaid))
	sent := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.MarkInvoiceSent(ctx, f.owner, job.ID, sent))

	got, err := st.GetJob(ctx, f.owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)
	require.NotNil(t, got.InvoiceSentAt)
	assert.True(t, sent.Equal(*got.InvoiceSentAt))

	assert.ErrorIs(t, st.SetJobStatus(ctx, f.owner, model.NewID(), model.JobStatusCancelled), ErrNotFound)

	require.NoError(t, st.DeleteJob(ctx, f.owner, job.ID))
	assert.ErrorIs(t, st.DeleteJob(ctx, f.owner, job.ID), ErrNotFound)
}

func TestListJobsFilters(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	helper := model.Employee{OwnerID: f.owner, Name: "Alex", Active: true}
	require.NoError(t, st.CreateEmployee(ctx, &helper))

	a := f.parent("2024-05-01", model.RuleNone)
	a.IsRecurring = false
	require.NoError(t, st.CreateJob(ctx, &a))

	b := f.parent("2024-05-02", model.RuleNone)
	b.IsRecurring = false
	b.EmployeeIDs = []uuid.UUID{helper.ID, helper.ID}
	b.Status = model.JobStatusCancelled
	require.NoError(t, st.CreateJob(ctx, &b))

	byEmployee, err := st.ListJobs(ctx, JobFilter{Owner: f.owner, EmployeeID: helper.ID})
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)
	assert.Equal(t, b.ID, byEmployee[0].ID)
	assert.Equal(t, []uuid.UUID{helper.ID}, byEmployee[0].EmployeeIDs)

	byStatus, err := st.ListJobs(ctx, JobFilter{Owner: f.owner, Status: model.JobStatusScheduled})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, a.ID, byStatus[0].ID)

	// Removing a crew member drops their assignments.
	require.NoError(t, st.DeleteEmployee(ctx, f.owner, helper.ID))
	got, err := st.GetJob(ctx, f.owner, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.EmployeeIDs)
}

func TestClientsAndExpenses(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	clients, err := st.ListClients(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Hill House", clients[0].Name)

	f.client.Phone = "555-0100"
	require.NoError(t, st.UpdateClient(ctx, &f.client))
	c, err := st.GetClient(ctx, f.owner, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", c.Phone)

	for _, e := range []model.Expense{
		{OwnerID: f.owner, Date: model.MustParseDate("2024-02-01"), Category: "supplies", Amount: 1200},
		{OwnerID: f.owner, Date: model.MustParseDate("2024-02-20"), Category: "fuel", Amount: 800},
		{OwnerID: f.owner, Date: model.MustParseDate("2024-03-01"), Category: "fuel", Amount: 500},
	} {
		require.NoError(t, st.CreateExpense(ctx, &e))
	}

	feb, err := st.ListExpenses(ctx, f.owner, model.MustParseDate("2024-02-01"), model.MustParseDate("2024-02-29"))
	require.NoError(t, err)
	assert.Len(t, feb, 2)

	total, err := st.ExpenseTotal(ctx, f.owner, model.MustParseDate("2024-02-01"), model.MustParseDate("2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), total)

	none, err := st.ExpenseTotal(ctx, model.NewID(), model.Date{}, model.Date{})
	require.NoError(t, err)
	assert.Zero(t, none)

	require.NoError(t, st.DeleteClient(ctx, f.owner, f.client.ID))
	assert.ErrorIs(t, st.DeleteClient(ctx, f.owner, f.client.ID), ErrNotFound)
}

func TestJobTotals(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	f := seed(t, st)

	for i, p := range []model.PaymentStatus{model.PaymentPaid, model.PaymentPaid, model.PaymentOverdue} {
		j := f.parent(fmt.Sprintf("2024-04-0%d", i+1), model.RuleNone)
		j.IsRecurring = false
		j.PaymentStatus = p
		j.Status = model.JobStatusCompleted
		require.NoError(t, st.CreateJob(ctx, &j))
	}

	totals, err := st.JobTotals(ctx, f.owner, model.MustParseDate("2024-04-01"), model.MustParseDate("2024-04-30"))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	byPayment := map[model.PaymentStatus]JobTotals{}
	for _, tt := range totals {
		byPayment[tt.PaymentStatus] = tt
	}
	assert.Equal(t, int64(2), byPayment[model.PaymentPaid].Count)
	assert.Equal(t, int64(30000), byPayment[model.PaymentPaid].Amount)
	assert.Equal(t, int64(15000), byPayment[model.PaymentOverdue].Amount)
}

func TestIsNotFound(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	f := seed(t, st)

	_, err := st.GetJob(ctx, f.owner, model.NewID())
	assert.True(t, IsNotFound(err))

	// Records of another owner are invisible.
	_, err = st.GetClient(ctx, model.NewID(), f.client.ID)
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(fmt.Errorf("load client: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrConflict))
	assert.False(t, IsNotFound(nil))
}
