package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/store/storetest"
)

func TestSummary(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	owner := model.NewID()

	jobs := []struct {
		date    string
		status  model.JobStatus
		payment model.PaymentStatus
		amount  int64
	}{
		{"2024-07-01", model.JobStatusCompleted, model.PaymentPaid, 10000},
		{"2024-07-02", model.JobStatusCompleted, model.PaymentPaid, 5000},
		{"2024-07-03", model.JobStatusCompleted, model.PaymentOverdue, 4000},
		{"2024-07-04", model.JobStatusScheduled, model.PaymentPending, 3000},
		{"2024-07-05", model.JobStatusCancelled, model.PaymentPending, 9999},
		{"2024-08-01", model.JobStatusCompleted, model.PaymentPaid, 70000},
	}
	for _, j := range jobs {
		job := model.Job{
			OwnerID:       owner,
			Title:         "Gutter clean",
			Date:          model.MustParseDate(j.date),
			Status:        j.status,
			PaymentStatus: j.payment,
			RateType:      model.RateFlat,
			Amount:        j.amount,
		}
		require.NoError(t, st.CreateJob(ctx, &job))
	}
	for _, e := range []model.Expense{
		{OwnerID: owner, Date: model.MustParseDate("2024-07-10"), Category: "fuel", Amount: 2500},
		{OwnerID: owner, Date: model.MustParseDate("2024-06-30"), Category: "fuel", Amount: 100000},
	} {
		require.NoError(t, st.CreateExpense(ctx, &e))
	}

	svc := New(st)
	sum, err := svc.Summary(ctx, owner, model.MustParseDate("2024-07-01"), model.MustParseDate("2024-07-31"))
	require.NoError(t, err)

	assert.Equal(t, int64(15000), sum.Revenue)
	assert.Equal(t, int64(7000), sum.Outstanding)
	assert.Equal(t, int64(4000), sum.Overdue)
	assert.Equal(t, int64(2500), sum.Expenses)
	assert.Equal(t, int64(12500), sum.Net)
	assert.Equal(t, int64(5), sum.TotalJobs)
	assert.Equal(t, int64(3), sum.JobsByStatus[model.JobStatusCompleted])
	assert.Equal(t, int64(1), sum.JobsByStatus[model.JobStatusCancelled])
}

func TestSummaryEmptyAndInvalid(t *testing.T) {
	ctx := context.Background()
	svc := New(storetest.New(t))

	sum, err := svc.Summary(ctx, model.NewID(), model.MustParseDate("2024-01-01"), model.MustParseDate("2024-01-31"))
	require.NoError(t, err)
	assert.Zero(t, sum.Revenue)
	assert.Zero(t, sum.Expenses)
	assert.Empty(t, sum.JobsByStatus)

	tests := []struct {
		name     string
		from, to model.Date
	}{
		{"missing from", model.Date{}, model.MustParseDate("2024-01-31")},
		{"missing to", model.MustParseDate("2024-01-01"), model.Date{}},
		{"inverted", model.MustParseDate("2024-02-01"), model.MustParseDate("2024-01-01")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Summary(ctx, model.NewID(), tt.from, tt.to)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}
