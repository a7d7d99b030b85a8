package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/serviceflow_backend/config"
	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/recurring"
)

func seededService(t *testing.T) (recurring.Service, *recurrence.Collection) {
	t.Helper()
	parent := model.Job{
		ID:             model.NewID(),
		OwnerID:        model.NewID(),
		Title:          "Pool cleaning",
		Date:           model.MustParseDate("2024-01-01"),
		Status:         model.JobStatusScheduled,
		RateType:       model.RateFlat,
		PaymentStatus:  model.PaymentPending,
		IsRecurring:    true,
		RecurrenceRule: model.RuleWeekly,
	}
	coll := recurrence.NewCollection([]model.Job{parent})
	return recurring.New(coll, nil, nil, nil), coll
}

func TestCatchUpWindow(t *testing.T) {
	c := NewCatchUp(nil, time.Minute, 0)
	c.today = func() model.Date { return model.MustParseDate("2024-01-01") }

	w := c.Window()
	assert.Equal(t, "2024-01-01", w.Start.String())
	assert.Equal(t, "2024-01-31", w.End.String(), "default horizon is 30 days")
}

func TestCatchUpRunOnce(t *testing.T) {
	svc, coll := seededService(t)
	c := NewCatchUp(svc, time.Minute, 14)
	c.today = func() model.Date { return model.MustParseDate("2024-01-01") }

	n, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	// 01-08 and 01-15
	assert.Equal(t, 2, n)
	assert.Len(t, coll.InRange(c.Window()), 3)

	n, err = c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "a second pass over the same window creates nothing")
}

func TestCatchUpStartStops(t *testing.T) {
	svc, coll := seededService(t)
	c := NewCatchUp(svc, time.Hour, 7)
	c.today = func() model.Date { return model.MustParseDate("2024-01-01") }

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	require.Eventually(t, func() bool {
		return len(coll.InRange(c.Window())) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("catch-up loop did not stop")
	}
}

func TestCatchUpInterval(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, time.Hour, catchUpInterval(cfg))

	cfg.Recurrence.CatchUpIntervalMinutes = 15
	assert.Equal(t, 15*time.Minute, catchUpInterval(cfg))
}
