package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
	"github.com/Alijeyrad/serviceflow_backend/internal/store/storetest"
	"github.com/Alijeyrad/serviceflow_backend/pkg/email"
)

type captureSender struct {
	sent []email.InvoiceEmailData
	err  error
}

func (c *captureSender) SendInvoice(_ context.Context, data email.InvoiceEmailData) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, data)
	return nil
}

type env struct {
	st       *store.Store
	svc      Service
	sender   *captureSender
	owner    uuid.UUID
	client   model.Client
	employee model.Employee
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{st: storetest.New(t), sender: &captureSender{}, owner: model.NewID()}
	e.svc = New(e.st, e.sender)

	e.client = model.Client{OwnerID: e.owner, Name: "Maple Court", Email: "maple@example.com"}
	require.NoError(t, e.st.CreateClient(ctx, &e.client))
	e.employee = model.Employee{OwnerID: e.owner, Name: "Rin", Active: true}
	require.NoError(t, e.st.CreateEmployee(ctx, &e.employee))
	return e
}

func (e *env) request(date string) CreateRequest {
	clientID := e.client.ID
	return CreateRequest{
		ClientID:      &clientID,
		EmployeeIDs:   []uuid.UUID{e.employee.ID},
		Title:         "  Lawn care ",
		Date:          model.MustParseDate(date),
		Time:          "08:00",
		DurationHours: 2,
		Amount:        6000,
	}
}

func TestCreateDefaults(t *testing.T) {
	e := setup(t)
	req := e.request("2024-05-06")
	req.RecurrenceRule = model.RuleWeekly

	j, err := e.svc.Create(context.Background(), e.owner, req)
	require.NoError(t, err)
	assert.Equal(t, "Lawn care", j.Title)
	assert.Equal(t, model.RateFlat, j.RateType)
	assert.Equal(t, model.JobStatusScheduled, j.Status)
	assert.Equal(t, model.PaymentPending, j.PaymentStatus)
	assert.True(t, j.IsRecurring)
	require.NotNil(t, j.SeriesID)
	assert.Equal(t, j.ID, *j.SeriesID)

	got, err := e.svc.Get(context.Background(), e.owner, j.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{e.employee.ID}, got.EmployeeIDs)
}

func TestCreateValidation(t *testing.T) {
	e := setup(t)
	end := model.MustParseDate("2024-05-01")
	stranger := model.NewID()

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"missing date", func(r *CreateRequest) { r.Date = model.Date{} }, ErrInvalidDate},
		{"bad time", func(r *CreateRequest) { r.Time = "8am" }, ErrInvalidTime},
		{"negative amount", func(r *CreateRequest) { r.Amount = -1 }, ErrNegativeValue},
		{"bad rate", func(r *CreateRequest) { r.RateType = "daily" }, ErrInvalidRateType},
		{"bad rule", func(r *CreateRequest) { r.RecurrenceRule = "yearly" }, ErrInvalidRule},
		{"end before start", func(r *CreateRequest) { r.RecurrenceRule = model.RuleWeekly; r.RecurrenceEndDate = &end }, ErrInvalidEndDate},
		{"unknown client", func(r *CreateRequest) { r.ClientID = &stranger }, ErrClientNotFound},
		{"unknown employee", func(r *CreateRequest) { r.EmployeeIDs = []uuid.UUID{stranger} }, ErrEmployeeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := e.request("2024-05-06")
			tt.mutate(&req)
			_, err := e.svc.Create(context.Background(), e.owner, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClientOfAnotherOwnerIsRejected(t *testing.T) {
	e := setup(t)
	_, err := e.svc.Create(context.Background(), model.NewID(), e.request("2024-05-06"))
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestUpdatePatchesFields(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	j, err := e.svc.Create(ctx, e.owner, e.request("2024-05-06"))
	require.NoError(t, err)

	title := "Hedge trim"
	none := []uuid.UUID{}
	updated, err := e.svc.Update(ctx, e.owner, j.ID, UpdateRequest{Title: &title, EmployeeIDs: &none, ClearClient: true})
	require.NoError(t, err)
	assert.Equal(t, "Hedge trim", updated.Title)
	assert.Nil(t, updated.ClientID)
	assert.Equal(t, "08:00", updated.Time)

	got, err := e.svc.Get(ctx, e.owner, j.ID)
	require.NoError(t, err)
	assert.Empty(t, got.EmployeeIDs)
	assert.Nil(t, got.ClientID)
}

func TestUpdateInstanceCannotRecur(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	req := e.request("2024-05-06")
	req.RecurrenceRule = model.RuleWeekly
	parent, err := e.svc.Create(ctx, e.owner, req)
	require.NoError(t, err)

	inst := parent.InstanceOn(model.MustParseDate("2024-05-13"))
	inst.ID = model.NewID()
	ok, err := e.st.InsertInstance(ctx, &inst)
	require.NoError(t, err)
	require.True(t, ok)

	rule := model.RuleMonthly
	_, err = e.svc.Update(ctx, e.owner, inst.ID, UpdateRequest{RecurrenceRule: &rule})
	assert.ErrorIs(t, err, ErrInstanceRecurrence)

	// Moving the instance onto a date its series already covers hits the unique index.
	other := parent.InstanceOn(model.MustParseDate("2024-05-20"))
	other.ID = model.NewID()
	_, err = e.st.InsertInstance(ctx, &other)
	require.NoError(t, err)
	taken := other.Date
	_, err = e.svc.Update(ctx, e.owner, inst.ID, UpdateRequest{Date: &taken})
	assert.ErrorIs(t, err, ErrOccupiedDate)
}

func TestStatusAndPayment(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	j, err := e.svc.Create(ctx, e.owner, e.request("2024-05-06"))
	require.NoError(t, err)

	got, err := e.svc.SetStatus(ctx, e.owner, j.ID, model.JobStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)

	got, err = e.svc.SetPayment(ctx, e.owner, j.ID, model.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)

	_, err = e.svc.SetStatus(ctx, e.owner, j.ID, "done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = e.svc.SetPayment(ctx, e.owner, model.NewID(), model.PaymentPaid)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSendInvoice(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	fixed := time.Date(2024, 5, 7, 12, 0, 0, 0, time.UTC)
	e.svc.(*jobService).now = func() time.Time { return fixed }

	j, err := e.svc.Create(ctx, e.owner, e.request("2024-05-06"))
	require.NoError(t, err)

	sent, err := e.svc.SendInvoice(ctx, e.owner, j.ID, "Green Thumb")
	require.NoError(t, err)
	require.NotNil(t, sent.InvoiceSentAt)
	assert.True(t, fixed.Equal(*sent.InvoiceSentAt))

	require.Len(t, e.sender.sent, 1)
	data := e.sender.sent[0]
	assert.Equal(t, "maple@example.com", data.ClientEmail)
	assert.Equal(t, "2024-05-06", data.JobDate)
	assert.Equal(t, int64(6000), data.AmountMinor)
	assert.Equal(t, "Green Thumb", data.BusinessName)

	stored, err := e.svc.Get(ctx, e.owner, j.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InvoiceSentAt)
}

func TestSendInvoiceFailures(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	req := e.request("2024-05-06")
	req.ClientID = nil
	noClient, err := e.svc.Create(ctx, e.owner, req)
	require.NoError(t, err)
	_, err = e.svc.SendInvoice(ctx, e.owner, noClient.ID, "")
	assert.ErrorIs(t, err, ErrNoClientEmail)

	j, err := e.svc.Create(ctx, e.owner, e.request("2024-05-07"))
	require.NoError(t, err)
	e.sender.err = errors.New("smtp down")
	_, err = e.svc.SendInvoice(ctx, e.owner, j.ID, "")
	require.Error(t, err)
	stored, err := e.svc.Get(ctx, e.owner, j.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InvoiceSentAt, "a failed send leaves the job unmarked")

	disabled := New(e.st, nil)
	_, err = disabled.SendInvoice(ctx, e.owner, j.ID, "")
	assert.ErrorIs(t, err, ErrInvoicingDisabled)
}

func TestListFiltersAndDelete(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	for _, d := range []string{"2024-05-01", "2024-05-10", "2024-06-01"} {
		_, err := e.svc.Create(ctx, e.owner, e.request(d))
		require.NoError(t, err)
	}

	may, err := e.svc.List(ctx, e.owner, ListRequest{From: model.MustParseDate("2024-05-01"), To: model.MustParseDate("2024-05-31")})
	require.NoError(t, err)
	require.Len(t, may, 2)

	_, err = e.svc.List(ctx, e.owner, ListRequest{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	require.NoError(t, e.svc.Delete(ctx, e.owner, may[0].ID))
	assert.ErrorIs(t, e.svc.Delete(ctx, e.owner, may[0].ID), ErrJobNotFound)

	empty, err := e.svc.List(ctx, model.NewID(), ListRequest{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
