package store

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

var jobColumns = []string{
	"id",
	"owner_id",
	"client_id",
	"title",
	"date",
	"time_slot",
	"duration_hours",
	"status",
	"notes",
	"amount",
	"rate_type",
	"payment_status",
	"invoice_sent_at",
	"is_recurring",
	"recurrence_rule",
	"recurrence_end_date",
	"parent_job_id",
	"series_id",
	"created_at",
	"updated_at",
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Owner      uuid.UUID
	From, To   model.Date
	Status     model.JobStatus
	EmployeeID uuid.UUID
	ClientID   uuid.UUID
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func ptrUUID(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

func nullDate(d *model.Date) stdsql.NullString {
	if d == nil || d.IsZero() {
		return stdsql.NullString{}
	}
	return stdsql.NullString{String: d.String(), Valid: true}
}

func nullRule(r model.Rule) stdsql.NullString {
	if r == model.RuleNone {
		return stdsql.NullString{}
	}
	return stdsql.NullString{String: string(r), Valid: true}
}

func nullTime(t *time.Time) stdsql.NullTime {
	if t == nil {
		return stdsql.NullTime{}
	}
	return stdsql.NullTime{Time: t.UTC(), Valid: true}
}

func jobValues(j *model.Job) []any {
	return []any{
		j.ID,
		j.OwnerID,
		nullUUID(j.ClientID),
		j.Title,
		j.Date.String(),
		j.Time,
		j.DurationHours,
		string(j.Status),
		j.Notes,
		j.Amount,
		string(j.RateType),
		string(j.PaymentStatus),
		nullTime(j.InvoiceSentAt),
		j.IsRecurring,
		nullRule(j.RecurrenceRule),
		nullDate(j.RecurrenceEndDate),
		nullUUID(j.ParentJobID),
		nullUUID(j.SeriesID),
		j.CreatedAt.UTC(),
		j.UpdatedAt.UTC(),
	}
}

func scanJob(rows *entsql.Rows) (model.Job, error) {
	var (
		j                            model.Job
		clientID, parentID, seriesID uuid.NullUUID
		date, status, rate, payment  string
		invoiceSentAt                stdsql.NullTime
		rule, endDate                stdsql.NullString
	)
	err := rows.Scan(
		&j.ID, &j.OwnerID, &clientID, &j.Title, &date, &j.Time, &j.DurationHours,
		&status, &j.Notes, &j.Amount, &rate, &payment, &invoiceSentAt,
		&j.IsRecurring, &rule, &endDate, &parentID, &seriesID,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return j, fmt.Errorf("scan job: %w", err)
	}

	if j.Date, err = model.ParseDate(date); err != nil {
		return j, err
	}
	j.ClientID = ptrUUID(clientID)
	j.ParentJobID = ptrUUID(parentID)
	j.SeriesID = ptrUUID(seriesID)
	j.Status = model.JobStatus(status)
	j.RateType = model.RateType(rate)
	j.PaymentStatus = model.PaymentStatus(payment)
	j.RecurrenceRule = model.Rule(rule.String)
	if invoiceSentAt.Valid {
		t := invoiceSentAt.Time
		j.InvoiceSentAt = &t
	}
	if endDate.Valid && endDate.String != "" {
		d, err := model.ParseDate(endDate.String)
		if err != nil {
			return j, err
		}
		j.RecurrenceEndDate = &d
	}
	return j, nil
}

// selectJobs runs sel and attaches crew assignments to every returned job.
func (s *Store) selectJobs(ctx context.Context, q querier, sel *entsql.Selector) ([]model.Job, error) {
	stmt, args := sel.Query()
	rows, err := queryRows(ctx, q, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("store: query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachEmployees(ctx, q, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) attachEmployees(ctx context.Context, q querier, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]any, len(jobs))
	pos := make(map[uuid.UUID]int, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
		pos[jobs[i].ID] = i
		jobs[i].EmployeeIDs = []uuid.UUID{}
	}

	sel := s.builder().
		Select("job_id", "employee_id").
		From(s.builder().Table(jobEmployeesTable)).
		Where(entsql.In("job_id", ids...)).
		OrderBy("employee_id")
	stmt, args := sel.Query()
	rows, err := queryRows(ctx, q, stmt, args)
	if err != nil {
		return fmt.Errorf("store: query job employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID, employeeID uuid.UUID
		if err := rows.Scan(&jobID, &employeeID); err != nil {
			return fmt.Errorf("scan job employee: %w", err)
		}
		if i, ok := pos[jobID]; ok {
			jobs[i].EmployeeIDs = append(jobs[i].EmployeeIDs, employeeID)
		}
	}
	return rows.Err()
}

func (s *Store) insertEmployees(ctx context.Context, q querier, jobID uuid.UUID, employees []uuid.UUID) error {
	if len(employees) == 0 {
		return nil
	}
	ins := s.builder().Insert(jobEmployeesTable).Columns("job_id", "employee_id")
	seen := make(map[uuid.UUID]bool, len(employees))
	for _, e := range employees {
		if seen[e] {
			continue
		}
		seen[e] = true
		ins.Values(jobID, e)
	}
	stmt, args := ins.Query()
	if _, err := execStmt(ctx, q, stmt, args); err != nil {
		return fmt.Errorf("store: insert job employees: %w", err)
	}
	return nil
}

// ListParents returns every recurring parent. uuid.Nil selects all owners.
func (s *Store) ListParents(ctx context.Context, owner uuid.UUID) ([]model.Job, error) {
	preds := []*entsql.Predicate{
		entsql.EQ("is_recurring", true),
		entsql.IsNull("parent_job_id"),
	}
	if owner != uuid.Nil {
		preds = append(preds, entsql.EQ("owner_id", owner))
	}
	sel := s.builder().
		Select(jobColumns...).
		From(s.builder().Table(jobsTable)).
		Where(entsql.And(preds...)).
		OrderBy("date", "time_slot", "id")
	return s.selectJobs(ctx, s.drv, sel)
}

// HasInstance reports whether the series already has a row on date.
func (s *Store) HasInstance(ctx context.Context, seriesID uuid.UUID, date model.Date) (bool, error) {
	sel := s.builder().
		Select("id").
		From(s.builder().Table(jobsTable)).
		Where(entsql.And(
			entsql.EQ("series_id", seriesID),
			entsql.EQ("date", date.String()),
		)).
		Limit(1)
	stmt, args := sel.Query()
	rows, err := queryRows(ctx, s.drv, stmt, args)
	if err != nil {
		return false, fmt.Errorf("store: has instance: %w", err)
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}

// InsertInstance writes one generated occurrence and its crew in a single
// transaction. It returns false when the series already owns that date.
func (s *Store) InsertInstance(ctx context.Context, job *model.Job) (bool, error) {
	inserted := false
	err := s.withTx(ctx, func(tx dialect.Tx) error {
		ins := s.builder().
			Insert(jobsTable).
			Columns(jobColumns...).
			Values(jobValues(job)...).
			OnConflict(
				entsql.ConflictColumns("series_id", "date"),
				entsql.DoNothing(),
			)
		stmt, args := ins.Query()
		n, err := execStmt(ctx, tx, stmt, args)
		if err != nil {
			return fmt.Errorf("store: insert instance: %w", err)
		}
		if n == 0 {
			return nil
		}
		inserted = true
		return s.insertEmployees(ctx, tx, job.ID, job.EmployeeIDs)
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// EnsureSeries pins a parent's series id to its own id when it has none.
func (s *Store) EnsureSeries(ctx context.Context, parentID uuid.UUID) error {
	upd := s.builder().
		Update(jobsTable).
		Set("series_id", parentID).
		Where(entsql.And(
			entsql.EQ("id", parentID),
			entsql.IsNull("series_id"),
		))
	stmt, args := upd.Query()
	if _, err := execStmt(ctx, s.drv, stmt, args); err != nil {
		return fmt.Errorf("store: ensure series: %w", err)
	}
	return nil
}

// CreateJob inserts a user-authored job. A recurring parent becomes the head
// of its own series.
func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	if job.ID == uuid.Nil {
		job.ID = model.NewID()
	}
	now := time.Now().UTC()
	job.CreatedAt, job.UpdatedAt = now, now
	if job.IsParent() && job.SeriesID == nil {
		id := job.ID
		job.SeriesID = &id
	}

	return s.withTx(ctx, func(tx dialect.Tx) error {
		ins := s.builder().Insert(jobsTable).Columns(jobColumns...).Values(jobValues(job)...)
		stmt, args := ins.Query()
		if _, err := execStmt(ctx, tx, stmt, args); err != nil {
			return fmt.Errorf("store: create job: %w", err)
		}
		return s.insertEmployees(ctx, tx, job.ID, job.EmployeeIDs)
	})
}

func (s *Store) GetJob(ctx context.Context, owner, id uuid.UUID) (*model.Job, error) {
	sel := s.builder().
		Select(jobColumns...).
		From(s.builder().Table(jobsTable)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", owner)))
	jobs, err := s.selectJobs(ctx, s.drv, sel)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

// ListJobs returns the owner's jobs ordered by date and time slot.
func (s *Store) ListJobs(ctx context.Context, f JobFilter) ([]model.Job, error) {
	preds := []*entsql.Predicate{entsql.EQ("owner_id", f.Owner)}
	if !f.From.IsZero() {
		preds = append(preds, entsql.GTE("date", f.From.String()))
	}
	if !f.To.IsZero() {
		preds = append(preds, entsql.LTE("date", f.To.String()))
	}
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", string(f.Status)))
	}
	if f.ClientID != uuid.Nil {
		preds = append(preds, entsql.EQ("client_id", f.ClientID))
	}
	if f.EmployeeID != uuid.Nil {
		assigned := s.builder().
			Select("job_id").
			From(s.builder().Table(jobEmployeesTable)).
			Where(entsql.EQ("employee_id", f.EmployeeID))
		preds = append(preds, entsql.In("id", assigned))
	}

	sel := s.builder().
		Select(jobColumns...).
		From(s.builder().Table(jobsTable)).
		Where(entsql.And(preds...)).
		OrderBy("date", "time_slot", "id")
	return s.selectJobs(ctx, s.drv, sel)
}

// UpdateJob overwrites the mutable fields of an existing job and replaces its
// crew. Generated instances already on the calendar are left alone.
func (s *Store) UpdateJob(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now().UTC()
	return s.withTx(ctx, func(tx dialect.Tx) error {
		upd := s.builder().
			Update(jobsTable).
			Set("client_id", nullUUID(job.ClientID)).
			Set("title", job.Title).
			Set("date", job.Date.String()).
			Set("time_slot", job.Time).
			Set("duration_hours", job.DurationHours).
			Set("status", string(job.Status)).
			Set("notes", job.Notes).
			Set("amount", job.Amount).
			Set("rate_type", string(job.RateType)).
			Set("payment_status", string(job.PaymentStatus)).
			Set("is_recurring", job.IsRecurring).
			Set("recurrence_rule", nullRule(job.RecurrenceRule)).
			Set("recurrence_end_date", nullDate(job.RecurrenceEndDate)).
			Set("updated_at", job.UpdatedAt).
			Where(entsql.And(entsql.EQ("id", job.ID), entsql.EQ("owner_id", job.OwnerID)))
		stmt, args := upd.Query()
		n, err := execStmt(ctx, tx, stmt, args)
		if err != nil {
			return fmt.Errorf("store: update job: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		del := s.builder().Delete(jobEmployeesTable).Where(entsql.EQ("job_id", job.ID))
		stmt, args = del.Query()
		if _, err := execStmt(ctx, tx, stmt, args); err != nil {
			return fmt.Errorf("store: clear job employees: %w", err)
		}
		return s.insertEmployees(ctx, tx, job.ID, job.EmployeeIDs)
	})
}

// SetJobStatus moves a job through its lifecycle.
func (s *Store) SetJobStatus(ctx context.Context, owner, id uuid.UUID, status model.JobStatus) error {
	return s.updateJobColumn(ctx, owner, id, "status", string(status))
}

func (s *Store) SetPaymentStatus(ctx context.Context, owner, id uuid.UUID, status model.PaymentStatus) error {
	return s.updateJobColumn(ctx, owner, id, "payment_status", string(status))
}

func (s *Store) MarkInvoiceSent(ctx context.Context, owner, id uuid.UUID, at time.Time) error {
	return s.updateJobColumn(ctx, owner, id, "invoice_sent_at", at.UTC())
}

func (s *Store) updateJobColumn(ctx context.Context, owner, id uuid.UUID, column string, value any) error {
	upd := s.builder().
		Update(jobsTable).
		Set(column, value).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", owner)))
	stmt, args := upd.Query()
	n, err := execStmt(ctx, s.drv, stmt, args)
	if err != nil {
		return fmt.Errorf("store: update job %s: %w", column, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJob removes a job. Deleting a parent keeps already generated
// instances; they remain ordinary jobs pointing at a missing parent.
func (s *Store) DeleteJob(ctx context.Context, owner, id uuid.UUID) error {
	del := s.builder().
		Delete(jobsTable).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", owner)))
	stmt, args := del.Query()
	n, err := execStmt(ctx, s.drv, stmt, args)
	if err != nil {
		return fmt.Errorf("store: delete job: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err came from a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
