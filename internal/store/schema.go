package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	jobsTable         = "jobs"
	jobEmployeesTable = "job_employees"
	clientsTable      = "clients"
	employeesTable    = "employees"
	expensesTable     = "expenses"
)

var (
	// ClientsColumns holds the columns for the "clients" table.
	ClientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "owner_id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 200},
		{Name: "email", Type: field.TypeString, Size: 320, Default: ""},
		{Name: "phone", Type: field.TypeString, Size: 40, Default: ""},
		{Name: "address", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "notes", Type: field.TypeString, Size: 2000, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ClientsTable holds the schema information for the "clients" table.
	ClientsTable = &schema.Table{
		Name:       clientsTable,
		Columns:    ClientsColumns,
		PrimaryKey: []*schema.Column{ClientsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "client_owner_id_name", Columns: []*schema.Column{ClientsColumns[1], ClientsColumns[2]}},
		},
	}

	// EmployeesColumns holds the columns for the "employees" table.
	EmployeesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "owner_id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 200},
		{Name: "email", Type: field.TypeString, Size: 320, Default: ""},
		{Name: "phone", Type: field.TypeString, Size: 40, Default: ""},
		{Name: "hourly_rate", Type: field.TypeInt64, Default: 0},
		{Name: "active", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// EmployeesTable holds the schema information for the "employees" table.
	EmployeesTable = &schema.Table{
		Name:       employeesTable,
		Columns:    EmployeesColumns,
		PrimaryKey: []*schema.Column{EmployeesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "employee_owner_id", Columns: []*schema.Column{EmployeesColumns[1]}},
		},
	}

	// JobsColumns holds the columns for the "jobs" table.
	JobsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "owner_id", Type: field.TypeUUID},
		{Name: "client_id", Type: field.TypeUUID, Nullable: true},
		{Name: "title", Type: field.TypeString, Size: 200, Default: ""},
		{Name: "date", Type: field.TypeString, Size: 10},
		{Name: "time_slot", Type: field.TypeString, Size: 5, Default: ""},
		{Name: "duration_hours", Type: field.TypeFloat64, Default: 0},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"scheduled", "completed", "cancelled"}, Default: "scheduled"},
		{Name: "notes", Type: field.TypeString, Size: 2000, Default: ""},
		{Name: "amount", Type: field.TypeInt64, Default: 0},
		{Name: "rate_type", Type: field.TypeEnum, Enums: []string{"flat", "hourly"}, Default: "flat"},
		{Name: "payment_status", Type: field.TypeEnum, Enums: []string{"pending", "paid", "overdue"}, Default: "pending"},
		{Name: "invoice_sent_at", Type: field.TypeTime, Nullable: true},
		{Name: "is_recurring", Type: field.TypeBool, Default: false},
		{Name: "recurrence_rule", Type: field.TypeEnum, Enums: []string{"weekly", "biweekly", "monthly"}, Nullable: true},
		{Name: "recurrence_end_date", Type: field.TypeString, Size: 10, Nullable: true},
		{Name: "parent_job_id", Type: field.TypeUUID, Nullable: true},
		{Name: "series_id", Type: field.TypeUUID, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// JobsTable holds the schema information for the "jobs" table.
	JobsTable = &schema.Table{
		Name:       jobsTable,
		Columns:    JobsColumns,
		PrimaryKey: []*schema.Column{JobsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "jobs_clients_jobs",
				Columns:    []*schema.Column{JobsColumns[2]},
				RefColumns: []*schema.Column{ClientsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			// One occurrence per series per day. Concurrent generators that
			// both miss the existence check collide here instead.
			{Name: "job_series_id_date", Unique: true, Columns: []*schema.Column{JobsColumns[17], JobsColumns[4]}},
			{Name: "job_owner_id_date", Columns: []*schema.Column{JobsColumns[1], JobsColumns[4]}},
			{Name: "job_is_recurring_parent_job_id", Columns: []*schema.Column{JobsColumns[13], JobsColumns[16]}},
		},
	}

	// JobEmployeesColumns holds the columns for the "job_employees" table.
	JobEmployeesColumns = []*schema.Column{
		{Name: "job_id", Type: field.TypeUUID},
		{Name: "employee_id", Type: field.TypeUUID},
	}
	// JobEmployeesTable holds the schema information for the "job_employees" table.
	JobEmployeesTable = &schema.Table{
		Name:       jobEmployeesTable,
		Columns:    JobEmployeesColumns,
		PrimaryKey: []*schema.Column{JobEmployeesColumns[0], JobEmployeesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "job_employees_job_id",
				Columns:    []*schema.Column{JobEmployeesColumns[0]},
				RefColumns: []*schema.Column{JobsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "job_employees_employee_id",
				Columns:    []*schema.Column{JobEmployeesColumns[1]},
				RefColumns: []*schema.Column{EmployeesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// ExpensesColumns holds the columns for the "expenses" table.
	ExpensesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "owner_id", Type: field.TypeUUID},
		{Name: "date", Type: field.TypeString, Size: 10},
		{Name: "category", Type: field.TypeString, Size: 100},
		{Name: "description", Type: field.TypeString, Size: 1000, Default: ""},
		{Name: "amount", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ExpensesTable holds the schema information for the "expenses" table.
	ExpensesTable = &schema.Table{
		Name:       expensesTable,
		Columns:    ExpensesColumns,
		PrimaryKey: []*schema.Column{ExpensesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "expense_owner_id_date", Columns: []*schema.Column{ExpensesColumns[1], ExpensesColumns[2]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ClientsTable,
		EmployeesTable,
		JobsTable,
		JobEmployeesTable,
		ExpensesTable,
	}
)

func init() {
	JobsTable.ForeignKeys[0].RefTable = ClientsTable
	JobEmployeesTable.ForeignKeys[0].RefTable = JobsTable
	JobEmployeesTable.ForeignKeys[1].RefTable = EmployeesTable
}
