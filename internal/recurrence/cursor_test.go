package recurrence

import (
	"testing"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		from string
		rule model.Rule
		want string
	}{
		{"weekly", "2024-01-01", model.RuleWeekly, "2024-01-08"},
		{"weekly across year", "2024-12-28", model.RuleWeekly, "2025-01-04"},
		{"biweekly", "2024-01-01", model.RuleBiweekly, "2024-01-15"},
		{"monthly", "2024-01-15", model.RuleMonthly, "2024-02-15"},
		{"monthly rolls over leap february", "2024-01-31", model.RuleMonthly, "2024-03-02"},
		{"monthly rolls over common february", "2023-01-31", model.RuleMonthly, "2023-03-03"},
		{"monthly rolls over 30 day month", "2024-03-31", model.RuleMonthly, "2024-05-01"},
		{"monthly december", "2024-12-01", model.RuleMonthly, "2025-01-01"},
		{"unknown rule is a no-op", "2024-01-01", model.Rule("daily"), "2024-01-01"},
		{"empty rule is a no-op", "2024-01-01", model.RuleNone, "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(model.MustParseDate(tt.from), tt.rule)
			if got.String() != tt.want {
				t.Errorf("Advance(%s, %q) = %s, want %s", tt.from, tt.rule, got, tt.want)
			}
		})
	}
}

func TestAdvanceMonthlyKeepsRolledDay(t *testing.T) {
	d := model.MustParseDate("2024-01-31")
	want := []string{"2024-03-02", "2024-04-02", "2024-05-02"}
	for _, w := range want {
		d = Advance(d, model.RuleMonthly)
		if d.String() != w {
			t.Fatalf("got %s, want %s", d, w)
		}
	}
}
