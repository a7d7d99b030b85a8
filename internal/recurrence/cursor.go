package recurrence

import "github.com/Alijeyrad/serviceflow_backend/internal/model"

// Advance moves d forward by one step of rule. Monthly steps keep the day of
// month and let short months overflow into the next one (Jan 31 -> Mar 2 in
// 2024), matching how existing instance dates were produced. An invalid rule
// returns d unchanged; callers filter those out first.
func Advance(d model.Date, rule model.Rule) model.Date {
	switch rule {
	case model.RuleWeekly:
		return d.AddDays(7)
	case model.RuleBiweekly:
		return d.AddDays(14)
	case model.RuleMonthly:
		return d.AddMonths(1)
	default:
		return d
	}
}
