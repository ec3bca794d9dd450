// Package cost turns validated salary comparisons and head counts into
// per-role and overall cost figures.
package cost

import (
	"strings"

	"github.com/spigell/team-builder/internal/salary"
)

// CurrencyUSD is the only currency records are expressed in.
const CurrencyUSD = "USD"

// Record is one job role with its salary comparison and, once calculated,
// the derived cost columns.
type Record struct {
	JobRole          string            `json:"job_role"`
	Currency         string            `json:"currency"`
	SalaryComparison salary.Comparison `json:"salary_comparison"`
	EmployeeCount    int               `json:"no_of_employees"`

	PhilippinesTotalCost  int  `json:"philippines_total_cost"`
	UnitedStatesTotalCost int  `json:"united_states_total_cost"`
	TotalSavings          int  `json:"total_savings"`
	ConnextTotalCost      int  `json:"connext_total_cost"`
	Calculated            bool `json:"calculated"`
}

// Totals are the column sums across all records.
type Totals struct {
	Philippines  int `json:"philippines_total_cost"`
	UnitedStates int `json:"united_states_total_cost"`
	Savings      int `json:"total_savings"`
	Connext      int `json:"connext_total_cost"`
}

// NewRecord creates an uncalculated USD record for role.
func NewRecord(role string, comparison salary.Comparison) *Record {
	return &Record{
		JobRole:          strings.TrimSpace(role),
		Currency:         CurrencyUSD,
		SalaryComparison: comparison,
	}
}

// Calculate fills the derived columns of every record and returns the totals.
// Negative head counts are treated as zero.
func Calculate(records []*Record) Totals {
	var totals Totals
	for _, r := range records {
		if r == nil {
			continue
		}

		if r.EmployeeCount < 0 {
			r.EmployeeCount = 0
		}

		r.PhilippinesTotalCost = r.EmployeeCount * r.SalaryComparison.Philippines
		r.UnitedStatesTotalCost = r.EmployeeCount * r.SalaryComparison.UnitedStates
		r.TotalSavings = r.UnitedStatesTotalCost - r.PhilippinesTotalCost
		// Hiring through the staffing vendor is modelled at the Philippines rate.
		r.ConnextTotalCost = r.PhilippinesTotalCost
		r.Calculated = true

		totals.Philippines += r.PhilippinesTotalCost
		totals.UnitedStates += r.UnitedStatesTotalCost
		totals.Savings += r.TotalSavings
		totals.Connext += r.ConnextTotalCost
	}

	return totals
}

// Reset clears the derived columns, e.g. after a head count changed.
func (r *Record) Reset() {
	r.PhilippinesTotalCost = 0
	r.UnitedStatesTotalCost = 0
	r.TotalSavings = 0
	r.ConnextTotalCost = 0
	r.Calculated = false
}
