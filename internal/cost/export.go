package cost

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
)

const (
	DefaultFullReportName    = "team_builder_report.csv"
	DefaultRefinedReportName = "refined_team_builder_report.csv"
)

var (
	fullHeader = []string{
		"job_role",
		"currency",
		"no_of_employees",
		"philippines_total_cost",
		"united_states_total_cost",
		"total_savings",
		"connext_total_cost",
		"philippines",
		"united_states",
	}

	refinedHeader = []string{
		"job_role",
		"philippines_total_cost",
		"united_states_total_cost",
		"connext_total_cost",
		"total_savings",
	}
)

// WriteFullCSV writes every column of every record, salary comparison last.
func WriteFullCSV(w io.Writer, records []*Record) error {
	return writeCSV(w, fullHeader, records, func(r *Record) []string {
		return []string{
			r.JobRole,
			r.Currency,
			strconv.Itoa(r.EmployeeCount),
			strconv.Itoa(r.PhilippinesTotalCost),
			strconv.Itoa(r.UnitedStatesTotalCost),
			strconv.Itoa(r.TotalSavings),
			strconv.Itoa(r.ConnextTotalCost),
			strconv.Itoa(r.SalaryComparison.Philippines),
			strconv.Itoa(r.SalaryComparison.UnitedStates),
		}
	})
}

// WriteRefinedCSV writes the cost and savings columns only.
func WriteRefinedCSV(w io.Writer, records []*Record) error {
	return writeCSV(w, refinedHeader, records, func(r *Record) []string {
		return []string{
			r.JobRole,
			strconv.Itoa(r.PhilippinesTotalCost),
			strconv.Itoa(r.UnitedStatesTotalCost),
			strconv.Itoa(r.ConnextTotalCost),
			strconv.Itoa(r.TotalSavings),
		}
	})
}

func writeCSV(w io.Writer, header []string, records []*Record, row func(*Record) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		if r == nil {
			continue
		}
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write csv row for %q: %w", r.JobRole, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatUSD renders an amount as dollars with thousands separators and cents.
func FormatUSD(amount int) string {
	return "$" + humanize.FormatFloat("#,###.##", float64(amount))
}

// SaveReports writes both reports into dir under their default names and
// returns the paths written.
func SaveReports(dir string, records []*Record) (string, string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create report dir: %w", err)
	}

	full := filepath.Join(dir, DefaultFullReportName)
	if err := saveReport(full, records, WriteFullCSV); err != nil {
		return "", "", err
	}

	refined := filepath.Join(dir, DefaultRefinedReportName)
	if err := saveReport(refined, records, WriteRefinedCSV); err != nil {
		return "", "", err
	}

	return full, refined, nil
}

func saveReport(path string, records []*Record, write func(io.Writer, []*Record) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %q: %w", path, err)
	}

	if err := write(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write report %q: %w", path, err)
	}

	return f.Close()
}
