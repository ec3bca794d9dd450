// Package session holds the state of one user's team-building session.
package session

import (
	"strings"
	"time"

	"github.com/spigell/team-builder/internal/cost"
	"github.com/spigell/team-builder/internal/roles"
)

// State is everything a session has produced so far. It is not safe for
// concurrent use; the Store serialises access per session.
type State struct {
	Description     string         `json:"description"`
	AdditionalInfo  string         `json:"additional_info"`
	MainResponse    string         `json:"main_response"`
	JobList         []string       `json:"job_list"`
	RelevantRoles   []string       `json:"relevant_roles"`
	IrrelevantRoles []string       `json:"irrelevant_roles"`
	Records         []*cost.Record `json:"records"`
	ShowJobList     bool           `json:"show_job_list"`
	Warning         string         `json:"warning,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

var now = time.Now

func New() *State {
	t := now()
	return &State{
		JobList:         []string{},
		RelevantRoles:   []string{},
		IrrelevantRoles: []string{},
		Records:         []*cost.Record{},
		CreatedAt:       t,
		UpdatedAt:       t,
	}
}

// Reset drops everything but the creation time.
func (s *State) Reset() {
	created := s.CreatedAt
	*s = *New()
	s.CreatedAt = created
}

func (s *State) touch() { s.UpdatedAt = now() }

// SetResponse stores the latest analysis reply.
func (s *State) SetResponse(response string) {
	s.MainResponse = response
	s.touch()
}

// ApplyRoles stores a successful pipeline result and shows the role lists.
func (s *State) ApplyRoles(result *roles.Result) {
	if result == nil {
		s.ClearRoles()
		return
	}

	s.MainResponse = result.MainResponse
	s.JobList = cleanRoles(result.Roles)
	s.RelevantRoles = cleanRoles(result.Relevant)
	s.IrrelevantRoles = cleanRoles(result.Irrelevant)
	s.ShowJobList = len(s.JobList) > 0
	s.Warning = ""
	s.touch()
}

// ClearRoles empties the suggested roles and hides the lists.
func (s *State) ClearRoles() {
	s.JobList = []string{}
	s.ShowJobList = false
	s.touch()
}

// HideRoles marks role editing as finished.
func (s *State) HideRoles() {
	s.ShowJobList = false
	s.touch()
}

// Warn records a message for the user.
func (s *State) Warn(message string) {
	s.Warning = message
	s.touch()
}

// EditRelevant replaces the relevant roles from comma separated text.
func (s *State) EditRelevant(text string) {
	s.RelevantRoles = SplitRoles(text)
	s.touch()
}

// EditIrrelevant replaces the irrelevant roles from comma separated text.
func (s *State) EditIrrelevant(text string) {
	s.IrrelevantRoles = SplitRoles(text)
	s.touch()
}

// SetRoles replaces both role lists, dropping blank and repeated entries.
func (s *State) SetRoles(relevant, irrelevant []string) {
	s.RelevantRoles = cleanRoles(relevant)
	s.IrrelevantRoles = cleanRoles(irrelevant)
	s.touch()
}

// SplitRoles splits comma separated roles, trimming each and dropping blanks
// and repeats.
func SplitRoles(text string) []string {
	return cleanRoles(strings.Split(text, ","))
}

// JoinRoles is the inverse of SplitRoles used to prefill edit fields.
func JoinRoles(roles []string) string {
	return strings.Join(roles, ", ")
}

// cleanRoles trims roles and drops blanks. Roles equal ignoring case keep
// their first spelling only, since records are looked up that way.
func cleanRoles(roles []string) []string {
	cleaned := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		key := strings.ToLower(role)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, role)
	}
	return cleaned
}

// SetRecords replaces the salary records.
func (s *State) SetRecords(records []*cost.Record) {
	if records == nil {
		records = []*cost.Record{}
	}
	s.Records = records
	s.touch()
}

// Record returns the record for role, matched case-insensitively.
func (s *State) Record(role string) *cost.Record {
	role = strings.TrimSpace(role)
	for _, r := range s.Records {
		if strings.EqualFold(r.JobRole, role) {
			return r
		}
	}
	return nil
}

// SetEmployeeCount sets the head count for one role. It reports false when
// the session has no record for role. Counts below zero become zero.
func (s *State) SetEmployeeCount(role string, n int) bool {
	r := s.Record(role)
	if r == nil {
		return false
	}

	r.EmployeeCount = max(n, 0)
	r.Reset()
	s.touch()
	return true
}

// SetEmployeeCounts assigns counts to records in order. Extra counts are
// ignored; records without a count keep theirs.
func (s *State) SetEmployeeCounts(counts []int) {
	for i, n := range counts {
		if i >= len(s.Records) {
			break
		}
		s.Records[i].EmployeeCount = max(n, 0)
		s.Records[i].Reset()
	}
	s.touch()
}

// EmployeeCounts maps roles to their current head counts.
func (s *State) EmployeeCounts() map[string]int {
	counts := make(map[string]int, len(s.Records))
	for _, r := range s.Records {
		counts[strings.ToLower(r.JobRole)] = r.EmployeeCount
	}
	return counts
}

// CalculateCost fills the derived cost columns of every record.
func (s *State) CalculateCost() cost.Totals {
	totals := cost.Calculate(s.Records)
	s.touch()
	return totals
}

// Calculated reports whether there are records and all of them carry
// computed costs.
func (s *State) Calculated() bool {
	if len(s.Records) == 0 {
		return false
	}
	for _, r := range s.Records {
		if !r.Calculated {
			return false
		}
	}
	return true
}
