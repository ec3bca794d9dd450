package session

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/team-builder/internal/cost"
	"github.com/spigell/team-builder/internal/roles"
	"github.com/spigell/team-builder/internal/salary"
)

func TestApplyAndClearRoles(t *testing.T) {
	st := New()
	st.Warn("old warning")

	st.ApplyRoles(&roles.Result{
		MainResponse: "job roles: ...",
		Roles:        []string{"Backend Developer", "DevOps Engineer"},
		Relevant:     []string{"DevOps Engineer"},
		Irrelevant:   []string{"Backend Developer"},
	})

	if !st.ShowJobList || st.Warning != "" || st.MainResponse != "job roles: ..." {
		t.Fatalf("unexpected state after apply: %+v", st)
	}
	if diff := cmp.Diff([]string{"DevOps Engineer"}, st.RelevantRoles); diff != "" {
		t.Fatalf("unexpected relevant roles (-want +got):\n%s", diff)
	}

	st.ClearRoles()
	if st.ShowJobList || len(st.JobList) != 0 {
		t.Fatalf("expected roles to be cleared: %+v", st)
	}
	// Edited lists survive a clear, as the user may still proceed with them.
	if len(st.RelevantRoles) != 1 {
		t.Fatalf("expected relevant roles to be kept, got %v", st.RelevantRoles)
	}
}

func TestEditRoles(t *testing.T) {
	st := New()

	st.EditRelevant(" Web Developer, ,Accountant ,")
	st.EditIrrelevant("")

	if diff := cmp.Diff([]string{"Web Developer", "Accountant"}, st.RelevantRoles); diff != "" {
		t.Fatalf("unexpected relevant roles (-want +got):\n%s", diff)
	}
	if st.IrrelevantRoles == nil || len(st.IrrelevantRoles) != 0 {
		t.Fatalf("expected empty irrelevant roles, got %#v", st.IrrelevantRoles)
	}

	if got := JoinRoles(st.RelevantRoles); got != "Web Developer, Accountant" {
		t.Fatalf("unexpected joined roles %q", got)
	}
}

func TestEmployeeCounts(t *testing.T) {
	st := New()
	st.SetRecords([]*cost.Record{
		cost.NewRecord("Backend Developer", salary.Comparison{Philippines: 1200, UnitedStates: 8000}),
		cost.NewRecord("QA Tester", salary.Comparison{Philippines: 700, UnitedStates: 5000}),
	})

	st.SetEmployeeCounts([]int{2, -1, 9})
	if st.Records[0].EmployeeCount != 2 || st.Records[1].EmployeeCount != 0 {
		t.Fatalf("unexpected counts: %d, %d", st.Records[0].EmployeeCount, st.Records[1].EmployeeCount)
	}

	cost.Calculate(st.Records)
	if !st.SetEmployeeCount("qa tester", 3) {
		t.Fatal("expected role to be found")
	}
	if st.Records[1].EmployeeCount != 3 || st.Records[1].Calculated {
		t.Fatalf("expected count update to reset calculation: %+v", st.Records[1])
	}

	if st.SetEmployeeCount("Designer", 1) {
		t.Fatal("expected unknown role to be reported")
	}

	want := map[string]int{"backend developer": 2, "qa tester": 3}
	if diff := cmp.Diff(want, st.EmployeeCounts()); diff != "" {
		t.Fatalf("unexpected counts (-want +got):\n%s", diff)
	}
}

func TestResetKeepsCreation(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	st := New()
	st.CreatedAt = created
	st.Description = "We need a developer"

	st.Reset()

	if st.Description != "" || !st.CreatedAt.Equal(created) {
		t.Fatalf("unexpected state after reset: %+v", st)
	}
}

func TestRepeatedRolesAreDropped(t *testing.T) {
	st := New()
	st.ApplyRoles(&roles.Result{
		MainResponse: "job roles: ...",
		Roles:        []string{"QA", "qa", "Designer", "QA "},
		Relevant:     []string{"QA", "qa", "Designer"},
	})

	if diff := cmp.Diff([]string{"QA", "Designer"}, st.JobList); diff != "" {
		t.Fatalf("unexpected job list (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"QA", "Designer"}, st.RelevantRoles); diff != "" {
		t.Fatalf("unexpected relevant roles (-want +got):\n%s", diff)
	}

	st.EditRelevant("Designer, designer, QA")
	if diff := cmp.Diff([]string{"Designer", "QA"}, st.RelevantRoles); diff != "" {
		t.Fatalf("unexpected edited roles (-want +got):\n%s", diff)
	}
}

func TestEmployeeCountsByPosition(t *testing.T) {
	st := New()
	st.SetRecords([]*cost.Record{
		cost.NewRecord("QA", salary.Comparison{Philippines: 700, UnitedStates: 5000}),
		cost.NewRecord("qa", salary.Comparison{Philippines: 700, UnitedStates: 5000}),
	})

	st.SetEmployeeCounts([]int{2, 5})
	if st.Records[0].EmployeeCount != 2 || st.Records[1].EmployeeCount != 5 {
		t.Fatalf("unexpected counts: %d, %d", st.Records[0].EmployeeCount, st.Records[1].EmployeeCount)
	}

	totals := st.CalculateCost()
	if totals.Philippines != 4900 {
		t.Fatalf("unexpected philippines total: %d", totals.Philippines)
	}
}
