package relevance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifyRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		roles       []string
		description string
		relevant    []string
		irrelevant  []string
	}{
		{
			name:       "empty",
			roles:      nil,
			relevant:   []string{},
			irrelevant: []string{},
		},
		{
			name:        "named role is irrelevant",
			roles:       []string{"Nurse"},
			description: "we need a nurse",
			relevant:    []string{},
			irrelevant:  []string{"Nurse"},
		},
		{
			name:        "mixed keeps order",
			roles:       []string{"Backend Developer", "DevOps Engineer", "QA Tester", "Project Manager"},
			description: "We need to hire a backend developer and a QA tester for our e-commerce platform",
			relevant:    []string{"DevOps Engineer", "Project Manager"},
			irrelevant:  []string{"Backend Developer", "QA Tester"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			relevant, irrelevant := ClassifyRoles(tt.roles, tt.description)
			if relevant == nil || irrelevant == nil {
				t.Fatal("expected non-nil results")
			}
			if diff := cmp.Diff(tt.relevant, relevant); diff != "" {
				t.Fatalf("unexpected relevant (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.irrelevant, irrelevant); diff != "" {
				t.Fatalf("unexpected irrelevant (-want +got):\n%s", diff)
			}
		})
	}
}
