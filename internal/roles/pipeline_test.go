package roles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/team-builder/internal/ai"
	"github.com/spigell/team-builder/internal/relevance"
)

const (
	ecommerceNeeds = "We need to hire a backend developer and a QA tester for our e-commerce platform"
	analysisReply  = "Based on your needs, here are the job roles: Backend Developer, QA Tester."
)

type recordingChat struct {
	replies []string
	errs    []error
	calls   [][]ai.Message
}

func (r *recordingChat) Chat(_ context.Context, messages []ai.Message) (string, error) {
	i := len(r.calls)
	r.calls = append(r.calls, messages)
	if i < len(r.errs) && r.errs[i] != nil {
		return "", r.errs[i]
	}
	if i >= len(r.replies) {
		return "", errors.New("unexpected chat call")
	}
	return r.replies[i], nil
}

func TestRunExtractsRoles(t *testing.T) {
	chat := &recordingChat{replies: []string{
		analysisReply,
		`Sure: ["Backend Developer", "QA Tester", "DevOps Engineer"]`,
	}}

	result, err := New(chat).Run(context.Background(), ecommerceNeeds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Result{
		MainResponse: analysisReply,
		Roles:        []string{"Backend Developer", "QA Tester", "DevOps Engineer"},
		Relevant:     []string{"DevOps Engineer"},
		Irrelevant:   []string{"Backend Developer", "QA Tester"},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	if len(chat.calls) != 2 {
		t.Fatalf("expected 2 chat calls, got %d", len(chat.calls))
	}

	wantSecond := []ai.Message{
		ai.System(extractionPrompt),
		ai.User(ecommerceNeeds),
		ai.Assistant(analysisReply),
		ai.User(reformatPrompt),
	}
	if diff := cmp.Diff(wantSecond, chat.calls[1]); diff != "" {
		t.Fatalf("unexpected extraction conversation (-want +got):\n%s", diff)
	}
}

func TestRunRejectsInputWithoutChat(t *testing.T) {
	chat := &recordingChat{}

	_, err := New(chat).Run(context.Background(), "not sure")
	if !errors.Is(err, ErrInputRejected) {
		t.Fatalf("expected ErrInputRejected, got %v", err)
	}

	var rejected *RejectedError
	if !errors.As(err, &rejected) || rejected.Check != relevance.CheckSpecificity {
		t.Fatalf("unexpected rejection: %v", err)
	}

	if len(chat.calls) != 0 {
		t.Fatalf("expected no chat calls, got %d", len(chat.calls))
	}
}

func TestRunUncheckedSkipsGates(t *testing.T) {
	chat := &recordingChat{replies: []string{analysisReply, `["Support Agent"]`}}

	result, err := New(chat).RunUnchecked(context.Background(), "About us: do you know our story?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"Support Agent"}, result.Relevant); diff != "" {
		t.Fatalf("unexpected relevant roles (-want +got):\n%s", diff)
	}
}

func TestRunOutOfContext(t *testing.T) {
	chat := &recordingChat{replies: []string{"I can only help with cooking recipes."}}

	result, err := New(chat).Run(context.Background(), ecommerceNeeds)
	if !errors.Is(err, ErrOutOfContext) {
		t.Fatalf("expected ErrOutOfContext, got %v", err)
	}
	if result == nil || result.MainResponse != "I can only help with cooking recipes." {
		t.Fatalf("expected reply to be kept, got %+v", result)
	}
	if len(chat.calls) != 1 {
		t.Fatalf("expected single chat call, got %d", len(chat.calls))
	}
}

func TestRunNoRoles(t *testing.T) {
	tests := []struct {
		name    string
		listing string
	}{
		{name: "prose", listing: "Backend Developer and QA Tester"},
		{name: "empty list", listing: "[]"},
		{name: "not strings", listing: "[1, 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &recordingChat{replies: []string{analysisReply, tt.listing}}

			result, err := New(chat).Run(context.Background(), ecommerceNeeds)
			if !errors.Is(err, ErrNoRoles) {
				t.Fatalf("expected ErrNoRoles, got %v", err)
			}
			if result.MainResponse != analysisReply || result.Roles != nil {
				t.Fatalf("unexpected result %+v", result)
			}
		})
	}
}

func TestRunPropagatesTransportErrors(t *testing.T) {
	transport := errors.New("ollama is down")

	first := &recordingChat{errs: []error{transport}}
	if _, err := New(first).Run(context.Background(), ecommerceNeeds); !errors.Is(err, transport) {
		t.Fatalf("expected transport error from analysis, got %v", err)
	}

	second := &recordingChat{replies: []string{analysisReply}, errs: []error{nil, transport}}
	if _, err := New(second).Run(context.Background(), ecommerceNeeds); !errors.Is(err, transport) {
		t.Fatalf("expected transport error from extraction, got %v", err)
	}
}

func TestRefine(t *testing.T) {
	chat := &recordingChat{replies: []string{analysisReply, `["Backend Developer", "Data Analyst"]`}}

	result, err := New(chat).Refine(context.Background(), ecommerceNeeds, "We also want a data analyst on the team")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	combined := ecommerceNeeds + "\n\nAdditional Info: We also want a data analyst on the team"
	if got := chat.calls[0][1].Content; got != combined {
		t.Fatalf("unexpected combined description %q", got)
	}

	// Classification uses the combined text.
	if diff := cmp.Diff([]string{"Backend Developer", "Data Analyst"}, result.Irrelevant); diff != "" {
		t.Fatalf("unexpected irrelevant roles (-want +got):\n%s", diff)
	}
}

func TestRefineRejectsPlaceholder(t *testing.T) {
	chat := &recordingChat{}

	_, err := New(chat).Refine(context.Background(), ecommerceNeeds, " N/A ")
	var rejected *RejectedError
	if !errors.As(err, &rejected) || rejected.Check != relevance.CheckPlaceholder {
		t.Fatalf("expected placeholder rejection, got %v", err)
	}
	if len(chat.calls) != 0 {
		t.Fatalf("expected no chat calls, got %d", len(chat.calls))
	}
}

type everythingRelevant struct{}

func (everythingRelevant) Classify(roles []string, _ string) ([]string, []string) {
	return roles, []string{}
}

func TestCustomClassifierAndGates(t *testing.T) {
	chat := &recordingChat{replies: []string{analysisReply, `["Backend Developer"]`}}

	pipeline := New(chat,
		WithClassifier(everythingRelevant{}),
		WithGates(relevance.NewGates()),
	)

	result, err := pipeline.Run(context.Background(), "not sure, backend developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"Backend Developer"}, result.Relevant); diff != "" {
		t.Fatalf("unexpected relevant roles (-want +got):\n%s", diff)
	}
}

func TestReformatPromptAsksForList(t *testing.T) {
	if !strings.Contains(reformatPrompt, `["Web Developer", "Accountant", "3D graphic artist"]`) {
		t.Fatalf("reformat prompt lost its example: %q", reformatPrompt)
	}
}

func TestRunTreatsEmptyRepliesAsWarnings(t *testing.T) {
	tests := []struct {
		name   string
		chat   *recordingChat
		expect error
		calls  int
	}{
		{
			name:   "empty analysis",
			chat:   &recordingChat{errs: []error{ai.ErrEmptyResponse}},
			expect: ErrOutOfContext,
			calls:  1,
		},
		{
			name: "empty role list",
			chat: &recordingChat{
				replies: []string{analysisReply},
				errs:    []error{nil, ai.ErrEmptyResponse},
			},
			expect: ErrNoRoles,
			calls:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(tt.chat).Run(context.Background(), ecommerceNeeds)
			if !errors.Is(err, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, err)
			}
			if result == nil {
				t.Fatal("expected a result alongside the warning")
			}
			if len(tt.chat.calls) != tt.calls {
				t.Fatalf("expected %d chat calls, got %d", tt.calls, len(tt.chat.calls))
			}
		})
	}
}
