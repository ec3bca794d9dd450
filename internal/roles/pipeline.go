// Package roles turns a description of company needs into a list of
// recommended job roles using two chat model calls.
package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/ai"
	"github.com/spigell/team-builder/internal/extract"
	"github.com/spigell/team-builder/internal/logger"
	"github.com/spigell/team-builder/internal/relevance"
	"github.com/spigell/team-builder/internal/utils"
)

const (
	analysisPrompt   = "You are tasked to analyze the job role needs of a company based on the description/queries from the users/company."
	extractionPrompt = "You are an HR manager which extracts the job roles based on a user/company needs analysis."

	rolesMarker = "job roles"

	additionalInfoSeparator = "\n\nAdditional Info: "

	defaultMaxLogLength = 200
)

//go:embed reformat_prompt.md
var reformatPrompt string

// Result is the outcome of one pipeline run.
type Result struct {
	MainResponse string   `json:"main_response"`
	Roles        []string `json:"roles"`
	Relevant     []string `json:"relevant"`
	Irrelevant   []string `json:"irrelevant"`
}

// Pipeline runs input gates, asks the model for a needs analysis and then
// for the roles from that analysis as a list.
type Pipeline struct {
	chat           ai.Chat
	gates          *relevance.Gates
	additionalInfo *relevance.Gates
	classifier     relevance.Classifier
	maxLogLen      int
	logger         *zap.Logger
}

type Option func(*Pipeline)

// WithGates replaces the description gates.
func WithGates(g *relevance.Gates) Option {
	return func(p *Pipeline) { p.gates = g }
}

// WithAdditionalInfoGates replaces the gates used by Refine.
func WithAdditionalInfoGates(g *relevance.Gates) Option {
	return func(p *Pipeline) { p.additionalInfo = g }
}

func WithClassifier(c relevance.Classifier) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.classifier = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger.OrNop(l) }
}

func WithMaxLogLength(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxLogLen = n
		}
	}
}

func New(chat ai.Chat, opts ...Option) *Pipeline {
	p := &Pipeline{
		chat:           chat,
		gates:          relevance.DescriptionGates(),
		additionalInfo: relevance.AdditionalInfoGates(),
		classifier:     relevance.Containment{},
		maxLogLen:      defaultMaxLogLength,
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run gates the description and, when it passes, extracts roles from it.
func (p *Pipeline) Run(ctx context.Context, description string) (*Result, error) {
	if check := p.gates.RejectedBy(description, p.logger); check != "" {
		return nil, &RejectedError{Check: check}
	}

	return p.analyze(ctx, description)
}

// RunUnchecked extracts roles without gating. Text scraped from a company
// page is not held to the phrasing rules meant for typed input.
func (p *Pipeline) RunUnchecked(ctx context.Context, description string) (*Result, error) {
	return p.analyze(ctx, description)
}

// Refine gates the additional details and reruns the analysis on the
// description extended with them.
func (p *Pipeline) Refine(ctx context.Context, description, additional string) (*Result, error) {
	if check := p.additionalInfo.RejectedBy(additional, p.logger); check != "" {
		return nil, &RejectedError{Check: check}
	}

	return p.analyze(ctx, Combine(description, additional))
}

// Combine appends additional details to a description.
func Combine(description, additional string) string {
	return description + additionalInfoSeparator + additional
}

func (p *Pipeline) analyze(ctx context.Context, description string) (*Result, error) {
	response, err := p.chat.Chat(ctx, []ai.Message{
		ai.System(analysisPrompt),
		ai.User(description),
	})
	if errors.Is(err, ai.ErrEmptyResponse) {
		p.logger.Info("needs analysis came back empty")
		return &Result{}, ErrOutOfContext
	}
	if err != nil {
		return nil, fmt.Errorf("analyze needs: %w", err)
	}

	p.logger.Debug("needs analysis received",
		zap.Int("response_length", utf8.RuneCountInString(response)),
		zap.String("response_preview", utils.TruncateForLog(response, p.maxLogLen)),
	)

	result := &Result{MainResponse: response}
	if !strings.Contains(strings.ToLower(response), rolesMarker) {
		p.logger.Info("analysis does not mention job roles")
		return result, ErrOutOfContext
	}

	listing, err := p.chat.Chat(ctx, []ai.Message{
		ai.System(extractionPrompt),
		ai.User(description),
		ai.Assistant(response),
		ai.User(reformatPrompt),
	})
	if errors.Is(err, ai.ErrEmptyResponse) {
		p.logger.Info("role list came back empty")
		return result, ErrNoRoles
	}
	if err != nil {
		return result, fmt.Errorf("extract job roles: %w", err)
	}

	roles, ok := extract.List(listing)
	if !ok || len(roles) == 0 {
		p.logger.Info("model reply has no role list",
			zap.String("response_preview", utils.TruncateForLog(listing, p.maxLogLen)),
		)
		return result, ErrNoRoles
	}

	result.Roles = roles
	result.Relevant, result.Irrelevant = p.classifier.Classify(roles, description)

	p.logger.Info("job roles extracted",
		zap.Int("roles", len(roles)),
		zap.Int("relevant", len(result.Relevant)),
		zap.Int("irrelevant", len(result.Irrelevant)),
	)

	return result, nil
}
