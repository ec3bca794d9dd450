// Package builder drives a session through analysis, salary estimation and
// cost calculation. Both the terminal and the HTTP front ends use it.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/cost"
	"github.com/spigell/team-builder/internal/logger"
	"github.com/spigell/team-builder/internal/roles"
	"github.com/spigell/team-builder/internal/salary"
	"github.com/spigell/team-builder/internal/session"
	"github.com/spigell/team-builder/internal/webpage"
)

// Messages shown to the user when a step cannot produce roles.
const (
	WarnNotApplicable           = "Your input is not applicable. Please provide more specific details."
	WarnOutOfContext            = "Your input is out of context. Please provide more specific details."
	WarnNoRoles                 = "Failed to generate job roles. Please provide more specific details."
	WarnNoAboutSection          = "We could not find an about section on that page. Please describe your needs instead."
	WarnAdditionalNotApplicable = "Your additional info is not applicable. Please provide more specific details."
	WarnAdditionalOutOfContext  = "Your additional info is out of context. Please provide more specific details."
)

var (
	// ErrNoDescription means additional info was sent before any analysis.
	ErrNoDescription = errors.New("no description has been analyzed yet")
	// ErrNoRelevantRoles means salary estimation was asked for with nothing to estimate.
	ErrNoRelevantRoles = errors.New("no relevant job roles to estimate")
)

// UserWarning is a recoverable outcome that should be shown to the user
// rather than treated as a failure.
type UserWarning struct {
	Message string
	Err     error
}

func (w *UserWarning) Error() string { return w.Message }

func (w *UserWarning) Unwrap() error { return w.Err }

// Resolver turns raw input into a description, fetching it when it is a URL.
type Resolver interface {
	Resolve(ctx context.Context, input string) (text string, fromURL bool, err error)
}

// RoleExtractor is the role pipeline.
type RoleExtractor interface {
	Run(ctx context.Context, description string) (*roles.Result, error)
	RunUnchecked(ctx context.Context, description string) (*roles.Result, error)
	Refine(ctx context.Context, description, additional string) (*roles.Result, error)
}

// SalaryEstimator returns a validated comparison for one role.
type SalaryEstimator interface {
	Estimate(ctx context.Context, role string) (*salary.Comparison, error)
}

// Progress is called after each role's salary is estimated.
type Progress func(done, total int, role string)

type Builder struct {
	resolver  Resolver
	roles     RoleExtractor
	estimator SalaryEstimator
	logger    *zap.Logger
}

func New(resolver Resolver, extractor RoleExtractor, estimator SalaryEstimator, log *zap.Logger) *Builder {
	return &Builder{
		resolver:  resolver,
		roles:     extractor,
		estimator: estimator,
		logger:    logger.OrNop(log),
	}
}

// Analyze resolves input and extracts roles into st. A *UserWarning is
// returned, and recorded in st, when the input produced no roles.
func (b *Builder) Analyze(ctx context.Context, st *session.State, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return b.warn(st, WarnNotApplicable, roles.ErrInputRejected)
	}

	description, fromURL := input, false
	if b.resolver != nil {
		var err error
		description, fromURL, err = b.resolver.Resolve(ctx, input)
		if errors.Is(err, webpage.ErrNoAboutSection) {
			st.ClearRoles()
			return b.warn(st, WarnNoAboutSection, err)
		}
		if err != nil {
			return fmt.Errorf("resolve input: %w", err)
		}
	}

	st.Description = description
	st.AdditionalInfo = ""

	run := b.roles.Run
	if fromURL {
		run = b.roles.RunUnchecked
	}

	result, err := run(ctx, description)
	return b.apply(st, result, err, WarnNotApplicable, WarnOutOfContext)
}

// SubmitAdditionalInfo reruns the analysis with extra details appended to
// the stored description.
func (b *Builder) SubmitAdditionalInfo(ctx context.Context, st *session.State, info string) error {
	if st.MainResponse == "" || strings.TrimSpace(st.Description) == "" {
		return ErrNoDescription
	}

	st.AdditionalInfo = info

	result, err := b.roles.Refine(ctx, st.Description, info)
	return b.apply(st, result, err, WarnAdditionalNotApplicable, WarnAdditionalOutOfContext)
}

func (b *Builder) apply(st *session.State, result *roles.Result, err error, notApplicable, outOfContext string) error {
	if result != nil {
		st.SetResponse(result.MainResponse)
	}

	switch {
	case err == nil:
		st.ApplyRoles(result)
		b.logger.Info("job roles ready",
			zap.Strings("relevant", st.RelevantRoles),
			zap.Strings("irrelevant", st.IrrelevantRoles),
		)
		return nil
	case errors.Is(err, roles.ErrInputRejected):
		st.ClearRoles()
		return b.warn(st, notApplicable, err)
	case errors.Is(err, roles.ErrOutOfContext):
		st.ClearRoles()
		return b.warn(st, outOfContext, err)
	case errors.Is(err, roles.ErrNoRoles):
		st.HideRoles()
		return b.warn(st, WarnNoRoles, err)
	default:
		return err
	}
}

func (b *Builder) warn(st *session.State, message string, cause error) error {
	st.Warn(message)
	b.logger.Info("user warning", zap.String("warning", message), zap.Error(cause))
	return &UserWarning{Message: message, Err: cause}
}

// EstimateSalaries builds a salary record for every relevant role, one role
// at a time. Head counts already entered for a role are kept.
func (b *Builder) EstimateSalaries(ctx context.Context, st *session.State, progress Progress) error {
	records, err := b.EstimateAll(ctx, st.RelevantRoles, progress)
	if err != nil {
		return err
	}

	counts := st.EmployeeCounts()
	for _, r := range records {
		r.EmployeeCount = counts[strings.ToLower(r.JobRole)]
	}

	st.HideRoles()
	st.SetRecords(records)
	return nil
}

// EstimateAll estimates every non-blank role in order and returns USD records.
func (b *Builder) EstimateAll(ctx context.Context, jobRoles []string, progress Progress) ([]*cost.Record, error) {
	pending := make([]string, 0, len(jobRoles))
	for _, role := range jobRoles {
		if role = strings.TrimSpace(role); role != "" {
			pending = append(pending, role)
		}
	}

	if len(pending) == 0 {
		return nil, ErrNoRelevantRoles
	}

	records := make([]*cost.Record, 0, len(pending))
	for i, role := range pending {
		comparison, err := b.estimator.Estimate(ctx, role)
		if err != nil {
			return nil, err
		}

		records = append(records, cost.NewRecord(role, *comparison))
		if progress != nil {
			progress(i+1, len(pending), role)
		}
	}

	return records, nil
}

// CalculateCost computes the cost columns for st and returns the totals.
func (b *Builder) CalculateCost(st *session.State) cost.Totals {
	totals := st.CalculateCost()
	b.logger.Info("cost calculated",
		zap.Int("roles", len(st.Records)),
		zap.Int("philippines_total_cost", totals.Philippines),
		zap.Int("united_states_total_cost", totals.UnitedStates),
		zap.Int("total_savings", totals.Savings),
	)
	return totals
}
