package salary

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/ai"
	"github.com/spigell/team-builder/internal/extract"
	"github.com/spigell/team-builder/internal/logger"
	"github.com/spigell/team-builder/internal/utils"
)

const (
	DefaultMaxAttempts = 5
	DefaultBackoff     = time.Second
	DefaultMaxBackoff  = 30 * time.Second

	defaultMaxLogLength = 200

	systemPrompt = "You are tasked to find salary information from a specific job."

	reasonNoJSON  = "response does not contain a json object"
	reasonInvalid = "salary comparison failed validation"
	reasonEmpty   = "model returned an empty response"
	currencyUSD   = "USD"
)

//go:embed prompt.md
var promptTemplate string

// ErrAttemptsExhausted is returned when the model never produced a valid comparison.
var ErrAttemptsExhausted = errors.New("salary estimation attempts exhausted")

// ExhaustedError carries the details of a failed estimation loop.
type ExhaustedError struct {
	Role       string
	Attempts   int
	LastReason string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s for %q after %d attempts: %s", ErrAttemptsExhausted, e.Role, e.Attempts, e.LastReason)
}

func (e *ExhaustedError) Unwrap() error { return ErrAttemptsExhausted }

// Estimator queries the chat model for a salary comparison per job role,
// retrying until a response validates or the attempt budget runs out.
type Estimator struct {
	chat        ai.Chat
	maxAttempts int
	ceiling     int
	backoff     time.Duration
	maxBackoff  time.Duration
	maxLogLen   int
	logger      *zap.Logger
}

type Option func(*Estimator)

func WithMaxAttempts(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithCeiling(ceiling int) Option {
	return func(e *Estimator) {
		if ceiling > 0 {
			e.ceiling = ceiling
		}
	}
}

// WithBackoff sets the delay before the second attempt; it doubles up to limit.
// A zero base disables waiting.
func WithBackoff(base, limit time.Duration) Option {
	return func(e *Estimator) {
		if base >= 0 {
			e.backoff = base
		}
		if limit > 0 {
			e.maxBackoff = limit
		}
	}
}

func WithMaxLogLength(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.maxLogLen = n
		}
	}
}

func NewEstimator(chat ai.Chat, log *zap.Logger, opts ...Option) *Estimator {
	e := &Estimator{
		chat:        chat,
		maxAttempts: DefaultMaxAttempts,
		ceiling:     DefaultCeiling,
		backoff:     DefaultBackoff,
		maxBackoff:  DefaultMaxBackoff,
		maxLogLen:   defaultMaxLogLength,
		logger:      logger.OrNop(log),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Ceiling returns the exclusive salary bound used for validation.
func (e *Estimator) Ceiling() int { return e.ceiling }

// Currency is the currency every comparison is expressed in.
func (e *Estimator) Currency() string { return currencyUSD }

// Estimate returns a validated comparison for role. Chat transport errors are
// returned immediately; empty, malformed or out-of-range answers are retried.
func (e *Estimator) Estimate(ctx context.Context, role string) (*Comparison, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, errors.New("job role is required")
	}

	messages := []ai.Message{
		ai.System(systemPrompt),
		ai.User(buildPrompt(role, e.ceiling)),
	}

	var reason string
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		fields := logger.AttemptFields(role, attempt, e.maxAttempts)

		if attempt > 1 {
			if err := utils.WaitFor(ctx, utils.Backoff(e.backoff, e.maxBackoff, attempt-1)); err != nil {
				return nil, err
			}
		}

		raw, err := e.chat.Chat(ctx, messages)
		if errors.Is(err, ai.ErrEmptyResponse) {
			reason = reasonEmpty
			e.logger.Debug("retrying salary estimation", append(fields, zap.String("reason", reason))...)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("estimate salary for %q: %w", role, err)
		}

		e.logger.Debug("salary response", append(fields,
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
		)...)

		obj, ok := extract.JSONObject(raw)
		if !ok {
			reason = reasonNoJSON
			e.logger.Debug("retrying salary estimation", append(fields, zap.String("reason", reason))...)
			continue
		}

		comparison, ok := Validate(obj, e.ceiling)
		if !ok {
			reason = reasonInvalid
			e.logger.Debug("retrying salary estimation", append(fields, zap.String("reason", reason))...)
			continue
		}

		e.logger.Info("salary estimated", append(fields,
			zap.Int("philippines", comparison.Philippines),
			zap.Int("united_states", comparison.UnitedStates),
		)...)

		return comparison, nil
	}

	return nil, &ExhaustedError{Role: role, Attempts: e.maxAttempts, LastReason: reason}
}

func buildPrompt(role string, ceiling int) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{SALARY_CEILING}}", strconv.Itoa(ceiling))
	return strings.ReplaceAll(prompt, "{{JOB_ROLE}}", role)
}
