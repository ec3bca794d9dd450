// Package relevance holds the string heuristics used to reject vague or
// off-topic input and to split suggested roles into relevant and irrelevant.
package relevance

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/logger"
)

var (
	genericPhrases = []string{"general", "n/a", "not sure", "don't know", "do you", "are you", "you", "are there"}

	outOfContextPhrases = []string{"unrelated", "out of context", "irrelevant"}

	domainKeywords = []string{"job", "hire", "business", "project", "team", "staff", "company", "role", "position", "expertise"}

	// Additional info is rejected only when it is one of these as a whole.
	placeholderAnswers = []string{"n/a", "not sure", "don't know", "general"}
)

// CheckInputSpecificity returns false when text contains a generic phrase.
func CheckInputSpecificity(text string) bool {
	return !containsAny(text, genericPhrases)
}

// InputIsOutOfContext returns true when text flags itself as off-topic.
func InputIsOutOfContext(text string) bool {
	return containsAny(text, outOfContextPhrases)
}

// IsRelevantToDomain returns true when text mentions hiring or business.
func IsRelevantToDomain(text string) bool {
	return containsAny(text, domainKeywords)
}

// IsPlaceholderAnswer reports whether the whole of text is a non-answer such
// as "n/a".
func IsPlaceholderAnswer(text string) bool {
	return slices.Contains(placeholderAnswers, strings.ToLower(strings.TrimSpace(text)))
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Check is a single input gate.
type Check interface {
	Name() string
	Pass(text string) bool
}

type checkFunc struct {
	name string
	pass func(string) bool
}

func (c checkFunc) Name() string { return c.name }
func (c checkFunc) Pass(text string) bool { return c.pass(text) }

// NewCheck wraps a predicate into a named Check.
func NewCheck(name string, pass func(string) bool) Check {
	return checkFunc{name: name, pass: pass}
}

// Names of the predefined checks.
const (
	CheckSpecificity  = "specificity"
	CheckOutOfContext = "out_of_context"
	CheckDomain       = "domain_relevance"
	CheckPlaceholder  = "placeholder_answer"
)

// Gates runs checks in order and stops at the first one that rejects.
type Gates struct {
	checks []Check
}

// NewGates builds a gate chain.
func NewGates(checks ...Check) *Gates {
	return &Gates{checks: checks}
}

// DescriptionGates rejects vague, off-topic or non-business descriptions.
func DescriptionGates() *Gates {
	return NewGates(
		NewCheck(CheckSpecificity, CheckInputSpecificity),
		NewCheck(CheckOutOfContext, func(text string) bool { return !InputIsOutOfContext(text) }),
		NewCheck(CheckDomain, IsRelevantToDomain),
	)
}

// AdditionalInfoGates is the looser chain used for follow-up details.
func AdditionalInfoGates() *Gates {
	return NewGates(
		NewCheck(CheckPlaceholder, func(text string) bool { return !IsPlaceholderAnswer(text) }),
		NewCheck(CheckDomain, IsRelevantToDomain),
	)
}

// RejectedBy returns the name of the first failing check, or "" when text
// passes every gate.
func (g *Gates) RejectedBy(text string, log *zap.Logger) string {
	if g == nil {
		return ""
	}

	log = logger.OrNop(log)
	for _, check := range g.checks {
		if check.Pass(text) {
			log.Debug("input check passed", zap.String("name", check.Name()))
			continue
		}

		log.Info("input rejected",
			zap.String("name", check.Name()),
			zap.Int("input_length", len(text)),
		)
		return check.Name()
	}

	return ""
}

// Names lists the checks in execution order.
func (g *Gates) Names() []string {
	if g == nil {
		return nil
	}

	names := make([]string, 0, len(g.checks))
	for _, check := range g.checks {
		names = append(names, check.Name())
	}
	return names
}
