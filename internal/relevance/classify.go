package relevance

import "strings"

// Classifier splits suggested roles into ones worth recommending and ones
// the user already has covered.
type Classifier interface {
	Classify(roles []string, description string) (relevant, irrelevant []string)
}

// Containment treats a role as irrelevant when the description already
// names it. It is a plain substring test, not semantic matching.
type Containment struct{}

// Classify implements Classifier. Order is preserved and both results are
// non-nil.
func (Containment) Classify(roles []string, description string) ([]string, []string) {
	relevant := make([]string, 0, len(roles))
	irrelevant := make([]string, 0)

	lowerDescription := strings.ToLower(description)
	for _, role := range roles {
		if strings.Contains(lowerDescription, strings.ToLower(role)) {
			irrelevant = append(irrelevant, role)
			continue
		}
		relevant = append(relevant, role)
	}

	return relevant, irrelevant
}

// ClassifyRoles runs the Containment classifier.
func ClassifyRoles(roles []string, description string) ([]string, []string) {
	return Containment{}.Classify(roles, description)
}
