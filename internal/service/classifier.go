package service

import (
	"regexp"
	"strings"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// aggregatePatterns is the ordered, auditable rule list for detecting
// aggregate queries ("enumerate/count/list all distinct X"). Adding a phrasing
// means adding a line here, nothing else. Anything that matches none of these
// falls through to semantic retrieval — never an error.
var aggregatePatterns = []string{
	`\b(list|show|display|enumerate)\s+(all|me|the)?\s*(software|licenses?|servers?|locations?)`,
	`\bhow many\s+(unique|different|distinct)?\s*(software|licenses?|servers?|locations?)`,
	`\bwhat\s+(software|licenses?|servers?|locations?)\s+(are|do)\s+(available|exist)`,
	`\ball\s+(the\s+)?(software|licenses?|servers?|locations?)`,
	`\btotal\s+(number\s+of\s+)?(software|licenses?|servers?|locations?)`,
	`\bcomplete\s+list`,
	`\bunique\s+(software|licenses?|servers?|locations?)`,
}

// subjectPriority fixes the scan order for subject extraction, so a query
// naming several fields resolves deterministically.
var subjectPriority = []domain.Subject{
	domain.SubjectSoftware,
	domain.SubjectServer,
	domain.SubjectLocation,
	domain.SubjectLicense,
}

// Classifier tags queries as aggregate or semantic using the fixed pattern
// table. Classification is a pure function of the query text.
type Classifier struct {
	patterns []*regexp.Regexp
}

// NewClassifier compiles the aggregate pattern table.
func NewClassifier() *Classifier {
	patterns := make([]*regexp.Regexp, len(aggregatePatterns))
	for i, p := range aggregatePatterns {
		patterns[i] = regexp.MustCompile(`(?i)` + p)
	}
	return &Classifier{patterns: patterns}
}

// Classify determines the intent of the given query text.
func (c *Classifier) Classify(query string) domain.QueryIntent {
	for _, re := range c.patterns {
		if re.MatchString(query) {
			return domain.QueryIntent{Kind: domain.IntentAggregate, Subject: extractSubject(query)}
		}
	}
	return domain.QueryIntent{Kind: domain.IntentSemantic}
}

// extractSubject returns the first vocabulary term found in the query, in
// fixed priority order. Singular terms also match their plural forms.
func extractSubject(query string) domain.Subject {
	lower := strings.ToLower(query)
	for _, subject := range subjectPriority {
		if strings.Contains(lower, string(subject)) {
			return subject
		}
	}
	return domain.SubjectGeneral
}
