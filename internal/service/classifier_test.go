package service

import (
	"testing"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestClassifier_AggregatePhrasings(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		query   string
		subject domain.Subject
	}{
		{"list all software", domain.SubjectSoftware},
		{"List ALL Software", domain.SubjectSoftware},
		{"show me the licenses", domain.SubjectLicense},
		{"display all servers", domain.SubjectServer},
		{"enumerate the locations", domain.SubjectLocation},
		{"how many unique software do we have", domain.SubjectSoftware},
		{"how many distinct servers", domain.SubjectServer},
		{"what software are available", domain.SubjectSoftware},
		{"all the locations", domain.SubjectLocation},
		{"total number of licenses", domain.SubjectLicense},
		{"give me the complete list", domain.SubjectGeneral},
		{"unique servers please", domain.SubjectServer},
	}

	for _, tt := range tests {
		intent := c.Classify(tt.query)
		require.Equal(t, domain.IntentAggregate, intent.Kind, "query %q", tt.query)
		require.Equal(t, tt.subject, intent.Subject, "query %q", tt.query)
	}
}

func TestClassifier_SemanticFallthrough(t *testing.T) {
	c := NewClassifier()

	for _, q := range []string{
		"show me MATLAB licenses",
		"which server hosts Autodesk in Germany?",
		"is SPSS usage peaking this week",
		"tell me about license 90001ACAD_E_2022_0F",
		"",
	} {
		require.Equal(t, domain.IntentSemantic, c.Classify(q).Kind, "query %q", q)
	}
}

func TestClassifier_SubjectPriority(t *testing.T) {
	c := NewClassifier()

	// software wins over every later term in the scan order
	intent := c.Classify("list all software licenses per server and location")
	require.Equal(t, domain.IntentAggregate, intent.Kind)
	require.Equal(t, domain.SubjectSoftware, intent.Subject)

	intent = c.Classify("list all servers and their locations")
	require.Equal(t, domain.SubjectServer, intent.Subject)
}

func TestClassifier_Pure(t *testing.T) {
	c := NewClassifier()
	first := c.Classify("list all software")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, c.Classify("list all software"))
	}
}
