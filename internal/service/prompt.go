package service

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// BuildPrompt assembles the single instruction block sent to the LLM: the
// retrieved context lines, the trailing conversation history, and the
// question. Kept deliberately short so a small local model answers quickly.
func BuildPrompt(question string, contextLines []string, history []domain.ConversationTurn, maxExchanges int) string {
	var b strings.Builder

	b.WriteString("License data:\n")
	if len(contextLines) == 0 {
		b.WriteString("No relevant records found.")
	} else {
		b.WriteString(strings.Join(contextLines, "\n"))
	}

	if historyText := formatHistory(history, maxExchanges); historyText != "" {
		b.WriteString("\nPrevious:\n")
		b.WriteString(historyText)
	}

	b.WriteString("\n\nQ: ")
	b.WriteString(question)
	b.WriteString("\nA (2-3 sentences):")
	return b.String()
}

// formatHistory renders the most recent exchanges, oldest first.
func formatHistory(history []domain.ConversationTurn, maxExchanges int) string {
	if len(history) == 0 || maxExchanges <= 0 {
		return ""
	}
	if len(history) > maxExchanges {
		history = history[len(history)-maxExchanges:]
	}
	lines := make([]string, 0, len(history)*2)
	for _, t := range history {
		lines = append(lines, "User: "+t.Question, "Assistant: "+t.Answer)
	}
	return strings.Join(lines, "\n")
}

// licenseListLimit caps how many license identifiers an aggregate answer
// enumerates; the full count is always reported.
const licenseListLimit = 20

// FormatAggregate turns complete-data aggregates into the final answer text.
func FormatAggregate(snapshot *domain.DatasetSnapshot, subject domain.Subject) string {
	switch subject {
	case domain.SubjectSoftware:
		items := snapshot.DistinctValues(subject)
		return fmt.Sprintf("There are %d unique software products in the license data:\n\n%s",
			len(items), numberedList(items))
	case domain.SubjectServer:
		items := snapshot.DistinctValues(subject)
		return fmt.Sprintf("There are %d unique license servers:\n\n%s",
			len(items), numberedList(items))
	case domain.SubjectLocation:
		items := snapshot.DistinctValues(subject)
		return fmt.Sprintf("There are %d unique locations:\n\n%s",
			len(items), numberedList(items))
	case domain.SubjectLicense:
		items := snapshot.DistinctValues(subject)
		shown := items
		suffix := ":"
		if len(items) > licenseListLimit {
			shown = items[:licenseListLimit]
			suffix = fmt.Sprintf(" (showing first %d):", licenseListLimit)
		}
		return fmt.Sprintf("There are %d unique licenses in the data%s\n\n%s",
			len(items), suffix, numberedList(shown))
	default:
		return fmt.Sprintf(
			"Database Statistics:\n- Total Records: %d\n- Unique Software: %d\n- Unique Servers: %d\n- Unique Locations: %d",
			len(snapshot.Records),
			len(snapshot.DistinctValues(domain.SubjectSoftware)),
			len(snapshot.DistinctValues(domain.SubjectServer)),
			len(snapshot.DistinctValues(domain.SubjectLocation)),
		)
	}
}

func numberedList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}
