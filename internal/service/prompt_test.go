package service

import (
	"strings"
	"testing"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_WithContextAndHistory(t *testing.T) {
	lines := []string{
		"MATLAB | SRV00001 | Austin | license:LIC-100 | latest:5 | day_peak:9 | day_avg:4 | work_peak:8 | work_avg:3",
		"SPSS | SRV00002 | Berlin | license:LIC-200 | latest:2 | day_peak:3 | day_avg:1 | work_peak:2 | work_avg:1",
	}
	history := []domain.ConversationTurn{
		{Question: "what is MATLAB used for?", Answer: "Numerical computing."},
	}

	prompt := BuildPrompt("where does SPSS run?", lines, history, 2)

	want := "License data:\n" +
		lines[0] + "\n" + lines[1] +
		"\nPrevious:\n" +
		"User: what is MATLAB used for?\nAssistant: Numerical computing." +
		"\n\nQ: where does SPSS run?\nA (2-3 sentences):"
	require.Equal(t, want, prompt)
}

func TestBuildPrompt_NoContext(t *testing.T) {
	prompt := BuildPrompt("anything?", nil, nil, 2)

	require.True(t, strings.HasPrefix(prompt, "License data:\nNo relevant records found."))
	require.NotContains(t, prompt, "Previous:")
	require.True(t, strings.HasSuffix(prompt, "\n\nQ: anything?\nA (2-3 sentences):"))
}

func TestBuildPrompt_HistoryTruncated(t *testing.T) {
	history := []domain.ConversationTurn{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
	}

	prompt := BuildPrompt("q4", []string{"ctx"}, history, 2)

	require.NotContains(t, prompt, "User: q1")
	require.Contains(t, prompt, "User: q2")
	require.Contains(t, prompt, "User: q3")
}

func mustSnapshot(t testing.TB, records []domain.Record) *domain.DatasetSnapshot {
	t.Helper()
	snapshot, err := domain.NewDatasetSnapshot(records)
	require.NoError(t, err)
	return snapshot
}

func aggregateSnapshot(t testing.TB) *domain.DatasetSnapshot {
	return mustSnapshot(t, []domain.Record{
		{Software: "MATLAB", Server: "SRV00001", Location: "Austin", License: "LIC-1"},
		{Software: "SPSS", Server: "SRV00002", Location: "Berlin", License: "LIC-2"},
		{Software: "Autodesk", Server: "SRV00001", Location: "Austin", License: "LIC-3"},
	})
}

func TestFormatAggregate_Software(t *testing.T) {
	got := FormatAggregate(aggregateSnapshot(t), domain.SubjectSoftware)

	want := "There are 3 unique software products in the license data:\n\n1. Autodesk\n2. MATLAB\n3. SPSS"
	require.Equal(t, want, got)
}

func TestFormatAggregate_Servers(t *testing.T) {
	got := FormatAggregate(aggregateSnapshot(t), domain.SubjectServer)

	require.Equal(t, "There are 2 unique license servers:\n\n1. SRV00001\n2. SRV00002", got)
}

func TestFormatAggregate_LicensesCapped(t *testing.T) {
	records := make([]domain.Record, 25)
	for i := range records {
		records[i] = domain.Record{
			Software: "MATLAB",
			Server:   "SRV00001",
			Location: "Austin",
			License:  "LIC-" + string(rune('A'+i)),
		}
	}
	got := FormatAggregate(mustSnapshot(t, records), domain.SubjectLicense)

	require.Contains(t, got, "There are 25 unique licenses in the data (showing first 20):")
	require.Contains(t, got, "20. ")
	require.NotContains(t, got, "21. ")
}

func TestFormatAggregate_GeneralStats(t *testing.T) {
	got := FormatAggregate(aggregateSnapshot(t), domain.SubjectGeneral)

	want := "Database Statistics:\n- Total Records: 3\n- Unique Software: 3\n- Unique Servers: 2\n- Unique Locations: 2"
	require.Equal(t, want, got)
}
