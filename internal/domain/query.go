package domain

// IntentKind separates exhaustive-answer queries from retrieval-grounded ones.
type IntentKind int

const (
	IntentSemantic IntentKind = iota
	IntentAggregate
)

// Subject is the closed vocabulary an aggregate query can enumerate.
type Subject string

const (
	SubjectSoftware Subject = "software"
	SubjectServer   Subject = "server"
	SubjectLocation Subject = "location"
	SubjectLicense  Subject = "license"
	// SubjectGeneral covers aggregate-shaped queries that name no specific
	// field; answered with dataset-wide statistics.
	SubjectGeneral Subject = "general"
)

// QueryIntent is the classification of one query. Determined purely from the
// query text and never persisted.
type QueryIntent struct {
	Kind    IntentKind
	Subject Subject
}

// QueryResponse is the structured answer returned to the client.
type QueryResponse struct {
	Answer             string `json:"answer"`
	ContextCount       int    `json:"context_count"`
	ConversationLength int    `json:"conversation_length"`
	Cached             bool   `json:"cached"`
	ElapsedMs          int64  `json:"elapsed_ms"`
}

// RefreshResult reports the outcome of one data-change check.
type RefreshResult struct {
	DataChanged    bool   `json:"data_changed"`
	IndexedRecords int    `json:"indexed_records"`
	Message        string `json:"message"`
}
