package protocol

// SessionCreated is the payload of the session_created event.
type SessionCreated struct {
	SessionID string `json:"sessionId"`
}

// ChatResponse is the full structured answer carried by the terminal result
// event.
type ChatResponse struct {
	SessionID       string              `json:"sessionId"`
	Answer          string              `json:"answer"`
	GeneratedSQL    string              `json:"generatedSql"`
	QueryResults    []map[string]any    `json:"queryResults"`
	Metadata        ExecutionMetadata   `json:"metadata"`
	ConfidenceScore *SQLConfidenceScore `json:"confidenceScore"`
	ChartData       *ChartData          `json:"chartData,omitempty"`
	Ambiguity       *AmbiguityResponse  `json:"ambiguity,omitempty"`
}

// ExecutionMetadata describes how the pipeline produced the answer.
type ExecutionMetadata struct {
	Intent               string   `json:"intent"`
	IdentifiedWorkspaces []string `json:"identifiedWorkspaces"`
	IdentifiedTables     []string `json:"identifiedTables"`
	IdentifiedColumns    []string `json:"identifiedColumns"`
	ExecutionTimeMs      int64    `json:"executionTimeMs"`
	ResultCount          int      `json:"resultCount"`
	SQLExecuted          bool     `json:"sqlExecuted"`
	ConfidenceScore      *float64 `json:"confidenceScore"`
	ConfidenceLevel      string   `json:"confidenceLevel"`
}

// SQLConfidenceScore is the generator's self-assessment of the query.
type SQLConfidenceScore struct {
	GlobalScore    float64 `json:"globalScore"`
	Level          string  `json:"level"`
	Recommendation string  `json:"recommendation"`
}

// ChartType enumerates the visualizations the backend may suggest.
type ChartType string

const (
	ChartTimeSeries    ChartType = "TIME_SERIES"
	ChartBar           ChartType = "BAR"
	ChartHorizontalBar ChartType = "HORIZONTAL_BAR"
	ChartPie           ChartType = "PIE"
	ChartStackedBar    ChartType = "STACKED_BAR"
	ChartLine          ChartType = "LINE"
	ChartArea          ChartType = "AREA"
	ChartNone          ChartType = "NONE"
)

// ChartDimensions maps result columns to chart axes.
type ChartDimensions struct {
	X      string `json:"x,omitempty"`
	Y      string `json:"y,omitempty"`
	Series string `json:"series,omitempty"`
	Label  string `json:"label,omitempty"`
	Value  string `json:"value,omitempty"`
}

// ChartVisualization describes the suggested rendering for a result set.
type ChartVisualization struct {
	Type       ChartType       `json:"type"`
	Dimensions ChartDimensions `json:"dimensions"`
	Title      string          `json:"title"`
	Unit       string          `json:"unit,omitempty"`
}

// ChartMetadata carries sizing information about the chart data.
type ChartMetadata struct {
	RowCount    int    `json:"rowCount"`
	HasMoreData bool   `json:"hasMoreData"`
	GeneratedAt string `json:"generatedAt,omitempty"`
}

// ChartData is the complete chart descriptor attached to a result.
type ChartData struct {
	Visualization ChartVisualization `json:"visualization"`
	Data          []map[string]any   `json:"data"`
	Metadata      ChartMetadata      `json:"metadata"`
}

// OrchestratorReasoning is the payload of orchestrator_reasoning events.
type OrchestratorReasoning struct {
	Reasoning string `json:"reasoning"`
	Status    string `json:"status"`
	Iteration int    `json:"iteration"`
}
