package models

// SkippedRow explains why one spreadsheet row produced no message.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary reports the outcome of one reconciliation run, including
// partial progress when the run was aborted.
type ImportSummary struct {
	Taxonomy    Taxonomy     `json:"taxonomy"`
	Rows        int          `json:"rows"`
	Categories  int          `json:"categories"`
	Created     int          `json:"created"`
	Updated     int          `json:"updated"`
	Skipped     int          `json:"skipped"`
	SkippedRows []SkippedRow `json:"skippedRows"`
	Warnings    []string     `json:"warnings,omitempty"`
	Aborted     bool         `json:"aborted"`
}
