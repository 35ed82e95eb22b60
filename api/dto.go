/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  JSON structures for the command surface. These decouple the internal
  domain model from the external API contract.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// ReportDTO wraps a rendered report.
type ReportDTO struct {
	GeneratedAt string `json:"generated_at"` // civil date the report is for
	Days        int    `json:"days,omitempty"`
	Text        string `json:"text"`
}

// MissingDTO lists the known users who have not answered today.
type MissingDTO struct {
	Date    string   `json:"date"`
	Missing []string `json:"missing"`
	Message string   `json:"message,omitempty"`
}

// ErrorResponse is the error body for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
