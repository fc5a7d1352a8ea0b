package models

import "time"

// StructuredRFP is the record derived from a free-text RFP.
type StructuredRFP struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Budget       string   `json:"budget"`
	Timeline     string   `json:"timeline"`
	Requirements []string `json:"requirements"`
	Deliverables []string `json:"deliverables"`
}

// RFP represents an rfp row in the database
type RFP struct {
	ID             int           `json:"id"`
	Title          string        `json:"title"`
	RawInput       string        `json:"raw_input"`
	StructuredJSON StructuredRFP `json:"structured_json"`
	CreatedAt      time.Time     `json:"created_at"`
}

// RFPCreate is the body of POST /rfp
type RFPCreate struct {
	Text string `json:"text"`
}
