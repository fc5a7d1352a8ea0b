package models

import "time"

// StructuredProposal is the record extracted from one vendor reply.
// Email is never produced by extraction; intake fills it from the sender.
type StructuredProposal struct {
	VendorName       string `json:"vendor_name"`
	Pricing          string `json:"pricing"`
	Timeline         string `json:"timeline"`
	TechnicalDetails string `json:"technical_details"`
	Terms            string `json:"terms"`
	Email            string `json:"email,omitempty"`
}

// Proposal represents a proposal row in the database
type Proposal struct {
	ID             int                `json:"id"`
	VendorID       int                `json:"vendor_id"`
	RFPID          int                `json:"rfp_id"`
	ContentRaw     string             `json:"content_raw"`
	ParsedJSON     StructuredProposal `json:"parsed_json"`
	ContentHash    string             `json:"content_hash"`
	Score          *float64           `json:"score"`
	Recommendation *string            `json:"recommendation"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ProposalCreate is the body of POST /proposals
type ProposalCreate struct {
	VendorID int    `json:"vendor_id"`
	RFPID    int    `json:"rfp_id"`
	Text     string `json:"text"`
}

// ComparisonEntry is one vendor's line in a ComparisonReport.
// Price is nil when no numeric price was found so it serializes as null.
type ComparisonEntry struct {
	VendorName string   `json:"vendor_name"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Price      *int64   `json:"price"`
}

// ComparisonReport ranks the proposals received for one RFP
type ComparisonReport struct {
	Summary    string            `json:"summary"`
	BestVendor string            `json:"best_vendor"`
	Comparison []ComparisonEntry `json:"comparison"`
}
